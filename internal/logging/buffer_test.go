package logging

import (
	"testing"
	"time"
)

var timeZero time.Time

func TestRingBufferWrap(t *testing.T) {
	rb := NewRingBuffer(3)

	for _, msg := range []string{"a", "b", "c", "d"} {
		rb.Write(LogEntry{Message: msg})
	}

	if got := rb.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}

	entries := rb.ReadAll()
	want := []string{"b", "c", "d"}
	for i, e := range entries {
		if e.Message != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Message, want[i])
		}
		if e.Seq != uint64(i+2) {
			t.Errorf("entry %d seq = %d, want %d", i, e.Seq, i+2)
		}
	}
}

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer(2)
	if entries := rb.ReadAll(); entries != nil {
		t.Errorf("ReadAll() = %v, want nil", entries)
	}
}

func TestRingBufferSince(t *testing.T) {
	rb := NewRingBuffer(4)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		rb.Write(LogEntry{Message: msg})
	}

	got := rb.Since(3)
	if len(got) != 2 || got[0].Message != "d" || got[1].Message != "e" {
		t.Errorf("Since(3) = %+v, want d, e", got)
	}
	if got := rb.Since(5); got != nil {
		t.Errorf("Since(5) = %+v, want nil", got)
	}
}
