package logging

import (
	"sync"
	"time"
)

// LogEntry is one log line as kept for the log stream.
type LogEntry struct {
	Seq        uint64         `json:"seq"`
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RingBuffer keeps the most recent log entries and numbers them.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	start   int
	seq     uint64
}

// NewRingBuffer returns a buffer holding at most size entries.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{entries: make([]LogEntry, 0, max(size, 1))}
}

// Write stores entry, evicting the oldest when full, and returns it with
// its sequence number set.
func (rb *RingBuffer) Write(entry LogEntry) LogEntry {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.seq++
	entry.Seq = rb.seq
	if len(rb.entries) < cap(rb.entries) {
		rb.entries = append(rb.entries, entry)
	} else {
		rb.entries[rb.start] = entry
		rb.start = (rb.start + 1) % len(rb.entries)
	}
	return entry
}

// ReadAll returns the buffered entries oldest first.
func (rb *RingBuffer) ReadAll() []LogEntry {
	return rb.Since(0)
}

// Since returns the buffered entries with a sequence number above seq,
// oldest first.
func (rb *RingBuffer) Since(seq uint64) []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var out []LogEntry
	n := len(rb.entries)
	for i := range n {
		e := rb.entries[(rb.start+i)%n]
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of buffered entries.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return len(rb.entries)
}
