package indicator

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeLED creates a sysfs-like LED directory under a temp root.
func fakeLED(t *testing.T, name string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, name), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func readAttr(t *testing.T, root, name, attr string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, name, attr))
	if err != nil {
		t.Fatalf("read %s: %v", attr, err)
	}
	return string(data)
}

func TestNoopController(t *testing.T) {
	ctrl := newNoop(quietLogger())
	if err := ctrl.Set(PatternBlink); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}
	if ctrl.Name() != "noop" {
		t.Errorf("Name() = %q, want noop", ctrl.Name())
	}
}

func TestSysfsController_Patterns(t *testing.T) {
	root := fakeLED(t, "ACT")
	ctrl := newSysfs(root, "ACT")

	if err := ctrl.Set(PatternBlink); err != nil {
		t.Fatalf("Set(blink): %v", err)
	}
	if got := readAttr(t, root, "ACT", "trigger"); got != "timer" {
		t.Errorf("trigger = %q, want timer", got)
	}
	if got := readAttr(t, root, "ACT", "delay_on"); got != "150" {
		t.Errorf("delay_on = %q, want 150", got)
	}

	if err := ctrl.Set(PatternSolid); err != nil {
		t.Fatalf("Set(solid): %v", err)
	}
	if got := readAttr(t, root, "ACT", "trigger"); got != "none" {
		t.Errorf("trigger = %q, want none", got)
	}
	if got := readAttr(t, root, "ACT", "brightness"); got != "1" {
		t.Errorf("brightness = %q, want 1", got)
	}

	if err := ctrl.Set(PatternOff); err != nil {
		t.Fatalf("Set(off): %v", err)
	}
	if got := readAttr(t, root, "ACT", "brightness"); got != "0" {
		t.Errorf("brightness = %q, want 0", got)
	}
}

func TestSysfsController_Errors(t *testing.T) {
	ctrl := newSysfs(t.TempDir(), "missing")
	if err := ctrl.Set(PatternSolid); err == nil {
		t.Error("Set() on a missing LED should return error")
	}

	root := fakeLED(t, "ACT")
	if err := newSysfs(root, "ACT").Set(Pattern("rainbow")); err == nil {
		t.Error("Set() with unknown pattern should return error")
	}
}
