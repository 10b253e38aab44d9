// Package store persists fixed-size binary records to files with a
// debounced, retried write policy.
package store

import (
	"encoding"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"k8s.io/utils/clock"

	"github.com/smazurov/rgbnode/internal/logging"
	"github.com/smazurov/rgbnode/internal/metrics"
)

// Defaults for a Record.
const (
	DefaultTag     byte = 'A'
	DefaultTimeout      = 5 * time.Second
)

var (
	// ErrNotFound is returned by Read when the record file does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrCorrupt is returned by Read on a tag or payload mismatch.
	ErrCorrupt = errors.New("record corrupt")
)

// Codec is the value a Record persists.
type Codec interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Record ties a value to a file. The file holds one tag byte followed by
// the encoded value. Update marks the value dirty; Tick writes it once
// the record has been quiet for the timeout, so a burst of edits becomes
// a single write.
//
// A Record is not safe for concurrent use.
type Record struct {
	name    string
	path    string
	value   Codec
	tag     byte
	timeout time.Duration
	clk     clock.PassiveClock
	logger  *slog.Logger

	dirty   bool
	changed time.Time
}

// Option configures a Record.
type Option func(*Record)

// WithTag sets the format tag byte.
func WithTag(tag byte) Option {
	return func(r *Record) { r.tag = tag }
}

// WithTimeout sets the debounce window.
func WithTimeout(d time.Duration) Option {
	return func(r *Record) { r.timeout = d }
}

// WithClock sets the time source.
func WithClock(clk clock.PassiveClock) Option {
	return func(r *Record) { r.clk = clk }
}

// New returns a record storing value at path.
func New(path string, value Codec, opts ...Option) *Record {
	r := &Record{
		name:    filepath.Base(path),
		path:    path,
		value:   value,
		tag:     DefaultTag,
		timeout: DefaultTimeout,
		clk:     clock.RealClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.GetLogger("store").With("record", r.name)
	return r
}

// Name returns the file name of the record.
func (r *Record) Name() string { return r.name }

// Path returns the file path of the record.
func (r *Record) Path() string { return r.path }

// Pending reports whether a change is waiting to be written.
func (r *Record) Pending() bool { return r.dirty }

// Read loads the file into the value. On any error the value is left
// unchanged.
func (r *Record) Read() error {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", r.name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", r.name, err)
	}

	if len(data) == 0 || data[0] != r.tag {
		return fmt.Errorf("%s: %w: bad tag", r.name, ErrCorrupt)
	}
	if err := r.value.UnmarshalBinary(data[1:]); err != nil {
		return fmt.Errorf("%s: %w: %w", r.name, ErrCorrupt, err)
	}
	return nil
}

// Update marks the value dirty and restarts the debounce window.
func (r *Record) Update() {
	r.dirty = true
	r.changed = r.clk.Now()
	metrics.SetStorePending(r.name, true)
}

// Tick writes the value if it is dirty and the debounce window has
// passed. It reports whether a write happened. A failed write keeps the
// record dirty and is retried one window later.
func (r *Record) Tick() (bool, error) {
	if !r.dirty || r.clk.Since(r.changed) < r.timeout {
		return false, nil
	}
	if err := r.write(); err != nil {
		r.changed = r.clk.Now()
		return false, err
	}
	r.markClean()
	return true, nil
}

// UpdateNow writes the value immediately.
func (r *Record) UpdateNow() error {
	r.Update()
	if err := r.write(); err != nil {
		return err
	}
	r.markClean()
	return nil
}

// Flush writes the value if it is dirty, ignoring the debounce window.
func (r *Record) Flush() error {
	if !r.dirty {
		return nil
	}
	return r.UpdateNow()
}

func (r *Record) markClean() {
	r.dirty = false
	metrics.SetStorePending(r.name, false)
}

// write replaces the file atomically: the data goes to a temporary file
// in the same directory which is then renamed over the record.
func (r *Record) write() (err error) {
	defer func() {
		if err != nil {
			r.logger.Warn("Failed to write record", "error", err)
		}
		metrics.ObserveStoreWrite(r.name, err)
	}()

	payload, err := r.value.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.name, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+r.name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	data := append([]byte{r.tag}, payload...)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", r.name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", r.name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", r.name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", r.name, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", r.name, err)
	}

	r.logger.Debug("Record written", "bytes", len(data))
	return nil
}
