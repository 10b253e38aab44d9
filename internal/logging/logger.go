package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// bufferSize is how many entries the log stream can replay.
const bufferSize = 1000

// Config selects the output format and the global and per-module levels.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// registry owns the module loggers. Every module has its own LevelVar so
// SetLevels reaches loggers that were already handed out.
type registry struct {
	mu          sync.RWMutex
	config      Config
	initialized bool
	global      slog.LevelVar
	levels      map[string]*slog.LevelVar
	loggers     map[string]*slog.Logger
	buffer      *RingBuffer
	callback    LogCallback
}

func newRegistry() *registry {
	return &registry{
		levels:  make(map[string]*slog.LevelVar),
		loggers: make(map[string]*slog.Logger),
	}
}

var std = newRegistry()

// Initialize applies config, creates the log buffer and rebuilds loggers
// handed out so far with the configured format.
func Initialize(config Config) {
	r := std
	r.mu.Lock()
	defer r.mu.Unlock()

	r.config = config
	r.initialized = true
	r.buffer = NewRingBuffer(bufferSize)
	r.applyLevels()

	for module, level := range r.levels {
		r.loggers[module] = r.build(module, level)
	}
	slog.SetDefault(slog.New(newHandler(config.Format, &r.global)))
}

// SetLevels changes the global and per-module levels. The format is left
// as initialized.
func SetLevels(config Config) {
	r := std
	r.mu.Lock()
	defer r.mu.Unlock()

	r.config.Level = config.Level
	r.config.Modules = config.Modules
	r.applyLevels()
}

// GetLogger returns the logger for module, creating it on first use.
func GetLogger(module string) *slog.Logger {
	r := std
	r.mu.RLock()
	logger, ok := r.loggers[module]
	r.mu.RUnlock()
	if ok {
		return logger
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if logger, ok := r.loggers[module]; ok {
		return logger
	}

	level := &slog.LevelVar{}
	level.Set(r.levelFor(module))
	r.levels[module] = level
	r.loggers[module] = r.build(module, level)
	return r.loggers[module]
}

// GetBuffer returns the log buffer, or nil before Initialize.
func GetBuffer() *RingBuffer {
	buffer, _ := std.sink()
	return buffer
}

// SetLogCallback registers fn to receive every buffered entry. Pass nil
// to stop.
func SetLogCallback(fn LogCallback) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.callback = fn
}

func (r *registry) sink() (*RingBuffer, LogCallback) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.buffer, r.callback
}

// build must be called with mu held.
func (r *registry) build(module string, level slog.Leveler) *slog.Logger {
	format := "text"
	if r.initialized {
		format = r.config.Format
	}
	return slog.New(newHandler(format, level)).With(moduleKey, module)
}

// applyLevels must be called with mu held.
func (r *registry) applyLevels() {
	r.global.Set(r.globalLevel())
	for module, level := range r.levels {
		level.Set(r.levelFor(module))
	}
}

func (r *registry) globalLevel() slog.Level {
	if l, ok := parseLevel(r.config.Level); ok {
		return l
	}
	return slog.LevelInfo
}

func (r *registry) levelFor(module string) slog.Level {
	if l, ok := parseLevel(r.config.Modules[module]); ok {
		return l
	}
	return r.globalLevel()
}

// newHandler writes to stdout when it is attached, to the journal when
// journald runs, and always to the log buffer.
func newHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var stdout slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if format == "json" {
		stdout = slog.NewJSONHandler(os.Stdout, opts)
	}

	var tee Tee
	if stdoutAttached() {
		tee = append(tee, stdout)
	}
	if IsJournalAvailable() {
		tee = append(tee, NewJournalHandler(level))
	}
	return append(tee, NewBufferHandler(level))
}

func stdoutAttached() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return mode&(os.ModeCharDevice|os.ModeNamedPipe|os.ModeSocket) != 0 || mode.IsRegular()
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}
