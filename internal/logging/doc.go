// Package logging provides module loggers with per-module levels that can
// change at runtime.
//
// Initialize once at startup, then ask for a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"store": "debug"},
//	})
//
//	logger := logging.GetLogger("store").With("record", "profiles.dat")
//	logger.Info("Record written", "bytes", 17)
//
// Every record goes to a [Tee] of:
//
//	stdout   text or JSON, when stdout is a terminal, pipe, socket or file
//	journal  when journald is running, with attributes as upper-case fields
//	buffer   always; the last 1000 entries, numbered, for the log stream
//
// Loggers handed out before Initialize keep working: their level follows
// the configuration and later calls to GetLogger return rebuilt loggers
// in the configured format. SetLevels swaps levels without touching the
// format, which is what the config file watcher uses.
//
// On a systemd host:
//
//	journalctl -t rgbnode -f
//	journalctl -t rgbnode MODULE=store
//	journalctl -t rgbnode -p err
package logging
