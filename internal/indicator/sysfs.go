package indicator

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const sysfsLEDPath = "/sys/class/leds"

// blinkPeriod is the on and off time of PatternBlink.
const blinkPeriod = 150 * time.Millisecond

// sysfs drives one LED through the Linux LED class interface.
type sysfs struct {
	dir  string
	name string
}

func newSysfs(root, name string) *sysfs {
	return &sysfs{dir: filepath.Join(root, name), name: name}
}

func (s *sysfs) Name() string { return s.name }

func (s *sysfs) Set(pattern Pattern) error {
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("LED %q not found: %w", s.name, err)
	}

	switch pattern {
	case PatternBlink:
		if err := s.write("trigger", "timer"); err != nil {
			return err
		}
		ms := strconv.FormatInt(blinkPeriod.Milliseconds(), 10)
		if err := s.write("delay_on", ms); err != nil {
			return err
		}
		return s.write("delay_off", ms)
	case PatternSolid:
		if err := s.write("trigger", "none"); err != nil {
			return err
		}
		return s.write("brightness", "1")
	case PatternOff:
		if err := s.write("trigger", "none"); err != nil {
			return err
		}
		return s.write("brightness", "0")
	}
	return fmt.Errorf("unknown LED pattern %q", pattern)
}

func (s *sysfs) write(attr, value string) error {
	if err := os.WriteFile(filepath.Join(s.dir, attr), []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to set LED %s: %w", attr, err)
	}
	return nil
}
