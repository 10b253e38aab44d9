// Package metrics provides Prometheus metrics for the LED strip daemon.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	devicePower = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rgbnode",
		Subsystem: "device",
		Name:      "power",
		Help:      "Whether the strip is powered on (1) or off (0)",
	})

	deviceActiveProfile = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rgbnode",
		Subsystem: "device",
		Name:      "active_profile",
		Help:      "Index of the selected profile slot",
	})

	deviceApplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rgbnode",
		Subsystem: "device",
		Name:      "applies_total",
		Help:      "Number of times the active profile was applied, by look",
	}, []string{"look"})

	animationFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rgbnode",
		Subsystem: "animation",
		Name:      "frames_total",
		Help:      "Rainbow animation frames rendered",
	})

	ledWriteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rgbnode",
		Subsystem: "led",
		Name:      "write_errors_total",
		Help:      "PWM writes that failed, by pin",
	}, []string{"pin"})

	// Local copy of the device gauges for the SSE exporter.
	stats   DeviceStats
	statsMu sync.RWMutex
)

// DeviceStats holds the current device metric values.
type DeviceStats struct {
	Power   bool
	Profile int
	Frames  uint64
}

// SetPower records the power state.
func SetPower(on bool) {
	statsMu.Lock()
	stats.Power = on
	statsMu.Unlock()

	if on {
		devicePower.Set(1)
	} else {
		devicePower.Set(0)
	}
}

// SetActiveProfile records the selected profile slot.
func SetActiveProfile(index int) {
	statsMu.Lock()
	stats.Profile = index
	statsMu.Unlock()
	deviceActiveProfile.Set(float64(index))
}

// IncApply counts one apply of the given look ("off", "solid", "rainbow").
func IncApply(look string) {
	deviceApplies.WithLabelValues(look).Inc()
}

// IncAnimationFrame counts one rendered rainbow frame.
func IncAnimationFrame() {
	statsMu.Lock()
	stats.Frames++
	statsMu.Unlock()
	animationFrames.Inc()
}

// IncLEDWriteError counts a failed PWM write on pin.
func IncLEDWriteError(pin string) {
	ledWriteErrors.WithLabelValues(pin).Inc()
}

// GetDeviceStats returns a copy of the current device stats.
func GetDeviceStats() DeviceStats {
	statsMu.RLock()
	defer statsMu.RUnlock()
	return stats
}
