package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rgbnode",
		Subsystem: "store",
		Name:      "writes_total",
		Help:      "Record writes, by record and result",
	}, []string{"record", "result"})

	storePending = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "rgbnode",
		Subsystem: "store",
		Name:      "pending",
		Help:      "Whether a record has changes waiting to be written",
	}, []string{"record"})
)

// ObserveStoreWrite counts one write attempt of record.
func ObserveStoreWrite(record string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeWrites.WithLabelValues(record, result).Inc()
}

// SetStorePending records whether record has unwritten changes.
func SetStorePending(record string, pending bool) {
	v := 0.0
	if pending {
		v = 1
	}
	storePending.WithLabelValues(record).Set(v)
}
