package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/rgbnode/internal/api/models"
	"github.com/smazurov/rgbnode/internal/events"
	"github.com/smazurov/rgbnode/internal/metrics/exporters"
)

// registerMetricsRoutes streams the periodic device stats. With the stats
// exporter off only the open event arrives.
func (s *Server) registerMetricsRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "metrics-stream",
		Method:      http.MethodGet,
		Path:        "/api/metrics",
		Summary:     "Device stats stream",
		Description: "Once-a-second power, active profile and animation frame rate",
		Tags:        []string{"metrics"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, metricsStreamTypes(), func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)
		defer events.Forward[events.DeviceStatsEvent](s.eventBus, eventCh)()
		if err := send.Data(models.StreamOpened{Stream: "metrics"}); err != nil {
			return
		}
		relay(ctx, send, eventCh, nil)
	})
}

func metricsStreamTypes() map[string]any {
	types := exporters.GetEventTypes()
	types["open"] = models.StreamOpened{}
	return types
}
