package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/rgbnode/internal/api/models"
	"github.com/smazurov/rgbnode/internal/events"
	"github.com/smazurov/rgbnode/internal/logging"
)

// registerLogRoutes registers the log streaming SSE endpoint.
func (s *Server) registerLogRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs/stream",
		Summary:     "Log stream",
		Description: "Replays the in-memory log buffer, then follows new entries.",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"message": events.LogEntryEvent{},
		"open":    models.StreamOpened{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Subscribed before the replay; entries seen twice are skipped by seq.
		eventCh := make(chan any, 100)
		unsubscribe := events.Forward[events.LogEntryEvent](s.eventBus, eventCh)
		defer unsubscribe()

		var buffered []logging.LogEntry
		if buffer := logging.GetBuffer(); buffer != nil {
			buffered = buffer.ReadAll()
		}
		if err := send.Data(models.StreamOpened{Stream: "logs", Buffered: len(buffered)}); err != nil {
			return
		}

		var lastSeq uint64
		for _, entry := range buffered {
			if err := send.Data(events.NewLogEntryEvent(entry)); err != nil {
				return
			}
			lastSeq = entry.Seq
		}

		relay(ctx, send, eventCh, func(event any) bool {
			entry, ok := event.(events.LogEntryEvent)
			return !ok || entry.Seq == 0 || entry.Seq > lastSeq
		})
	})
}
