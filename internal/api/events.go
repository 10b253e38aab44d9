package api

import (
	"context"
	"maps"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/rgbnode/internal/events"
	"github.com/smazurov/rgbnode/internal/metrics/exporters"
)

// relay sends events from ch until the client leaves or a send fails.
// keep, when set, filters events.
func relay(ctx context.Context, send sse.Sender, ch <-chan any, keep func(any) bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			if keep != nil && !keep(event) {
				continue
			}
			if err := send.Data(event); err != nil {
				return
			}
		}
	}
}

// registerSSERoutes registers /api/events, the stream a form client
// follows to know when to reload.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of applied profiles, record writes, form reloads, device stats and logs",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, streamTypes(), func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		unsubscribers := []func(){
			events.Forward[events.ProfileAppliedEvent](s.eventBus, eventCh),
			events.Forward[events.RecordStateEvent](s.eventBus, eventCh),
			events.Forward[events.FormReloadEvent](s.eventBus, eventCh),
			events.Forward[events.DeviceStatsEvent](s.eventBus, eventCh),
			events.Forward[events.LogEntryEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// A fresh client has no form yet.
		if err := send.Data(events.FormReloadEvent{
			Reason:    "connected",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			return
		}

		relay(ctx, send, eventCh, nil)
	})
}

func streamTypes() map[string]any {
	types := map[string]any{
		"profile-applied": events.ProfileAppliedEvent{},
		"record-state":    events.RecordStateEvent{},
		"form-reload":     events.FormReloadEvent{},
		"log-entry":       events.LogEntryEvent{},
	}
	maps.Copy(types, exporters.GetEventTypes())
	return types
}
