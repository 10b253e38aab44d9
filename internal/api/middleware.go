package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/rgbnode/internal/logging"
	"github.com/smazurov/rgbnode/internal/metrics"
)

// HTTPLoggingMiddleware logs each API request and records it in the
// request metrics. Preflights and streams log at debug level.
func HTTPLoggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	logger := logging.GetLogger("http")

	next(ctx)

	elapsed := time.Since(start)
	status := ctx.Status()
	if status == 0 {
		status = http.StatusOK
	}

	operation := "unknown"
	if op := ctx.Operation(); op != nil && op.OperationID != "" {
		operation = op.OperationID
	}
	metrics.ObserveRequest(operation, status, elapsed)

	attrs := []slog.Attr{
		slog.String("method", ctx.Method()),
		slog.String("path", ctx.URL().Path),
		slog.String("operation", operation),
		slog.Int("status", status),
		slog.Duration("duration", elapsed),
		slog.String("remote_addr", ctx.RemoteAddr()),
	}

	level := slog.LevelInfo
	switch {
	case ctx.Method() == http.MethodOptions, isStream(ctx):
		level = slog.LevelDebug
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	logger.LogAttrs(ctx.Context(), level, "HTTP request completed", attrs...)
}

func isStream(ctx huma.Context) bool {
	op := ctx.Operation()
	return op != nil && strings.HasSuffix(op.OperationID, "-stream")
}
