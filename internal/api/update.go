package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/rgbnode/internal/api/models"
	"github.com/smazurov/rgbnode/internal/updater"
)

// registerUpdateRoutes adds the self update endpoints. A disabled service
// still gets every route so clients learn why.
func (s *Server) registerUpdateRoutes() {
	svc := s.options.UpdateService
	if svc == nil {
		return
	}

	var reason string
	if !svc.Enabled() {
		reason = svc.DisabledReason()
	}

	updateRoute(s, reason, huma.Operation{
		OperationID: "check-updates",
		Method:      http.MethodGet,
		Path:        "/api/update/check",
		Summary:     "Check for updates",
		Description: "Compare the running binary with the newest release. Nothing is downloaded.",
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError},
	}, func(ctx context.Context, _ *struct{}) (*models.UpdateCheckResponse, error) {
		release, err := svc.Check(ctx)
		if err != nil {
			return nil, mapUpdateError(err)
		}
		return &models.UpdateCheckResponse{Body: *release}, nil
	})

	updateRoute(s, reason, huma.Operation{
		OperationID: "get-update-status",
		Method:      http.MethodGet,
		Path:        "/api/update/status",
		Summary:     "Update status",
		Description: "Report the updater state and the version held as backup.",
	}, func(_ context.Context, _ *struct{}) (*models.UpdateStatusResponse, error) {
		return &models.UpdateStatusResponse{Body: svc.Status()}, nil
	})

	updateRoute(s, reason, huma.Operation{
		OperationID: "apply-update",
		Method:      http.MethodPost,
		Path:        "/api/update/apply",
		Summary:     "Apply update",
		Description: "Replace the binary with the newest release and restart. Pending records are written on the way down.",
		Errors:      []int{http.StatusBadRequest, http.StatusConflict, http.StatusInternalServerError},
	}, func(ctx context.Context, _ *struct{}) (*models.UpdateActionResponse, error) {
		if err := svc.Apply(ctx); err != nil {
			return nil, mapUpdateError(err)
		}
		return actionResponse("Update applied, restarting", svc.Status()), nil
	})

	updateRoute(s, reason, huma.Operation{
		OperationID: "rollback-update",
		Method:      http.MethodPost,
		Path:        "/api/update/rollback",
		Summary:     "Roll back update",
		Description: "Restore the backed up binary and restart.",
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError},
	}, func(ctx context.Context, _ *struct{}) (*models.UpdateActionResponse, error) {
		if err := svc.Rollback(ctx); err != nil {
			return nil, mapUpdateError(err)
		}
		return actionResponse("Rollback complete, restarting", svc.Status()), nil
	})
}

// updateRoute registers op behind auth under the update tag. A non-empty
// reason swaps the handler for one answering 503 with it.
func updateRoute[O any](s *Server, reason string, op huma.Operation, handler func(context.Context, *struct{}) (*O, error)) {
	op.Tags = []string{"update"}
	op.Security = withAuth()
	op.Errors = append([]int{http.StatusUnauthorized}, op.Errors...)

	if reason != "" {
		op.Description += " Disabled: " + reason + "."
		op.Errors = []int{http.StatusUnauthorized, http.StatusServiceUnavailable}
		handler = func(context.Context, *struct{}) (*O, error) {
			return nil, huma.Error503ServiceUnavailable("self update disabled: " + reason)
		}
	}

	huma.Register(s.api, op, handler)
}

func actionResponse(message string, status updater.Status) *models.UpdateActionResponse {
	return &models.UpdateActionResponse{
		Body: models.UpdateActionData{Message: message, State: status.State},
	}
}

// mapUpdateError turns updater error codes into HTTP statuses.
func mapUpdateError(err error) error {
	var updateErr *updater.Error
	if !errors.As(err, &updateErr) {
		return huma.Error500InternalServerError(err.Error())
	}

	switch updateErr.Code {
	case updater.ErrCodeInvalidState:
		return huma.Error409Conflict(updateErr.Message)
	case updater.ErrCodeNoUpdate:
		return huma.Error400BadRequest(updateErr.Message)
	case updater.ErrCodeNotFound, updater.ErrCodeNoBackup:
		return huma.Error404NotFound(updateErr.Message)
	case updater.ErrCodeDisabled:
		return huma.Error503ServiceUnavailable(updateErr.Message)
	default:
		return huma.Error500InternalServerError(updateErr.Message, updateErr)
	}
}
