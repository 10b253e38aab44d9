package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/rgbnode/internal/api/models"
	"github.com/smazurov/rgbnode/internal/device"
	"github.com/smazurov/rgbnode/internal/loop"
	"github.com/smazurov/rgbnode/internal/settings"
)

// registerFormRoutes registers the settings form and state endpoints.
func (s *Server) registerFormRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-form",
		Method:      http.MethodGet,
		Path:        "/api/form",
		Summary:     "Get Form",
		Description: "Render the settings form for the current state",
		Tags:        []string{"form"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.FormResponse, error) {
		form, err := loop.Call(ctx, s.pump, func() (settings.Form, error) {
			return s.device.Render(), nil
		})
		if err != nil {
			return nil, mapLoopError(err)
		}
		return &models.FormResponse{Body: form}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-field",
		Method:      http.MethodPost,
		Path:        "/api/form/{id}",
		Summary:     "Set Field",
		Description: "Write one form value. When reload is true the form structure changed.",
		Tags:        []string{"form"},
		Errors:      []int{401, 404, 422, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.FieldRequest) (*models.FieldResponse, error) {
		data, err := loop.Call(ctx, s.pump, func() (models.FieldData, error) {
			reload, err := s.device.Set(input.ID, input.Body.Value)
			if err != nil {
				return models.FieldData{}, err
			}
			return models.FieldData{Reload: reload, Form: s.device.Render()}, nil
		})
		if err != nil {
			return nil, mapFormError(err)
		}
		return &models.FieldResponse{Body: data}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/api/state",
		Summary:     "Get State",
		Description: "Current configuration, profile table and animation state",
		Tags:        []string{"form"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.StateResponse, error) {
		state, err := loop.Call(ctx, s.pump, func() (device.State, error) {
			return s.device.Snapshot(), nil
		})
		if err != nil {
			return nil, mapLoopError(err)
		}
		return &models.StateResponse{Body: state}, nil
	})
}

// mapFormError converts settings errors to Huma HTTP errors.
func mapFormError(err error) error {
	switch {
	case errors.Is(err, settings.ErrUnknownField):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, settings.ErrInvalidValue):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		return mapLoopError(err)
	}
}

// mapLoopError converts pump failures to Huma HTTP errors.
func mapLoopError(err error) error {
	switch {
	case errors.Is(err, loop.ErrClosed):
		return huma.Error503ServiceUnavailable("device loop stopped")
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout("device loop busy")
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
