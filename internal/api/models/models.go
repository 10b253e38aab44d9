package models

import (
	"github.com/smazurov/rgbnode/internal/device"
	"github.com/smazurov/rgbnode/internal/settings"
	"github.com/smazurov/rgbnode/internal/version"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"rgbnode is running" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionResponse struct {
	Body version.Info
}

// Form models
type FormResponse struct {
	Body settings.Form
}

type FieldRequest struct {
	ID   string `path:"id" example:"w0" doc:"Widget id from the rendered form"`
	Body struct {
		Value any `json:"value" doc:"New value: bool for switches, number for selects and sliders, number or #rrggbb for colors"`
	}
}

type FieldData struct {
	Reload bool          `json:"reload" example:"false" doc:"Whether the form structure changed"`
	Form   settings.Form `json:"form" doc:"Form after the update"`
}

type FieldResponse struct {
	Body FieldData
}

// State models
type StateResponse struct {
	Body device.State
}

// StreamOpened is the first event on the log and stats streams. It gets
// the response to the client before any data exists.
type StreamOpened struct {
	Stream   string `json:"stream" enum:"logs,metrics" doc:"Stream name"`
	Buffered int    `json:"buffered" example:"12" doc:"Buffered log entries replayed next"`
}
