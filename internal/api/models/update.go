package models

import "github.com/smazurov/rgbnode/internal/updater"

// UpdateCheckResponse carries the newest release.
type UpdateCheckResponse struct {
	Body updater.Release
}

// UpdateStatusResponse carries the updater state.
type UpdateStatusResponse struct {
	Body updater.Status
}

// UpdateActionData acknowledges an apply or rollback.
type UpdateActionData struct {
	Message string        `json:"message" example:"Update applied, restarting" doc:"What happened"`
	State   updater.State `json:"state" example:"restarting" doc:"Updater state after the action"`
}

// UpdateActionResponse wraps UpdateActionData.
type UpdateActionResponse struct {
	Body UpdateActionData
}
