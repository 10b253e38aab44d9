package nats

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smazurov/rgbnode/internal/device"
	"github.com/smazurov/rgbnode/internal/loop"
	"github.com/smazurov/rgbnode/internal/settings"
)

// DefaultPrefix is the first subject token of every subject.
const DefaultPrefix = "rgbnode"

// Subject suffixes below the prefix.
const (
	SuffixFormGet  = "form.get"
	SuffixFormSet  = "form.set"
	SuffixStateGet = "state.get"
	SuffixApplied  = "events.applied"
	SuffixRecord   = "events.record"
	SuffixReload   = "events.reload"
)

// Subject joins prefix and suffix.
func Subject(prefix, suffix string) string {
	return prefix + "." + suffix
}

// Error codes carried in ReplyError.
const (
	CodeBadRequest   = "bad_request"
	CodeUnknownField = "unknown_field"
	CodeInvalidValue = "invalid_value"
	CodeUnavailable  = "unavailable"
	CodeInternal     = "internal"
)

// SetRequest writes one form value, like POST /api/form/{id}.
type SetRequest struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// Reply answers every request. Exactly one of Form, State or Error is set,
// except form.set which sets Reload and Form.
type Reply struct {
	Reload bool           `json:"reload,omitempty"`
	Form   *settings.Form `json:"form,omitempty"`
	State  *device.State  `json:"state,omitempty"`
	Error  *ReplyError    `json:"error,omitempty"`
}

// ReplyError describes a failed request.
type ReplyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// errorReply maps device, settings and loop errors to reply codes.
func errorReply(err error) Reply {
	code := CodeInternal
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		code = CodeBadRequest
	case errors.Is(err, settings.ErrUnknownField):
		code = CodeUnknownField
	case errors.Is(err, settings.ErrInvalidValue):
		code = CodeInvalidValue
	case errors.Is(err, loop.ErrClosed):
		code = CodeUnavailable
	}
	return Reply{Error: &ReplyError{Code: code, Message: err.Error()}}
}
