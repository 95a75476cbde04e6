// Package httputil centralizes JSON response writing and domain error
// translation so every handler renders the same envelope.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for failed requests. Extra holds
// error-specific fields (e.g. current/resulting totals for invariant
// rejections) merged into the envelope at the top level.
type ErrorResponse struct {
	Error       string         `json:"error"`
	Description string         `json:"error_description,omitempty"`
	Extra       map[string]any `json:"-"`
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeContention:
		return http.StatusConflict
	case dErrors.CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Internal errors omit the description so causes never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorExtra(w, err, nil)
}

// WriteErrorExtra writes the error envelope with additional top-level fields.
func WriteErrorExtra(w http.ResponseWriter, err error, extra map[string]any) {
	code := dErrors.CodeOf(err)
	body := map[string]any{"error": string(code)}
	if code != dErrors.CodeInternal {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	for k, v := range extra {
		body[k] = v
	}
	WriteJSON(w, statusFor(code), body)
}
