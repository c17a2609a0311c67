// Package httputil maps domain errors onto HTTP responses and decodes
// request bodies. Handlers go through this package so every endpoint speaks
// the same error envelope.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "triex/pkg/domain-errors"
)

// errorResponse is the wire shape for every error.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status. Encoding failures are swallowed;
// headers are already on the wire by then.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError translates a coded error into a status and error envelope.
// Internal errors hide their message from clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: errorName(code)}
	if code != dErrors.CodeInternal && code != dErrors.CodeInvariantViolation {
		resp.Description = dErrors.MessageOf(err)
	}
	WriteJSON(w, statusFor(code), resp)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorName(code dErrors.Code) string {
	if code == dErrors.CodeInternal || code == dErrors.CodeInvariantViolation {
		return "internal_error"
	}
	return string(code)
}

// Validatable lets request types normalize and validate themselves after
// decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes a JSON body into T and runs its validation.
// On failure it writes the error response and reports ok=false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	req := PT(new(T))
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request decode failed", "request_id", requestID, "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body must be valid JSON"))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request validation failed", "request_id", requestID, "error", err)
		}
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
