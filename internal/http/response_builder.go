package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finledger/internal/middleware/auth"
	"finledger/internal/ports"
	"finledger/internal/reconcile"
	"finledger/internal/services"
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Error codes returned to clients.
const (
	CodeMalformedBody   = "malformed_body"
	CodeValidation      = "validation_failed"
	CodeAmbiguousIDs    = "ambiguous_identity"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeUnauthorized    = "unauthorized"
	CodeRateLimited     = "rate_limited"
	CodeInternal        = "internal_error"
	CodeNotReady        = "not_ready"
	genericErrorMessage = "internal server error"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, errorResponse{Error: message, Code: code, Details: details})
}

// writeError maps service and store errors onto HTTP statuses. Unknown
// errors are logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var identityErr *reconcile.IdentityError
	switch {
	case errors.As(err, &identityErr):
		writeErrorCode(w, http.StatusUnprocessableEntity, CodeAmbiguousIDs, err.Error(), identityErr)
	case errors.Is(err, ErrMalformedBody):
		writeErrorCode(w, http.StatusBadRequest, CodeMalformedBody, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidInput):
		writeErrorCode(w, http.StatusUnprocessableEntity, CodeValidation, err.Error(), nil)
	case errors.Is(err, ports.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, CodeNotFound, "resource not found", nil)
	case errors.Is(err, ports.ErrVersionConflict), errors.Is(err, ports.ErrMonthExists):
		writeErrorCode(w, http.StatusConflict, CodeConflict, err.Error(), nil)
	default:
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "method", r.Method, "error", err)
		writeErrorCode(w, http.StatusInternalServerError, CodeInternal, genericErrorMessage, nil)
	}
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "unauthorized"
	if errors.Is(err, auth.ErrExpiredToken) {
		msg = "token has expired"
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="finledger"`)
	writeErrorCode(w, http.StatusUnauthorized, CodeUnauthorized, msg, nil)
}

func writeRateLimited(w http.ResponseWriter, _ *http.Request) {
	writeErrorCode(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, try again later", nil)
}
