// Package handler holds the HTTP plumbing shared by every route, and the
// public /api handlers for payments and media monitoring.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/logging"
)

const maxBodyBytes = 1 << 20

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Get().WithError(err).Warn("failed to encode response")
	}
}

// StatusFor maps a service error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case appErrors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, appErrors.ErrBadRequest), errors.Is(err, appErrors.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, appErrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, appErrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, appErrors.ErrInvalidTransition), errors.Is(err, appErrors.ErrSessionBusy),
		errors.Is(err, appErrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, appErrors.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes {"error": "..."}. Internal errors are logged and hidden.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.LogError(logging.Get(), "http", r.Method+" "+r.URL.Path, middleware.GetReqID(r.Context()), nil, err)
		msg = "internal server error"
	}
	WriteJSON(w, status, map[string]string{"error": msg})
}

// DecodeJSON reads a JSON body into v; unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrors.BadRequest("invalid body: %v", err)
	}
	return nil
}

// UUIDParam parses a chi URL parameter as a UUID.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, appErrors.BadRequest("invalid %s", name)
	}
	return id, nil
}

// UUIDQuery parses a query parameter as a UUID.
func UUIDQuery(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.URL.Query().Get(name))
	if err != nil {
		return uuid.Nil, appErrors.BadRequest("invalid %s", name)
	}
	return id, nil
}

// Health answers liveness checks.
func Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
