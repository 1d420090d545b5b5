package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/ampplex/influencerflow/internal/handler"
	"github.com/ampplex/influencerflow/internal/logging"
	"github.com/ampplex/influencerflow/internal/service"
)

type NegotiationController struct {
	NegotiationService *service.NegotiationService
}

func (c *NegotiationController) Start(w http.ResponseWriter, r *http.Request) {
	var body service.StartNegotiationInput
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	resp, err := c.NegotiationService.Start(r.Context(), session(r), body)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, resp)
}

// sseWriter opens the event stream lazily so errors raised before the first
// frame can still be sent as a plain JSON response.
type sseWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (s *sseWriter) send(e service.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	payload, err := json.Marshal(e)
	if err != nil {
		logging.Get().WithError(err).Warn("failed to encode stream event")
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", payload)
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

func (s *sseWriter) hasStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Respond relays one negotiation turn as server-sent events: stream, status,
// retry and finally complete or error.
func (c *NegotiationController) Respond(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var body struct {
		Message string `json:"message"`
	}
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	flusher, _ := w.(http.Flusher)
	out := &sseWriter{w: w, flusher: flusher}

	_, err := c.NegotiationService.Respond(r.Context(), session(r), sessionID, body.Message, out.send)
	if err == nil {
		return
	}
	if !out.hasStarted() {
		handler.WriteError(w, r, err)
		return
	}
	if r.Context().Err() != nil {
		return
	}
	out.send(service.Event{Type: service.EventError, Message: err.Error()})
}

func (c *NegotiationController) Sessions(w http.ResponseWriter, r *http.Request) {
	raw, err := c.NegotiationService.Sessions(r.Context())
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}
