package controller

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ampplex/influencerflow/internal/auth"
)

// brandID is the caller's brand, or uuid.Nil for influencers and anonymous requests.
func brandID(r *http.Request) uuid.UUID {
	s, ok := auth.FromContext(r.Context())
	if !ok || !s.BrandID.Valid {
		return uuid.Nil
	}
	return s.BrandID.UUID
}

// session is the caller's session, or nil for anonymous requests.
func session(r *http.Request) *auth.Session {
	s, _ := auth.FromContext(r.Context())
	return s
}
