package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ampplex/influencerflow/internal/auth"
	appErrors "github.com/ampplex/influencerflow/internal/errors"
)

// authorizeParty allows the brand that owns the campaign and the influencer
// the outreach was sent to.
func authorizeParty(sess *auth.Session, brandID, influencerID uuid.UUID) error {
	if sess == nil {
		return appErrors.ErrUnauthorized
	}
	if sess.IsBrand() && sess.BrandID.Valid && sess.BrandID.UUID == brandID {
		return nil
	}
	if isInfluencer(sess, influencerID) {
		return nil
	}
	return fmt.Errorf("%w: not a party to this deal", appErrors.ErrForbidden)
}

// authorizeInfluencer allows only the named influencer.
func authorizeInfluencer(sess *auth.Session, influencerID uuid.UUID) error {
	if sess == nil {
		return appErrors.ErrUnauthorized
	}
	if !isInfluencer(sess, influencerID) {
		return fmt.Errorf("%w: only the contracted influencer may do this", appErrors.ErrForbidden)
	}
	return nil
}

func isInfluencer(sess *auth.Session, influencerID uuid.UUID) bool {
	return sess.UserType == auth.UserInfluencer && influencerID != uuid.Nil && sess.UserID == influencerID.String()
}
