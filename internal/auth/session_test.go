package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("s3cret")
	brandID := uuid.New()

	token, err := issuer.Issue(Session{UserID: "user-1", UserType: UserBrand, BrandID: uuid.NullUUID{UUID: brandID, Valid: true}}, time.Hour)
	require.NoError(t, err)

	s, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID)
	assert.True(t, s.IsBrand())
	assert.Equal(t, brandID, s.BrandID.UUID)
}

func TestParseRejects(t *testing.T) {
	issuer := NewIssuer("s3cret")

	expired, err := issuer.Issue(Session{UserID: "u", UserType: UserInfluencer}, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewIssuer("other").Issue(Session{UserID: "u", UserType: UserInfluencer}, time.Hour)
	require.NoError(t, err)

	badType, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserType:         "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":   expired,
		"other key": otherKey,
		"bad type":  badType,
		"garbage":   "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMiddlewareAndRequireBrand(t *testing.T) {
	issuer := NewIssuer("s3cret")
	handler := Middleware(issuer)(RequireBrand(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(s.UserID))
	})))

	brandToken, _ := issuer.Issue(Session{UserID: "brand-user", UserType: UserBrand}, time.Hour)
	creatorToken, _ := issuer.Issue(Session{UserID: "creator", UserType: UserInfluencer}, time.Hour)

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"influencer", "Bearer " + creatorToken, http.StatusForbidden},
		{"brand", "Bearer " + brandToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/campaigns", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}
