// Package auth derives the caller's session from a signed bearer token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type UserType string

const (
	UserBrand      UserType = "brand"
	UserInfluencer UserType = "influencer"
)

var ErrInvalidToken = errors.New("auth: invalid token")

// Session is the identity attached to a request.
type Session struct {
	UserID   string
	UserType UserType
	BrandID  uuid.NullUUID
}

func (s *Session) IsBrand() bool {
	return s != nil && s.UserType == UserBrand
}

type claims struct {
	UserType UserType `json:"user_type"`
	BrandID  string   `json:"brand_id,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// Issue signs an HS256 token for s that expires after ttl.
func (i *Issuer) Issue(s Session, ttl time.Duration) (string, error) {
	c := claims{
		UserType: s.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	if s.BrandID.Valid {
		c.BrandID = s.BrandID.UUID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

func (i *Issuer) Parse(token string) (*Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if c.UserType != UserBrand && c.UserType != UserInfluencer {
		return nil, fmt.Errorf("%w: unknown user_type %q", ErrInvalidToken, c.UserType)
	}

	s := &Session{UserID: c.Subject, UserType: c.UserType}
	if c.BrandID != "" {
		id, err := uuid.Parse(c.BrandID)
		if err != nil {
			return nil, fmt.Errorf("%w: brand_id: %v", ErrInvalidToken, err)
		}
		s.BrandID = uuid.NullUUID{UUID: id, Valid: true}
	}
	return s, nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// Middleware rejects requests without a valid bearer token.
func Middleware(i *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}
			s, err := i.Parse(strings.TrimSpace(raw))
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireBrand only lets brand sessions through.
func RequireBrand(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		if !ok || !s.IsBrand() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"brand account required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
