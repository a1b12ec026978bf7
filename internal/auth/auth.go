package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMissingToken = errors.New("missing_token")
	ErrInvalidToken = errors.New("invalid_token")
)

// UserContext is the request-scoped identity decoded from a bearer token.
// Only the claims listed here are recognized; anything else in the token is
// dropped.
type UserContext struct {
	UserID      string
	Roles       []string
	Permissions []string
	LocationID  string
	AccessLevel int
}

// HasRole reports whether the user carries the given role.
func (u UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

type tokenClaims struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	LocationID  string   `json:"locationId"`
	AccessLevel int      `json:"accessLevel"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens against a shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a signed token, returning the recognized claims.
func (v *Verifier) Verify(token string) (*UserContext, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}

	return &UserContext{
		UserID:      claims.Subject,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
		LocationID:  claims.LocationID,
		AccessLevel: claims.AccessLevel,
	}, nil
}

type contextKey struct{}

// WithUser stores the decoded identity on the context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the decoded identity, if any.
func UserFromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(contextKey{}).(*UserContext)
	return user, ok && user != nil
}
