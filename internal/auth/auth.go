// Package auth reads the caller identity carried by bearer tokens. Tokens
// are issued elsewhere; this service only verifies them.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
)

var (
	ErrMissingSecret = errors.New("jwt secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims is the token payload. The subject is the user id; location ids are
// only present for candidate accounts.
type Claims struct {
	jwt.RegisteredClaims
	Role           scope.Role         `json:"role"`
	Position       candidate.Position `json:"position,omitempty"`
	CountyID       *uint              `json:"county_id,omitempty"`
	ConstituencyID *uint              `json:"constituency_id,omitempty"`
	WardID         *uint              `json:"ward_id,omitempty"`
}

// Caller converts the claims into the identity requests run as.
func (c *Claims) Caller() (scope.Caller, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return scope.Caller{}, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	switch c.Role {
	case scope.RoleAdmin, scope.RoleCandidate, scope.RoleAgent, scope.RoleObserver, scope.RolePublic:
	default:
		return scope.Caller{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, c.Role)
	}

	return scope.Caller{
		UserID:         userID,
		Role:           c.Role,
		Position:       c.Position,
		CountyID:       c.CountyID,
		ConstituencyID: c.ConstituencyID,
		WardID:         c.WardID,
	}, nil
}

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier. An empty issuer accepts any issuer.
func NewVerifier(secret, issuer string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Verifier{secret: []byte(secret), issuer: issuer}, nil
}

// Verify validates token and returns its caller.
func (v *Verifier) Verify(token string) (scope.Caller, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return scope.Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Caller()
}

// Issue signs a token for caller valid for ttl. It is used by tooling and
// tests; the API itself never hands out tokens.
func (v *Verifier) Issue(caller scope.Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.UserID.String(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:           caller.Role,
		Position:       caller.Position,
		CountyID:       caller.CountyID,
		ConstituencyID: caller.ConstituencyID,
		WardID:         caller.WardID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
