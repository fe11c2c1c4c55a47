// Package auth verifies the bearer tokens issued by the account service and
// resolves display names for signed-in users.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"yacht-dice/internal/game"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified subset of a bearer token.
type Claims struct {
	Subject string
	Role    string
	Name    string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
}

// NameResolver looks up the display name of a registered user.
type NameResolver interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewVerifier(secret, issuer string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Verifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer), now: time.Now}, nil
}

// Verify parses token and returns its claims. Any failure is reported as
// UNAUTHORIZED without detail.
func (v *Verifier) Verify(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, game.NewError(game.CodeUnauthorized, "token is required")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}
	subject := strings.TrimSpace(parsed.Subject)
	if subject == "" {
		return Claims{}, game.NewError(game.CodeUnauthorized, "token subject is required")
	}
	return Claims{Subject: subject, Role: parsed.Role, Name: strings.TrimSpace(parsed.Name)}, nil
}

// Sign mints a token for claims that expires after ttl.
func (v *Verifier) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := v.now()
	registered := jwt.RegisteredClaims{
		Subject:   claims.Subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if v.issuer != "" {
		registered.Issuer = v.issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{RegisteredClaims: registered, Role: claims.Role, Name: claims.Name})
	return token.SignedString(v.secret)
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &game.Error{Code: game.CodeUnauthorized, Message: "token is expired", Cause: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &game.Error{Code: game.CodeUnauthorized, Message: "token signature is invalid", Cause: err}
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return &game.Error{Code: game.CodeUnauthorized, Message: "token issuer mismatch", Cause: err}
	default:
		return &game.Error{Code: game.CodeUnauthorized, Message: "token is invalid", Cause: err}
	}
}

// ClaimNames resolves display names from a fixed map. It stands in for the
// user table when the server runs without a database.
type ClaimNames map[string]string

func (c ClaimNames) DisplayName(_ context.Context, userID string) (string, error) {
	if name, ok := c[userID]; ok {
		return name, nil
	}
	return "", game.ErrNotFound
}
