package server

import (
	"context"
	"errors"
	"strings"

	"yacht-dice/internal/auth"
	"yacht-dice/internal/game"

	"github.com/gin-gonic/gin"
)

// caller is who an HTTP request or socket acts as.
type caller struct {
	identity game.Identity
	claims   *auth.Claims
}

// identify resolves the request identity: a bearer token makes a User, a
// guest id makes a Guest, and anything else is rejected.
func (s *Server) identify(c *gin.Context, guestID string) (caller, error) {
	token, hasToken := bearerToken(c.GetHeader("Authorization"))
	guestID = strings.TrimSpace(guestID)
	if hasToken && guestID != "" {
		return caller{}, game.NewError(game.CodeUserOrGuestRequired, "send either a bearer token or a guest id, not both")
	}
	if hasToken {
		return s.verifyToken(token)
	}
	identity, err := game.ResolveIdentity("", guestID)
	if err != nil {
		return caller{}, err
	}
	return caller{identity: identity}, nil
}

// identifySocket applies the socket rule: the token wins over a guest id.
func (s *Server) identifySocket(token, guestID string) (caller, error) {
	if strings.TrimSpace(token) != "" {
		return s.verifyToken(token)
	}
	identity, err := game.ResolveIdentity("", guestID)
	if err != nil {
		return caller{}, err
	}
	return caller{identity: identity}, nil
}

func (s *Server) verifyToken(token string) (caller, error) {
	if s.verifier == nil {
		return caller{}, game.NewError(game.CodeUnauthorized, "bearer tokens are not accepted")
	}
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return caller{}, err
	}
	identity, err := game.ResolveIdentity(claims.Subject, "")
	if err != nil {
		return caller{}, err
	}
	return caller{identity: identity, claims: &claims}, nil
}

// displayName prefers the name the caller sent, then the name carried by
// the token, then the user directory.
func (s *Server) displayName(ctx context.Context, who caller, requested string) (string, error) {
	if name := normalizeText(requested); name != "" {
		return name, nil
	}
	if who.identity.Kind() != game.IdentityUser {
		return "", nil
	}
	if who.claims != nil && who.claims.Name != "" {
		return who.claims.Name, nil
	}
	if s.names == nil {
		return "", nil
	}
	name, err := s.names.DisplayName(ctx, who.identity.UserID())
	if errors.Is(err, game.ErrNotFound) {
		return "", nil
	}
	return name, err
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
