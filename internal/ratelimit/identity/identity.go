// Package identity derives the stable per-caller key used for rate limiting.
package identity

import (
	"net/http"
	"strings"

	"limitgate/internal/jwtauth"
	"limitgate/internal/platform/middleware/metadata"
	"limitgate/internal/ratelimit/models"
)

// TokenValidator is satisfied by jwtauth.Validator. Only the principal id
// is consumed here.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwtauth.Claims, error)
}

// Resolver produces exactly one identity per request. Authenticated callers
// are keyed by user id (stable across IP changes, fairer under NAT);
// everyone else falls back to client IP.
type Resolver struct {
	validator TokenValidator
}

// NewResolver creates a resolver. A nil validator disables user identities
// entirely (IP-only mode).
func NewResolver(validator TokenValidator) *Resolver {
	return &Resolver{validator: validator}
}

// Resolve never fails: when no address is recoverable it synthesizes
// ip:unknown rather than erroring, so limiting degrades instead of breaking.
func (r *Resolver) Resolve(req *http.Request) models.Identity {
	if id := r.userIdentity(req); id != nil {
		return *id
	}

	ip := metadata.GetClientIP(req.Context())
	if ip == "" {
		ip = metadata.ClientIPFromRequest(req)
	}
	if ip == "" {
		ip = "unknown"
	}
	return models.Identity{Kind: models.IdentityIP, Value: ip}
}

func (r *Resolver) userIdentity(req *http.Request) *models.Identity {
	if r.validator == nil {
		return nil
	}
	authHeader := req.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return nil
	}
	claims, err := r.validator.ValidateToken(token)
	if err != nil || claims.UserID == "" {
		// An invalid token is not an identity failure; the caller is simply
		// treated as anonymous and keyed by IP.
		return nil
	}
	return &models.Identity{Kind: models.IdentityUser, Value: claims.UserID}
}
