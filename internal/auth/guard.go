package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kestrel-hq/kestrel/internal/database"
	"github.com/kestrel-hq/kestrel/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors for the two authorization failure modes
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// TokenResolver resolves a bearer credential to a user identity
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.User, error)
}

// RoleChecker reports whether a user holds a role
type RoleChecker interface {
	HasRole(ctx context.Context, userID primitive.ObjectID, role string) (bool, error)
}

// Guard authenticates callers and enforces role requirements
type Guard struct {
	identity TokenResolver
	roles    RoleChecker
}

// NewGuard creates a new guard
func NewGuard(identity TokenResolver, roles RoleChecker) *Guard {
	return &Guard{
		identity: identity,
		roles:    roles,
	}
}

// RequireAdmin resolves the bearer token and verifies the caller holds
// the admin role. A missing or unresolvable token yields
// ErrUnauthenticated; a resolved caller without the role yields
// ErrForbidden. Collaborator failures propagate as-is.
func (g *Guard) RequireAdmin(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	user, err := g.identity.ResolveToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	hasRole, err := g.roles.HasRole(ctx, user.ID, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to check role: %w", err)
	}
	if !hasRole {
		return nil, ErrForbidden
	}

	return user, nil
}

// BearerToken extracts the bearer credential from a request's
// Authorization header, or returns the empty string
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
