package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-account-service/internal/domain"
	apperrors "github.com/spec-kit/user-account-service/pkg/util/errorutil"
)

const currentUserKey = "current_user"

// TokenResolver resolves a session token to its user record.
type TokenResolver interface {
	GetByToken(ctx context.Context, token string) (*domain.User, error)
}

// Middleware loads the current user from a bearer token.
type Middleware struct {
	resolver TokenResolver
}

// NewMiddleware constructs middleware.
func NewMiddleware(resolver TokenResolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	user, err := m.resolver.GetByToken(c.UserContext(), parts[1])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("unknown token")
		}
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND" {
			return apperrors.NewUnauthorized("unknown token")
		}
		return apperrors.MapError(err)
	}

	c.Locals(currentUserKey, user)
	return c.Next()
}

// CurrentUserFromContext retrieves the authenticated user.
func CurrentUserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(currentUserKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
