// Package middleware provides authentication and request-scoped middleware for the application.
package middleware

import (
	"context"

	"projecthub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TokenCookie is the name of the cookie carrying the session token.
const TokenCookie = "token"

// localsUserID is the fiber.Ctx locals key holding the authenticated user id.
const localsUserID = "userID"

const (
	msgNoToken      = "no token entered"
	msgInvalidToken = "invalid token"
)

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// AuthRequired rejects requests without a valid session cookie and attaches
// the caller's user id to the request otherwise. It performs no I/O.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(TokenCookie)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError(msgNoToken))
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError(msgInvalidToken))
		}

		setUserID(c, userID)
		return c.Next()
	}
}

// OptionalAuth attaches the user id when a valid session cookie is present and
// lets anonymous requests through unchanged.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Cookies(TokenCookie); token != "" {
			if userID, err := verifier.Verify(token); err == nil {
				setUserID(c, userID)
			}
		}
		return c.Next()
	}
}

// RequireExistingUser rejects authenticated requests whose user no longer
// exists. It must run after AuthRequired.
func RequireExistingUser(exists func(ctx context.Context, id uuid.UUID) (bool, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError(msgNoToken))
		}
		found, err := exists(c.UserContext(), userID)
		if err != nil {
			Logger.ErrorContext(c.UserContext(), "user lookup failed", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		if !found {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError(msgInvalidToken))
		}
		return c.Next()
	}
}

func setUserID(c *fiber.Ctx, userID uuid.UUID) {
	c.Locals(localsUserID, userID)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}

// UserID returns the authenticated user id stored on the request.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(localsUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// UserIDFromContext returns the authenticated user id stored on ctx.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
