package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gramseva/admin-backend/internal/config"
	"github.com/gramseva/admin-backend/internal/dto"
	"github.com/gramseva/admin-backend/internal/models"
	"github.com/gramseva/admin-backend/internal/services"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// LoadCurrentUser resolves the token subject to an active user record and
// stores it in context locals. Runs after JWTProtected.
func LoadCurrentUser(accounts *services.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return unauthorized(c)
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c)
		}
		email, err := services.Subject(claims)
		if err != nil {
			return unauthorized(c)
		}

		user, err := accounts.CurrentUser(c.UserContext(), email)
		if err != nil {
			if errors.Is(err, services.ErrInactiveUser) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error: true, Message: "Inactive user",
				})
			}
			return unauthorized(c)
		}

		c.Locals("current_user", user)
		return c.Next()
	}
}

// CurrentUser extracts the user loaded by LoadCurrentUser.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("current_user").(*models.User)
	return user, ok
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
