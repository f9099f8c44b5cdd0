package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gramseva/admin-backend/internal/dto"
	"github.com/gramseva/admin-backend/internal/services"
)

type AuthHandler struct {
	accounts *services.AccountService
	creds    *services.CredentialService
}

func NewAuthHandler(accounts *services.AccountService, creds *services.CredentialService) *AuthHandler {
	return &AuthHandler{accounts: accounts, creds: creds}
}

// Login authenticates email+password and returns a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.accounts.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	token, err := h.creds.IssueToken(user.Email, h.creds.DefaultExpiry())
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
