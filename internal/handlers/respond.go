package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gramseva/admin-backend/internal/authz"
	"github.com/gramseva/admin-backend/internal/dto"
	"github.com/gramseva/admin-backend/internal/services"
)

// fail translates service and authorization errors to client responses.
// Anything unrecognized is a store/internal failure: logged, returned as 500.
func fail(c *fiber.Ctx, err error) error {
	var authzErr *authz.Error
	if errors.As(err, &authzErr) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Forbidden",
			Reason:  string(authzErr.Reason),
		})
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrInactiveUser):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrUnitNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrUnitHasChildren):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(), Reason: string(authz.ReasonHasChildren),
		})
	case errors.Is(err, services.ErrParentNotFound),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidUnitType),
		errors.Is(err, services.ErrWrongPassword),
		errors.Is(err, services.ErrSamePassword):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}
