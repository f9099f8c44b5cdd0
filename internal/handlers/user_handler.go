package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/authz"
	"github.com/gramseva/admin-backend/internal/dto"
	"github.com/gramseva/admin-backend/internal/middleware"
	"github.com/gramseva/admin-backend/internal/services"
)

type UserHandler struct {
	accounts *services.AccountService
}

func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// Register creates a user on behalf of an admin or super admin.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}

	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.accounts.Register(c.UserContext(), caller, &req)
	if err != nil {
		var authzErr *authz.Error
		if errors.As(err, &authzErr) || errors.Is(err, services.ErrEmailTaken) {
			return fail(c, err)
		}
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}

	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	skip, _ := strconv.Atoi(c.Query("skip", "0"))

	users, err := h.accounts.ListUsers(c.UserContext(), caller, limit, skip)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	return c.JSON(caller)
}

// UpdateMyProfile is the self-service channel for non-identity fields.
func (h *UserHandler) UpdateMyProfile(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.accounts.UpdateProfile(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) ChangeMyPassword(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.accounts.ChangePassword(c.UserContext(), caller, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrWrongPassword) || errors.Is(err, services.ErrSamePassword) {
			return fail(c, err)
		}
		return badRequest(c, err.Error())
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated successfully"})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	user, err := h.accounts.GetUser(c.UserContext(), caller, targetID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.accounts.UpdateUser(c.UserContext(), caller, targetID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	if err := h.accounts.DeleteUser(c.UserContext(), caller, targetID); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) SetStatus(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.accounts.SetUserStatus(c.UserContext(), caller, targetID, req.IsActive)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.accounts.SetUserRole(c.UserContext(), caller, targetID, req.Role)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) AuditLog(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	entries, err := h.accounts.AuditLogFor(c.UserContext(), caller, targetID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entries)
}
