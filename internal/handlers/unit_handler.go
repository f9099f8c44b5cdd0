package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gramseva/admin-backend/internal/dto"
	"github.com/gramseva/admin-backend/internal/middleware"
	"github.com/gramseva/admin-backend/internal/services"
)

type UnitHandler struct {
	units *services.UnitService
}

func NewUnitHandler(units *services.UnitService) *UnitHandler {
	return &UnitHandler{units: units}
}

func (h *UnitHandler) Create(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}

	var req dto.CreateUnitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	unit, err := h.units.Create(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(unit)
}

func (h *UnitHandler) List(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}

	units, err := h.units.List(c.UserContext(), caller)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(units)
}

func (h *UnitHandler) Get(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid unit id")
	}

	unit, err := h.units.Get(c.UserContext(), caller, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(unit)
}

func (h *UnitHandler) Update(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid unit id")
	}

	var req dto.UpdateUnitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	unit, err := h.units.Update(c.UserContext(), caller, id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(unit)
}

func (h *UnitHandler) Delete(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid unit id")
	}

	if err := h.units.Delete(c.UserContext(), caller, id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UnitHandler) Children(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid unit id")
	}

	units, err := h.units.Children(c.UserContext(), caller, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(units)
}

func (h *UnitHandler) Ancestors(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid unit id")
	}

	units, err := h.units.Ancestors(c.UserContext(), caller, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(units)
}

// Scope returns the caller's expanded unit scope as a flat id list.
func (h *UnitHandler) Scope(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, services.ErrInvalidToken)
	}

	ids, err := h.units.Scope(c.UserContext(), caller)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.UnitScopeResponse{UnitIDs: ids})
}
