package handler

import (
	"indrhi-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GET /api/v1/departments
func (h *CatalogHandler) GetDepartments(c *fiber.Ctx) error {
	depts, err := h.service.ListDepartments(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Departments", depts)
}

// GET /api/v1/departments/:id
func (h *CatalogHandler) GetDepartment(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	dept, err := h.service.GetDepartment(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Department", dept)
}

// POST /api/v1/departments
func (h *CatalogHandler) CreateDepartment(c *fiber.Ctx) error {
	var input service.DepartmentInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	dept, err := h.service.CreateDepartment(c.UserContext(), input)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Department created", dept)
}

// PUT /api/v1/departments/:id
func (h *CatalogHandler) UpdateDepartment(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var input service.DepartmentInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	dept, err := h.service.UpdateDepartment(c.UserContext(), id, input)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Department updated", dept)
}

// DELETE /api/v1/departments/:id
func (h *CatalogHandler) DeleteDepartment(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.DeleteDepartment(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, "Department deleted", nil)
}
