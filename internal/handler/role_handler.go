package handler

import (
	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves departments and roles
type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// GetRoles returns all roles
// GET /api/v1/roles
func (h *CatalogHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.service.ListRoles(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Roles", roles)
}

// GetCapabilities returns the fixed capability set of each role code
// GET /api/v1/roles/capabilities
func (h *CatalogHandler) GetCapabilities(c *fiber.Ctx) error {
	table := make(map[model.RoleCode][]model.Capability)
	for _, code := range []model.RoleCode{model.RoleAdmin, model.RoleDepartment, model.RoleAuthorizer, model.RoleWarehouse} {
		table[code] = model.CapabilitiesOf(code)
	}
	return ok(c, "Capabilities", table)
}

// POST /api/v1/roles
func (h *CatalogHandler) CreateRole(c *fiber.Ctx) error {
	var input service.RoleInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	role, err := h.service.CreateRole(c.UserContext(), input)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Role created", role)
}

// PUT /api/v1/roles/:id
func (h *CatalogHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var input service.RoleInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	role, err := h.service.UpdateRole(c.UserContext(), id, input)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Role updated", role)
}

// DELETE /api/v1/roles/:id
func (h *CatalogHandler) DeleteRole(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.DeleteRole(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, "Role deleted", nil)
}
