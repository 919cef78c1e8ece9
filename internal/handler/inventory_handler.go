package handler

import (
	"indrhi-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// GetArticles lists the catalog, optionally filtered by ?search= on code or description
// GET /api/v1/articles
func (h *InventoryHandler) GetArticles(c *fiber.Ctx) error {
	articles, err := h.service.ListArticles(c.UserContext(), c.Query("search"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Articles", articles)
}

// GET /api/v1/articles/:id
func (h *InventoryHandler) GetArticle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	article, err := h.service.GetArticle(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Article", article)
}

// POST /api/v1/articles
func (h *InventoryHandler) CreateArticle(c *fiber.Ctx) error {
	var input service.ArticleInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	article, err := h.service.CreateArticle(c.UserContext(), actorFrom(c), input)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Article created", article)
}

// PUT /api/v1/articles/:id
func (h *InventoryHandler) UpdateArticle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var input service.ArticleInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	article, err := h.service.UpdateArticle(c.UserContext(), actorFrom(c), id, input)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Article updated", article)
}

// DELETE /api/v1/articles/:id
func (h *InventoryHandler) DeleteArticle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.DeleteArticle(c.UserContext(), actorFrom(c), id); err != nil {
		return fail(c, err)
	}
	return ok(c, "Article deleted", nil)
}

type adjustRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note"`
}

// AdjustStock sets the on-hand quantity after a physical count
// POST /api/v1/articles/:id/adjust
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	article, err := h.service.AdjustStock(c.UserContext(), actorFrom(c), id, req.Quantity, req.Note)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Stock adjusted", article)
}

// GET /api/v1/articles/code/:code/movements
func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	movements, err := h.service.Movements(c.UserContext(), actorFrom(c), c.Params("code"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Stock movements", movements)
}

// GET /api/v1/articles/code/:code/reconcile
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	rec, err := h.service.Reconcile(c.UserContext(), actorFrom(c), c.Params("code"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Reconciliation", rec)
}
