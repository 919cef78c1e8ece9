package handler

import (
	"indrhi-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReceiptHandler struct {
	service service.ReceiptService
}

func NewReceiptHandler(s service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{service: s}
}

// GET /api/v1/receipts
func (h *ReceiptHandler) GetReceipts(c *fiber.Ctx) error {
	receipts, err := h.service.ListReceipts(c.UserContext(), actorFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Receipts", receipts)
}

// GET /api/v1/receipts/:id
func (h *ReceiptHandler) GetReceipt(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	receipt, err := h.service.GetReceipt(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Receipt", receipt)
}

// POST /api/v1/receipts
func (h *ReceiptHandler) CreateReceipt(c *fiber.Ctx) error {
	var input service.ReceiptInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	res, err := h.service.ReceiveMerchandise(c.UserContext(), actorFrom(c), input)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Merchandise received", res)
}

// PUT /api/v1/receipts/:id
func (h *ReceiptHandler) UpdateReceipt(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var input service.ReceiptInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	res, err := h.service.UpdateMerchandiseReceipt(c.UserContext(), actorFrom(c), id, input)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Receipt updated", res)
}

// DELETE /api/v1/receipts/:id
func (h *ReceiptHandler) DeleteReceipt(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	res, err := h.service.DeleteMerchandiseReceipt(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Receipt deleted", res)
}
