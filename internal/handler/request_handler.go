package handler

import (
	"strconv"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RequestHandler struct {
	service service.LifecycleService
}

func NewRequestHandler(s service.LifecycleService) *RequestHandler {
	return &RequestHandler{service: s}
}

// GetRequests lists the requests visible to the caller
// GET /api/v1/requests?stage=&department_id=
func (h *RequestHandler) GetRequests(c *fiber.Ctx) error {
	filter := repository.RequestFilter{Stage: model.RequestStage(c.Query("stage"))}
	if raw := c.Query("department_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "Invalid department_id")
		}
		dept := uint(n)
		filter.DepartmentID = &dept
	}

	reqs, err := h.service.ListRequests(c.UserContext(), actorFrom(c), filter)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Requests", reqs)
}

// GET /api/v1/requests/:id
func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := h.service.GetRequest(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Request", req)
}

// POST /api/v1/requests
func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	var input service.RequestInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	req, err := h.service.CreateRequest(c.UserContext(), actorFrom(c), input)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Request created", req)
}

// PUT /api/v1/requests/:id
func (h *RequestHandler) UpdateRequest(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var input service.RequestInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	req, err := h.service.UpdateDraft(c.UserContext(), actorFrom(c), id, input)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Request updated", req)
}

// DELETE /api/v1/requests/:id
func (h *RequestHandler) DeleteRequest(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.DeleteDraft(c.UserContext(), actorFrom(c), id); err != nil {
		return fail(c, err)
	}
	return ok(c, "Request deleted", nil)
}

// GET /api/v1/requests/:id/history
func (h *RequestHandler) GetHistory(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	history, err := h.service.History(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Request history", history)
}

// GET /api/v1/requests/:id/movements
func (h *RequestHandler) GetMovements(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	movements, err := h.service.Movements(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Request stock movements", movements)
}

// POST /api/v1/requests/:id/submit
func (h *RequestHandler) Submit(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := h.service.SubmitRequest(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Request submitted", req)
}

type authorizeRequest struct {
	IDs      []uuid.UUID      `json:"ids"`
	Decision service.Decision `json:"decision"`
	Note     string           `json:"note"`
}

// POST /api/v1/requests/authorize
func (h *RequestHandler) Authorize(c *fiber.Ctx) error {
	var req authorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	res, err := h.service.Authorize(c.UserContext(), actorFrom(c), req.IDs, req.Decision, req.Note)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Requests authorized", res)
}

// GET /api/v1/requests/:id/availability
func (h *RequestHandler) Availability(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	av, err := h.service.Availability(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Availability", av)
}

type manageRequest struct {
	LineItems model.LineItems `json:"line_items"`
}

// POST /api/v1/requests/:id/manage
func (h *RequestHandler) Manage(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body manageRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	req, err := h.service.Manage(c.UserContext(), actorFrom(c), id, body.LineItems)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Request managed", req)
}

type dispatchRequest struct {
	IDs    []uuid.UUID `json:"ids"`
	UserID string      `json:"user_id"`
}

// Dispatch delivers managed requests; user_id names who physically dispatched them
// POST /api/v1/requests/dispatch
func (h *RequestHandler) Dispatch(c *fiber.Ctx) error {
	var body dispatchRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	var dispatcher *uuid.UUID
	if body.UserID != "" {
		id, err := uuid.Parse(body.UserID)
		if err != nil {
			return badRequest(c, "Invalid user_id")
		}
		dispatcher = &id
	}

	res, err := h.service.Dispatch(c.UserContext(), actorFrom(c), body.IDs, dispatcher)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Requests dispatched", res)
}
