package handler

import (
	"errors"
	"fmt"
	"strconv"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/service"
	"indrhi-inventory/pkg/jwt"
	"indrhi-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Response is the envelope of every API answer
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{Success: true, Message: message, Data: data})
}

func created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Message: message, Data: data})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{Success: false, Message: message})
}

// fail answers with the status that matches the error kind
func fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.Get().WithField("path", c.Path()).Error(err.Error())
		message = "Internal Server Error"
	}
	return c.Status(status).JSON(Response{Success: false, Message: message})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrDuplicateSubmission),
		errors.Is(err, service.ErrConstraintViolation),
		errors.Is(err, service.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidQuantity):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrUpstreamFailure):
		return fiber.StatusBadGateway
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrWrongPassword):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// actorFrom rebuilds the calling user from the locals set by RequireAuth
func actorFrom(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if id, ok := c.Locals("user_id").(string); ok {
		actor.UserID, _ = uuid.Parse(id)
	}
	actor.Username, _ = c.Locals("username").(string)
	actor.Email, _ = c.Locals("user_email").(string)
	actor.Name, _ = c.Locals("user_name").(string)
	if role, ok := c.Locals("role_code").(string); ok {
		actor.Role = model.RoleCode(role)
	}
	actor.DepartmentID, _ = c.Locals("department_id").(*uint)
	return actor
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s %q", service.ErrValidation, name, c.Params(name))
	}
	return id, nil
}

func uintParam(c *fiber.Ctx, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", service.ErrValidation, name, c.Params(name))
	}
	return uint(n), nil
}
