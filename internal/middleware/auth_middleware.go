package middleware

import (
	"strings"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": message})
}

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, jwt.ErrMissingToken.Error())
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return unauthorized(c, jwt.ErrInvalidToken.Error())
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			return unauthorized(c, "User not found")
		}
		if !user.IsActive {
			return unauthorized(c, "User account is inactive")
		}
		if user.TokenVersion != claims.TokenVersion {
			return unauthorized(c, "Session expired (logged in on another device)")
		}

		// Role and department come from the database so changes apply without a new login
		c.Locals("user_id", user.ID.String())
		c.Locals("username", user.Username)
		c.Locals("user_email", user.Email)
		c.Locals("user_name", user.FullName)
		c.Locals("role_code", string(user.RoleCode()))
		c.Locals("department_id", user.DepartmentID)

		return c.Next()
	}
}

// RequireCapability checks the role of the authenticated user against the capability table
func RequireCapability(required model.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role_code").(string)
		if model.RoleCan(model.RoleCode(role), required) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Forbidden: requires '" + string(required) + "' capability",
		})
	}
}
