package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/eventhub/internal/domain"
)

// Context keys for storing user info
const (
	UserIDKey = "userID"
	RolesKey  = "roles"
	EmailKey  = "email"
)

// TokenParser validates an access token and returns its claims
type TokenParser interface {
	ParseAccessToken(tokenString string) (*domain.AccessClaims, error)
}

// VerifyToken validates the JWT and extracts claims
func VerifyToken(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Missing authorization token",
			})
		}

		claims, err := parser.ParseAccessToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or expired token",
			})
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// OptionalAuth stores claims when a valid token is present and otherwise
// lets the request through anonymously. Used on public event reads so the
// response can carry the caller's RSVP and saved state.
func OptionalAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := parser.ParseAccessToken(tokenString); err == nil {
				storeClaims(c, claims)
			}
		}
		return c.Next()
	}
}

// AuthorizeRole checks if user has at least one of the required roles
func AuthorizeRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rolesInterface := c.Locals(RolesKey)
		if rolesInterface == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "No roles found in token",
			})
		}

		userRoles, ok := rolesInterface.([]string)
		if !ok {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid roles format",
			})
		}

		for _, userRole := range userRoles {
			for _, allowedRole := range allowedRoles {
				if userRole == allowedRole {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":        false,
			"error":          "Insufficient permissions",
			"required_roles": allowedRoles,
		})
	}
}

// GetUserID extracts the user ID from Fiber context.
// Empty when the request is anonymous.
func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// BearerToken returns the token from an "Authorization: Bearer <token>" header.
// A bare token without the scheme is accepted too.
func BearerToken(c *fiber.Ctx) string {
	return bearerToken(c)
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return authHeader
}

func storeClaims(c *fiber.Ctx, claims *domain.AccessClaims) {
	c.Locals(UserIDKey, claims.UserID)
	c.Locals(RolesKey, claims.Roles)
	c.Locals(EmailKey, claims.Email)
}
