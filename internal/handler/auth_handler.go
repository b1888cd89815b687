package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/eventhub/internal/middleware"
	"github.com/mansoorceksport/eventhub/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest allows the Firebase ID token in the body instead of the header
type LoginRequest struct {
	IDToken string `json:"id_token"`
}

// LoginOrRegister handles POST /api/auth/login.
// The Firebase ID token comes as a Bearer header or {"id_token"}.
func (h *AuthHandler) LoginOrRegister(c *fiber.Ctx) error {
	token := middleware.BearerToken(c)
	if token == "" {
		var req LoginRequest
		if len(c.Body()) > 0 {
			_ = c.BodyParser(&req)
		}
		token = req.IDToken
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Missing Firebase ID token",
		})
	}

	resp, err := h.authService.LoginOrRegister(c.UserContext(), service.LoginOrRegisterRequest{
		FirebaseToken: token,
	})
	if err != nil {
		return fail(c, err, "Login", "failed to log in")
	}

	return c.JSON(fiber.Map{
		"token":       resp.Token.Token,
		"expires_in":  resp.Token.ExpiresIn,
		"is_new_user": resp.IsNewUser,
		"message":     welcomeMessage(resp),
		"user":        resp.User,
	})
}

func welcomeMessage(resp *service.LoginOrRegisterResponse) string {
	if resp.IsNewUser {
		return "Welcome! Your account has been created."
	}
	return "Welcome back!"
}

// GetUser handles GET /api/auth/user
func (h *AuthHandler) GetUser(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}

	user, err := h.authService.GetUser(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "GetUser", "failed to fetch user")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}
