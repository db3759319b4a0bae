package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/trangpham2601/group-task-manager/internal/httpx"
	"github.com/trangpham2601/group-task-manager/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type NotificationSettingsRequest struct {
	Enabled bool `json:"enabled"`
}

// Register creates a new account.
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUsername),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrWeakPassword):
			return httpx.BadRequest(c, "invalid_input", err.Error())
		case errors.Is(err, service.ErrEmailTaken),
			errors.Is(err, service.ErrUsernameTaken):
			return httpx.Error(c, fiber.StatusConflict, "already_exists", err.Error())
		default:
			return httpx.Internal(c, "register_failed")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

// Login exchanges credentials for an access token.
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return httpx.Unauthorized(c, "invalid_credentials", "Invalid email or password")
		}
		return httpx.Internal(c, "login_failed")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.ToResponse(),
	})
}

// UpdateNotificationSettings toggles whether notifications are shown to
// this user. The presenter reads the flag on every record.
// PUT /api/me/notifications
func (h *AuthHandler) UpdateNotificationSettings(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing user identity")
	}

	var req NotificationSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if err := h.authService.SetNotificationsEnabled(userID, req.Enabled); err != nil {
		return httpx.Internal(c, "settings_update_failed")
	}

	return c.JSON(fiber.Map{"notifications_enabled": req.Enabled})
}
