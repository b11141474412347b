package handlers

import (
	"movies-catalog/internal/apperr"
	"movies-catalog/internal/middleware"
	"movies-catalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	users    services.UserService
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewAuthHandler(users services.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{} "user_id"
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return apperr.Validation("username, email and password are required")
	}

	userID, err := h.users.Register(c.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user_id": userID})
}

// Login godoc
// @Summary Log in and receive a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{} "token and user"
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return apperr.Validation("username and password are required")
	}

	token, user, err := h.users.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"token": token, "user": user})
}

// Logout godoc
// @Summary Revoke the caller's token
// @Description Revokes the supplied bearer token. Always succeeds, even when
// @Description the token is missing or already revoked.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := middleware.BearerToken(c); token != "" {
		h.users.Logout(token)
	}
	return c.JSON(fiber.Map{"message": "Logout successful"})
}
