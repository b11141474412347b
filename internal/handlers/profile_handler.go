package handlers

import (
	"movies-catalog/internal/apperr"
	"movies-catalog/internal/middleware"
	"movies-catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ProfileHandler struct {
	users   services.UserService
	storage *services.StorageService
	logger  *logrus.Logger
}

func NewProfileHandler(users services.UserService, storage *services.StorageService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{
		users:   users,
		storage: storage,
		logger:  logger,
	}
}

// Get godoc
// @Summary The caller's user record and recent ratings
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.Profile
// @Failure 404 {object} map[string]string
// @Router /profile [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	profile, err := h.users.Profile(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// Update godoc
// @Summary Update username/email/picture and batch-upsert ratings
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProfileUpdateRequest true "Profile changes"
// @Success 200 {object} map[string]interface{} "user"
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /profile [put]
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var req ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	user, err := h.users.UpdateProfile(c.Context(), middleware.UserID(c), services.ProfileUpdateInput{
		Username:       req.Username,
		Email:          req.Email,
		ProfilePicture: req.ProfilePicture,
		Ratings:        req.Ratings,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// PictureUploadURL godoc
// @Summary Presigned URL for uploading a profile picture
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param ext query string false "File extension" default(jpg)
// @Success 200 {object} map[string]string "upload_url and object_url"
// @Failure 500 {object} map[string]string
// @Router /profile/picture-upload [get]
func (h *ProfileHandler) PictureUploadURL(c *fiber.Ctx) error {
	if h.storage == nil {
		return apperr.New(fiber.StatusServiceUnavailable, "picture storage is not configured")
	}

	uploadURL, objectURL, err := h.storage.PresignedUploadURL(c.Context(), middleware.UserID(c), c.Query("ext", "jpg"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"upload_url": uploadURL, "object_url": objectURL})
}
