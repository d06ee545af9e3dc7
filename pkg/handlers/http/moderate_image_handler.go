package http

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appmoderation "github.com/ClearVault/MediaGuard/pkg/app/moderation"
	"github.com/ClearVault/MediaGuard/pkg/handlers/http/response"
	"github.com/ClearVault/MediaGuard/pkg/media"
)

const mediaFormField = "media"

type moderateImageHandler struct {
	logger  *logrus.Logger
	service *appmoderation.Service
}

func NewModerateImageHandler(logger *logrus.Logger, service *appmoderation.Service) Handler {
	return &moderateImageHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Moderate an image
// @Description Classifies an uploaded image and returns the moderation verdict
// @Tags Moderation
// @Accept multipart/form-data
// @Produce json
// @Param media formData file true "Image file"
// @Success 200 {object} response.VerdictOutput "Moderation verdict"
// @Failure 400 {object} map[string]interface{} "Invalid upload"
// @Router /api/v1/moderation/image [post]
func (h *moderateImageHandler) Handle(c *fiber.Ctx) error {
	data, err := readMediaUpload(c)
	if err != nil {
		h.logger.WithError(err).Debug("invalid image upload")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMissingMediaFile})
	}

	result, err := h.service.ModerateImage(c.UserContext(), data)
	if err != nil {
		if isInputError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("image moderation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "moderation failed"})
	}

	return c.Status(fiber.StatusOK).JSON(response.NewVerdictOutput(result))
}

// readMediaUpload accepts either a multipart "media" file or a raw body.
func readMediaUpload(c *fiber.Ctx) ([]byte, error) {
	if file, err := c.FormFile(mediaFormField); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return io.ReadAll(io.LimitReader(f, media.MaxImageBytes+1))
	}
	if len(c.Body()) > 0 {
		return c.Body(), nil
	}
	return nil, errors.New("no media supplied")
}

func isInputError(err error) bool {
	return errors.Is(err, media.ErrEmptyImage) ||
		errors.Is(err, media.ErrTooLarge) ||
		errors.Is(err, media.ErrUnsupportedImage)
}
