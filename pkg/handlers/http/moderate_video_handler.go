package http

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appmoderation "github.com/ClearVault/MediaGuard/pkg/app/moderation"
	"github.com/ClearVault/MediaGuard/pkg/handlers/http/response"
	"github.com/ClearVault/MediaGuard/pkg/media"
	"github.com/ClearVault/MediaGuard/pkg/moderation"
)

const framesFormField = "frames"

type moderateVideoHandler struct {
	logger  *logrus.Logger
	service *appmoderation.Service
}

func NewModerateVideoHandler(logger *logrus.Logger, service *appmoderation.Service) Handler {
	return &moderateVideoHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Moderate a video
// @Description Classifies a set of extracted video frames and returns one verdict
// @Tags Moderation
// @Accept multipart/form-data
// @Produce json
// @Param frames formData file true "Extracted frame images, in playback order"
// @Success 200 {object} response.VerdictOutput "Moderation verdict"
// @Failure 400 {object} map[string]interface{} "Invalid upload"
// @Router /api/v1/moderation/video [post]
func (h *moderateVideoHandler) Handle(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMissingMediaFile})
	}

	files := form.File[framesFormField]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no frames supplied"})
	}

	// Order matters: frames are classified in the order submitted, and
	// evaluation stops at the first rejected frame.
	frames := make([][]byte, 0, len(files))
	for _, file := range files {
		f, err := file.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMissingMediaFile})
		}
		data, err := io.ReadAll(io.LimitReader(f, media.MaxImageBytes+1))
		_ = f.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMissingMediaFile})
		}
		frames = append(frames, data)
	}

	result, err := h.service.ModerateVideo(c.UserContext(), frames)
	if err != nil {
		if isInputError(err) || errors.Is(err, moderation.ErrNoFrames) || errors.Is(err, moderation.ErrEmptyMedia) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("video moderation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "moderation failed"})
	}

	return c.Status(fiber.StatusOK).JSON(response.NewVerdictOutput(result))
}
