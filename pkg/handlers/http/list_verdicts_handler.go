package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/ClearVault/MediaGuard/pkg/domain/verdict"
)

const defaultVerdictListLimit = 50

type listVerdictsHandler struct {
	logger *logrus.Logger
	repo   verdict.Repository
}

func NewListVerdictsHandler(logger *logrus.Logger, repo verdict.Repository) Handler {
	return &listVerdictsHandler{
		logger: logger,
		repo:   repo,
	}
}

// Handle @Summary List recent moderation verdicts
// @Description Returns the most recent audit records for compliance review
// @Tags Moderation
// @Produce json
// @Param limit query int false "Maximum records to return"
// @Success 200 {array} verdict.Record "Audit records"
// @Router /api/v1/moderation/verdicts [get]
func (h *listVerdictsHandler) Handle(c *fiber.Ctx) error {
	limit := defaultVerdictListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
		limit = parsed
	}

	records, err := h.repo.ListRecent(c.UserContext(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list verdict records")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list verdicts"})
	}

	return c.Status(fiber.StatusOK).JSON(records)
}
