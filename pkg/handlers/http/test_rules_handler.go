package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appmoderation "github.com/ClearVault/MediaGuard/pkg/app/moderation"
	"github.com/ClearVault/MediaGuard/pkg/handlers/http/request"
	"github.com/ClearVault/MediaGuard/pkg/moderation"
)

type testRulesHandler struct {
	logger  *logrus.Logger
	service *appmoderation.Service
}

func NewTestRulesHandler(logger *logrus.Logger, service *appmoderation.Service) Handler {
	return &testRulesHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Test moderation rules
// @Description Runs the rule engine on caller-supplied category scores, bypassing the classifier
// @Tags Moderation
// @Accept json
// @Produce json
// @Param categories body request.TestRulesRequest true "Category scores to evaluate"
// @Success 200 {object} moderation.TestRulesResult "Rule evaluation result"
// @Failure 400 {object} map[string]interface{} "Invalid request data"
// @Router /api/v1/moderation/rules/test [post]
func (h *testRulesHandler) Handle(c *fiber.Ctx) error {
	var req request.TestRulesRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to bind test rules request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if len(req.Categories) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "categories must not be empty"})
	}

	categories := make([]moderation.CategoryScore, 0, len(req.Categories))
	for _, cs := range req.Categories {
		categories = append(categories, moderation.CategoryScore{
			Category: moderation.Category(cs.Category),
			Severity: cs.Severity,
		})
	}

	return c.Status(fiber.StatusOK).JSON(h.service.TestRules(categories))
}
