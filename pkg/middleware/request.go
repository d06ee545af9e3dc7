package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/ClearVault/MediaGuard/pkg/common"
	"github.com/ClearVault/MediaGuard/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// requestMiddleware tags every request with an ID, counts it and logs the
// outcome with its latency.
type requestMiddleware struct {
	logger *logrus.Logger
}

func NewRequestMiddleware(logger *logrus.Logger) Middleware {
	return &requestMiddleware{logger: logger}
}

func (m *requestMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(common.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals(common.RequestIDKey, requestID)
		c.Set(common.RequestIDHeader, requestID)

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		prometheus.RequestsTotal.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()

		m.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("request completed")

		return err
	}
}
