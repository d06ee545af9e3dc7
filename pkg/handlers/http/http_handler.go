package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Moderation
	ModerateImageHandler Handler
	ModerateVideoHandler Handler

	// Policy diagnostics
	TestRulesHandler    Handler
	ListVerdictsHandler Handler

	// Misc
	GetVersionHandler Handler
}

const (
	ErrInvalidJsonPayload = "invalid json payload"
	ErrMissingMediaFile   = "missing media file"
)
