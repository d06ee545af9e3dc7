package router

import (
	handlers "github.com/ClearVault/MediaGuard/pkg/handlers/http"
	"github.com/ClearVault/MediaGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

type moderationRouter struct {
	middlewareTransport middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewModerationRouter(
	middlewareTransport middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &moderationRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *moderationRouter) BuildRoutes(router *fiber.App) error {
	router.Use(r.middlewareTransport.RecoverMiddleware.Middleware())
	router.Use(r.middlewareTransport.RequestMiddleware.Middleware())

	v1 := router.Group("/api/v1")
	{
		moderation := v1.Group("/moderation")
		{
			moderation.Post("/image", r.handlerTransport.ModerateImageHandler.Handle)
			moderation.Post("/video", r.handlerTransport.ModerateVideoHandler.Handle)

			// Policy diagnostics and audit access require an admin token.
			auth := r.middlewareTransport.AuthMiddleware.Middleware()
			moderation.Post("/rules/test", auth, r.handlerTransport.TestRulesHandler.Handle)
			moderation.Get("/verdicts", auth, r.handlerTransport.ListVerdictsHandler.Handle)
		}

		v1.Get("/version", r.handlerTransport.GetVersionHandler.Handle)
	}

	return nil
}
