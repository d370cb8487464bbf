package routes

import (
	"github.com/anjiri1684/mentorship/handlers"
	"github.com/anjiri1684/mentorship/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(api fiber.Router, protected fiber.Handler, h *handlers.PaymentHandler) {
	payments := api.Group("/payments")
	// The gateway calls the webhook without a JWT; it is authenticated by
	// its HMAC signature instead.
	payments.Post("/webhook", h.Webhook)

	payments.Post("/orders", protected, middleware.RoleRequired("mentee"), h.CreateOrder)
	payments.Post("/verify", protected, middleware.RoleRequired("mentee"), h.Verify)
	payments.Get("/sessions/:sessionId", protected, h.GetForSession)
}
