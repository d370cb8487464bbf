package routes

import (
	"github.com/anjiri1684/mentorship/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(api fiber.Router, h *handlers.AuthHandler, limit fiber.Handler) {
	auth := api.Group("/auth")
	auth.Post("/register", limit, h.Register)
	auth.Post("/login", limit, h.Login)
	auth.Post("/firebase", limit, h.FirebaseLogin)
	auth.Get("/google/url", h.GoogleURL)
	auth.Post("/google", limit, h.GoogleLogin)
	auth.Post("/forgot-password", limit, h.ForgotPassword)
	auth.Post("/reset-password", limit, h.ResetPassword)
}
