package routes

import (
	"github.com/anjiri1684/mentorship/handlers"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(api fiber.Router, protected fiber.Handler, h *handlers.UploadHandler) {
	uploads := api.Group("/uploads", protected)
	uploads.Get("/signature", h.Signature)
}
