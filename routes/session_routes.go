package routes

import (
	"github.com/anjiri1684/mentorship/handlers"
	"github.com/anjiri1684/mentorship/middleware"
	"github.com/gofiber/fiber/v2"
)

func SessionRoutes(api fiber.Router, protected fiber.Handler, h *handlers.SessionHandler, reviews *handlers.ReviewHandler) {
	sessions := api.Group("/sessions", protected)
	sessions.Post("", middleware.RoleRequired("mentee"), h.Create)
	sessions.Get("/me", h.ListMine)
	sessions.Get("/:sessionId", h.Get)
	sessions.Put("/:sessionId/status", h.UpdateStatus)
	sessions.Delete("/:sessionId", middleware.RoleRequired("mentee"), h.Delete)
	sessions.Post("/:sessionId/review", middleware.RoleRequired("mentee"), reviews.Create)
}

func InterestRoutes(api fiber.Router, protected fiber.Handler, h *handlers.InterestHandler) {
	interests := api.Group("/interests", protected)
	interests.Post("", middleware.RoleRequired("mentee"), h.Create)
	interests.Get("/sent", middleware.RoleRequired("mentee"), h.ListSent)
	interests.Get("/received", middleware.MentorRequired(), h.ListReceived)
	interests.Put("/:interestId", middleware.MentorRequired(), h.Respond)
	interests.Delete("/:interestId", middleware.RoleRequired("mentee"), h.Delete)
}

func QuestionnaireRoutes(api fiber.Router, protected fiber.Handler, h *handlers.QuestionnaireHandler) {
	q := api.Group("/questionnaire", protected)
	q.Get("/questions", h.Questions)
	q.Post("", h.Submit)
	q.Get("/me", h.Mine)
}
