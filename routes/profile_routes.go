package routes

import (
	"github.com/anjiri1684/mentorship/handlers"
	"github.com/anjiri1684/mentorship/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(api fiber.Router, protected fiber.Handler, h *handlers.ProfileHandler, bank *handlers.BankDetailsHandler, reviews *handlers.ReviewHandler) {
	users := api.Group("/users", protected)
	users.Get("/me", h.GetMe)
	users.Put("/me", h.UpdateMe)
	users.Put("/me/role", h.UpdateRole)

	mentors := api.Group("/mentors")
	mentors.Get("", h.ListMentors)
	mentors.Get("/:mentorId", h.GetMentor)
	mentors.Get("/:mentorId/reviews", reviews.ListForMentor)

	// Guards are per route: a group-level Use on "/mentor" would also
	// prefix-match the public "/mentors" paths.
	onlyMentor := middleware.MentorRequired()
	mentor := api.Group("/mentor")
	mentor.Get("/profile", protected, onlyMentor, h.GetMentorProfile)
	mentor.Put("/profile", protected, onlyMentor, h.UpdateMentorProfile)
	mentor.Get("/bank-details", protected, onlyMentor, bank.Get)
	mentor.Post("/bank-details", protected, onlyMentor, bank.Create)
	mentor.Put("/bank-details", protected, onlyMentor, bank.Update)
	mentor.Delete("/bank-details", protected, onlyMentor, bank.Delete)

	onlyMentee := middleware.MenteeRequired()
	mentee := api.Group("/mentee")
	mentee.Get("/profile", protected, onlyMentee, h.GetMenteeProfile)
	mentee.Put("/profile", protected, onlyMentee, h.UpdateMenteeProfile)
}
