package routes

import (
	"github.com/anjiri1684/mentorship/handlers"
	"github.com/anjiri1684/mentorship/middleware"
	"github.com/gofiber/fiber/v2"
)

type AdminHandlers struct {
	Admin         *handlers.AdminHandler
	Session       *handlers.SessionHandler
	Payment       *handlers.PaymentHandler
	BankDetails   *handlers.BankDetailsHandler
	Review        *handlers.ReviewHandler
	Questionnaire *handlers.QuestionnaireHandler
}

func AdminRoutes(api fiber.Router, protected fiber.Handler, h AdminHandlers) {
	admin := api.Group("/admin", protected, middleware.AdminRequired())

	admin.Get("/stats", h.Admin.Stats)

	users := admin.Group("/users")
	users.Get("", h.Admin.ListUsers)
	users.Put("/:userId/status", h.Admin.SetUserStatus)

	admin.Get("/sessions", h.Session.ListAll)
	admin.Get("/payments", h.Payment.List)
	admin.Post("/payments/:paymentId/transfer", h.Payment.RetryTransfer)
	admin.Put("/mentors/:mentorId/linked-account", h.BankDetails.SetLinkedAccount)
	admin.Delete("/reviews/:reviewId", h.Review.Delete)
	admin.Get("/questionnaires", h.Questionnaire.ListAll)

	reports := admin.Group("/reports")
	reports.Get("/transactions", h.Admin.TransactionReport)
}
