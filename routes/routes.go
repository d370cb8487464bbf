package routes

import (
	"time"

	"github.com/anjiri1684/mentorship/handlers"
	"github.com/anjiri1684/mentorship/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Profile       *handlers.ProfileHandler
	BankDetails   *handlers.BankDetailsHandler
	Session       *handlers.SessionHandler
	Review        *handlers.ReviewHandler
	Payment       *handlers.PaymentHandler
	Interest      *handlers.InterestHandler
	Messaging     *handlers.MessagingHandler
	Questionnaire *handlers.QuestionnaireHandler
	Upload        *handlers.UploadHandler
	Admin         *handlers.AdminHandler
	Health        *handlers.HealthHandler
}

type Options struct {
	JWTSecret   string
	Gatherer    prometheus.Gatherer
	AuthMaxHits int
	AuthWindow  time.Duration
}

// Setup mounts every route under /api/v1 plus the ops endpoints at the root.
func Setup(app *fiber.App, h Handlers, opts Options) {
	PublicRoutes(app, h.Health, opts.Gatherer)

	api := app.Group("/api/v1")
	protected := middleware.Protected(opts.JWTSecret)

	AuthRoutes(api, h.Auth, middleware.AuthRateLimit(opts.AuthMaxHits, opts.AuthWindow))
	ProfileRoutes(api, protected, h.Profile, h.BankDetails, h.Review)
	SessionRoutes(api, protected, h.Session, h.Review)
	PaymentRoutes(api, protected, h.Payment)
	InterestRoutes(api, protected, h.Interest)
	MessagingRoutes(api, protected, h.Messaging)
	QuestionnaireRoutes(api, protected, h.Questionnaire)
	UploadRoutes(api, protected, h.Upload)
	AdminRoutes(api, protected, AdminHandlers{
		Admin:         h.Admin,
		Session:       h.Session,
		Payment:       h.Payment,
		BankDetails:   h.BankDetails,
		Review:        h.Review,
		Questionnaire: h.Questionnaire,
	})
}
