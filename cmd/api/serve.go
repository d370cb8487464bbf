package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/mentorship/configs"
	"github.com/anjiri1684/mentorship/database"
	"github.com/anjiri1684/mentorship/handlers"
	"github.com/anjiri1684/mentorship/identity"
	"github.com/anjiri1684/mentorship/jobs"
	"github.com/anjiri1684/mentorship/metrics"
	"github.com/anjiri1684/mentorship/notifications"
	"github.com/anjiri1684/mentorship/payments"
	"github.com/anjiri1684/mentorship/questionnaire"
	"github.com/anjiri1684/mentorship/repository"
	"github.com/anjiri1684/mentorship/routes"
	"github.com/anjiri1684/mentorship/services"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/anjiri1684/mentorship/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	presenceTTL     = 90 * time.Second
	presenceRefresh = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func runServe() error {
	s, err := config.Load()
	if err != nil {
		return err
	}
	if !s.RazorpayConfigured() {
		return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required to serve")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(s)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.SeedAdmin(db, s); err != nil {
		log.Printf("🔥 Failed to seed admin: %v", err)
	}
	store := repository.New(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	hub, err := newHub(ctx, s)
	if err != nil {
		return err
	}
	go hub.Run(ctx)

	dispatcher := notifications.NewDispatcher(notificationChannels(s, hub, rec))
	tokens := utils.NewTokenManager(s.JWTSecret, s.JWTTTL)
	gateway := payments.NewRazorpay(s.RazorpayKeyID, s.RazorpayKeySecret, s.RazorpayWebhookSecret)

	authCfg := services.AuthConfig{
		Users:       store,
		Profiles:    store,
		Tokens:      tokens,
		Notifier:    dispatcher,
		FrontendURL: s.FrontendURL,
	}
	if s.FirebaseProjectID != "" {
		fb, err := identity.NewFirebaseVerifier(ctx, s.FirebaseProjectID, s.FirebaseCredentialsFile)
		if err != nil {
			log.Printf("🔥 Firebase sign-in disabled: %v", err)
		} else {
			authCfg.Firebase = fb
		}
	}
	if s.GoogleConfigured() {
		authCfg.Google = identity.NewGoogleProvider(identity.GoogleConfig{
			ClientID:     s.GoogleClientID,
			ClientSecret: s.GoogleClientSecret,
			RedirectURL:  s.GoogleRedirectURL,
		})
	}

	var signer *services.CloudinaryStore
	var receipts services.ReceiptIssuer
	if s.CloudinaryURL != "" {
		if signer, err = services.NewCloudinaryStore(s.CloudinaryURL, services.ProfileFolder); err != nil {
			return fmt.Errorf("init cloudinary: %w", err)
		}
		receiptStore, err := services.NewCloudinaryStore(s.CloudinaryURL, services.ReceiptFolder)
		if err != nil {
			return fmt.Errorf("init cloudinary: %w", err)
		}
		receipts = services.NewReceiptService(s.AppName, services.ChromePDF, receiptStore)
	} else {
		log.Println("Warning: CLOUDINARY_URL not set, uploads and receipts are disabled")
	}

	payoutSvc := services.NewPayoutService(services.PayoutConfig{
		Payments:     store,
		Sessions:     store,
		Transfers:    store,
		Bank:         store,
		Gateway:      gateway,
		Metrics:      rec,
		SharePercent: s.MentorSharePercent,
	})
	paymentSvc := services.NewPaymentService(services.PaymentConfig{
		Payments: store,
		Sessions: store,
		Gateway:  gateway,
		Receipts: receipts,
		Notifier: dispatcher,
		Metrics:  rec,
	})
	sessionSvc := services.NewSessionService(store, store, store, payoutSvc, dispatcher)

	catalog, err := questionnaire.Default()
	if err != nil {
		return fmt.Errorf("load questionnaires: %w", err)
	}

	uploadHandler := handlers.NewUploadHandler(nil, services.ProfileFolder)
	if signer != nil {
		uploadHandler = handlers.NewUploadHandler(signer, services.ProfileFolder)
	}

	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(services.NewAuthService(authCfg)),
		Profile:       handlers.NewProfileHandler(services.NewProfileService(store, store, tokens, s.PaymentCurrency)),
		BankDetails:   handlers.NewBankDetailsHandler(services.NewBankDetailsService(store, store)),
		Session:       handlers.NewSessionHandler(sessionSvc),
		Review:        handlers.NewReviewHandler(services.NewReviewService(store, store)),
		Payment:       handlers.NewPaymentHandler(paymentSvc, payoutSvc),
		Interest:      handlers.NewInterestHandler(services.NewInterestService(store, store, dispatcher)),
		Messaging:     handlers.NewMessagingHandler(services.NewChatService(store, store, hub, dispatcher, s.FrontendURL), tokens, hub),
		Questionnaire: handlers.NewQuestionnaireHandler(services.NewQuestionnaireService(store, catalog)),
		Upload:        uploadHandler,
		Admin:         handlers.NewAdminHandler(services.NewAdminService(store, store)),
		Health:        handlers.NewHealthHandler(store),
	}

	scheduler, err := jobs.NewScheduler(
		jobs.Schedule{Spec: "*/5 * * * *", Job: jobs.SessionReminders(sessionSvc)},
		jobs.Schedule{Spec: "*/15 * * * *", Job: jobs.ExpireUnpaidSessions(sessionSvc)},
		jobs.Schedule{Spec: "*/30 * * * *", Job: jobs.ReconcilePayouts(payoutSvc)},
	)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	app := newApp(s)
	routes.Setup(app, h, routes.Options{
		JWTSecret:   s.JWTSecret,
		Gatherer:    reg,
		AuthMaxHits: 10,
		AuthWindow:  time.Minute,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Printf("✅ Server is running on port %s", s.Port)
		errCh <- app.Listen(":" + s.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Printf("🔥 Error during shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}

func newApp(s *config.Settings) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       s.AppName,
		CaseSensitive: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  s.AllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Razorpay-Signature, X-Razorpay-Event-Id",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	return app
}

// newHub shares presence through Redis when REDIS_URL is set so that
// several API instances agree on who is online.
func newHub(ctx context.Context, s *config.Settings) (*websocket.Hub, error) {
	if s.RedisURL == "" {
		return websocket.NewHub(), nil
	}
	rdb, err := websocket.NewRedisClient(ctx, s.RedisURL)
	if err != nil {
		return nil, err
	}
	host, _ := os.Hostname()
	instance := fmt.Sprintf("%s-%d", host, os.Getpid())
	log.Printf("✅ Shared presence enabled as instance %s", instance)
	return websocket.NewHub(websocket.WithSharedPresence(
		websocket.NewRedisPresence(rdb, instance, presenceTTL),
		presenceRefresh,
	)), nil
}

// notificationChannels leaves a channel nil when it has no credentials.
func notificationChannels(s *config.Settings, presence notifications.Presence, rec metrics.Recorder) notifications.DispatcherConfig {
	cfg := notifications.DispatcherConfig{
		Presence: presence,
		Metrics:  rec,
		Every:    s.NotifyEvery,
		Burst:    s.NotifyBurst,
	}
	if s.SMTPConfigured() {
		cfg.Email = notifications.NewSMTPMailer(s.SMTPHost, s.SMTPPort, s.SMTPUsername, s.SMTPPassword, s.EmailSender, s.EmailName)
	} else {
		log.Println("Warning: SMTP not configured, email notifications are disabled")
	}
	if s.WatiConfigured() {
		cfg.WhatsApp = notifications.NewWatiClient(s.WatiEndpoint, s.WatiToken, s.WatiTemplate)
	} else {
		log.Println("Warning: WATI not configured, WhatsApp notifications are disabled")
	}
	return cfg
}
