package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

func loadEnv() {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})
}

type Settings struct {
	Port           string
	AppName        string
	DatabaseURL    string
	AllowedOrigins string
	FrontendURL    string

	JWTSecret string
	JWTTTL    time.Duration

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	PaymentCurrency       string
	MentorSharePercent    int64

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailSender  string
	EmailName    string

	WatiEndpoint string
	WatiToken    string
	WatiTemplate string

	FirebaseProjectID       string
	FirebaseCredentialsFile string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	CloudinaryURL string
	RedisURL      string

	NotifyEvery time.Duration
	NotifyBurst int

	AdminEmail    string
	AdminPassword string
	AdminFullName string
}

// Load reads the typed settings. DATABASE_URL and JWT_SECRET are mandatory.
func Load() (*Settings, error) {
	loadEnv()

	s := &Settings{
		Port:           getEnv("PORT", "8080"),
		AppName:        getEnv("APP_NAME", "Mentorship"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getEnvDuration("JWT_TTL", 72*time.Hour),

		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		PaymentCurrency:       strings.ToUpper(getEnv("PAYMENT_CURRENCY", "INR")),
		MentorSharePercent:    int64(getEnvInt("MENTOR_SHARE_PERCENT", 70)),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		EmailSender:  os.Getenv("EMAIL_SENDER"),
		EmailName:    getEnv("EMAIL_SENDER_NAME", "Mentorship"),

		WatiEndpoint: strings.TrimRight(os.Getenv("WATI_API_ENDPOINT"), "/"),
		WatiToken:    os.Getenv("WATI_ACCESS_TOKEN"),
		WatiTemplate: getEnv("WATI_TEMPLATE_NAME", "mentorship_notification"),

		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),

		NotifyEvery: getEnvDuration("NOTIFY_EVERY", 10*time.Minute),
		NotifyBurst: getEnvInt("NOTIFY_BURST", 1),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminFullName: getEnv("ADMIN_FULL_NAME", "Platform Admin"),
	}

	if s.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if s.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if s.MentorSharePercent <= 0 || s.MentorSharePercent > 100 {
		return nil, fmt.Errorf("MENTOR_SHARE_PERCENT must be between 1 and 100, got %d", s.MentorSharePercent)
	}

	return s, nil
}

func (s *Settings) RazorpayConfigured() bool {
	return s.RazorpayKeyID != "" && s.RazorpayKeySecret != ""
}

func (s *Settings) SMTPConfigured() bool {
	return s.SMTPHost != "" && s.EmailSender != ""
}

func (s *Settings) WatiConfigured() bool {
	return s.WatiEndpoint != "" && s.WatiToken != ""
}

func (s *Settings) GoogleConfigured() bool {
	return s.GoogleClientID != "" && s.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: %s=%q is not a duration, using %s", key, value, fallback)
		return fallback
	}
	return d
}
