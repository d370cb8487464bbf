package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	config "github.com/anjiri1684/mentorship/configs"
	"github.com/anjiri1684/mentorship/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB opens the Postgres pool. Statement caching is off so the DSN works
// behind transaction poolers such as Supabase's pgbouncer.
func ConnectDB(s *config.Settings) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  s.DatabaseURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	log.Println("✅ Database connected successfully")
	return db, nil
}

// constraints back the check-then-insert paths in the services. AutoMigrate
// cannot express partial or exclusion constraints.
var constraints = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_interests_pending_pair
		ON mentorship_interests (mentee_id, mentor_id) WHERE status = 'pending'`,
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'sessions_mentor_no_overlap') THEN
			ALTER TABLE sessions ADD CONSTRAINT sessions_mentor_no_overlap
				EXCLUDE USING gist (mentor_id WITH =, tstzrange(start_time, end_time) WITH &&)
				WHERE (status IN ('scheduled', 'confirmed'));
		END IF;
	END $$`,
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.MentorProfile{},
		&models.MenteeProfile{},
		&models.BankDetails{},
		&models.Session{},
		&models.SessionPayment{},
		&models.Transfer{},
		&models.WebhookEvent{},
		&models.MentorshipInterest{},
		&models.Review{},
		&models.Conversation{},
		&models.Message{},
		&models.QuestionnaireResponse{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate constraints: %w", err)
		}
	}
	log.Println("✅ Database migration successful")
	return nil
}

// SeedAdmin creates the admin account from ADMIN_EMAIL / ADMIN_PASSWORD when it
// does not exist yet.
func SeedAdmin(db *gorm.DB, s *config.Settings) error {
	email := adminEmail(s)
	if email == "" || s.AdminPassword == "" {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set to seed the admin user")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("check for admin user: %w", err)
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	hashed := string(hashedPassword)

	adminUser := models.User{
		FullName:     s.AdminFullName,
		Email:        email,
		Password:     &hashed,
		Role:         models.RoleAdmin,
		AuthProvider: models.ProviderPassword,
		IsActive:     true,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	log.Println("✅ Admin user seeded successfully")
	return nil
}

func adminEmail(s *config.Settings) string {
	return strings.ToLower(strings.TrimSpace(s.AdminEmail))
}
