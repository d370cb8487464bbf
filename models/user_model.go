package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleMentee = "mentee"
	RoleMentor = "mentor"
	RoleParent = "parent"
	RoleAdmin  = "admin"
)

const (
	ProviderPassword = "password"
	ProviderFirebase = "firebase"
	ProviderGoogle   = "google"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Email        string    `gorm:"size:255;not null;unique" json:"email"`
	Password     *string   `json:"-"`
	Role         string    `gorm:"size:20;not null;default:'mentee'" json:"role"`
	AuthProvider string    `gorm:"size:20;not null;default:'password'" json:"auth_provider"`
	FirebaseUID  *string   `gorm:"size:128;unique" json:"-"`
	GoogleSub    *string   `gorm:"size:128;unique" json:"-"`

	Phone             *string `gorm:"size:32" json:"phone"`
	ProfilePictureURL *string `gorm:"size:255" json:"profile_picture_url"`
	TimeZone          *string `gorm:"size:100" json:"time_zone"`

	ResetPasswordToken          *string    `gorm:"size:255;unique" json:"-"`
	ResetPasswordTokenExpiresAt *time.Time `json:"-"`
	IsActive                    bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleMentee, RoleMentor, RoleParent, RoleAdmin:
		return true
	}
	return false
}
