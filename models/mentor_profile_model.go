package models

import (
	"time"

	"github.com/google/uuid"
)

type MentorProfile struct {
	UserID            uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	Headline          *string   `gorm:"size:255" json:"headline"`
	Bio               *string   `gorm:"type:text" json:"bio"`
	Expertise         *string   `gorm:"size:500" json:"expertise"`
	YearsOfExperience int       `gorm:"default:0" json:"years_of_experience"`
	// HourlyRate is in minor currency units.
	HourlyRate  int64   `gorm:"not null;default:0" json:"hourly_rate"`
	Currency    string  `gorm:"size:3;not null;default:'INR'" json:"currency"`
	AvgRating   float32 `gorm:"default:0" json:"avg_rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`
	IsAccepting bool    `gorm:"default:true" json:"is_accepting"`

	User      User      `gorm:"foreignkey:UserID" json:"user"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
