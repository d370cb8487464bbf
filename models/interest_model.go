package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InterestPending  = "pending"
	InterestAccepted = "accepted"
	InterestDeclined = "declined"
)

type MentorshipInterest struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MenteeID uuid.UUID `gorm:"type:uuid;not null;index" json:"mentee_id"`
	MentorID uuid.UUID `gorm:"type:uuid;not null;index" json:"mentor_id"`
	Message  string    `gorm:"type:text" json:"message"`
	Status   string    `gorm:"size:20;not null;default:'pending'" json:"status"`

	Mentee User `gorm:"foreignkey:MenteeID" json:"mentee,omitempty"`
	Mentor User `gorm:"foreignkey:MentorID" json:"mentor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
