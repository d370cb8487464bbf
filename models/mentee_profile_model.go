package models

import (
	"time"

	"github.com/google/uuid"
)

type MenteeProfile struct {
	UserID       uuid.UUID  `gorm:"type:uuid;primary_key" json:"user_id"`
	School       *string    `gorm:"size:255" json:"school"`
	Grade        *string    `gorm:"size:50" json:"grade"`
	Interests    *string    `gorm:"type:text" json:"interests"`
	Goals        *string    `gorm:"type:text" json:"goals"`
	ParentUserID *uuid.UUID `gorm:"type:uuid" json:"parent_user_id"`

	User      User      `gorm:"foreignkey:UserID" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
