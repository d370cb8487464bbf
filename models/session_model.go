package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionScheduled = "scheduled"
	SessionConfirmed = "confirmed"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type Session struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MenteeID      uuid.UUID `gorm:"type:uuid;not null;index" json:"mentee_id"`
	MentorID      uuid.UUID `gorm:"type:uuid;not null;index" json:"mentor_id"`
	Topic         string    `gorm:"size:255;not null" json:"topic"`
	Notes         *string   `gorm:"type:text" json:"notes"`
	StartTime     time.Time `gorm:"not null;index" json:"start_time"`
	EndTime       time.Time `gorm:"not null" json:"end_time"`
	Status        string    `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	PaymentStatus string    `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	// Price is in minor currency units.
	Price       int64   `gorm:"not null" json:"price"`
	Currency    string  `gorm:"size:3;not null" json:"currency"`
	MeetingLink *string `gorm:"size:255" json:"meeting_link"`

	ReminderSentAt *time.Time `json:"-"`
	CompletedAt    *time.Time `json:"completed_at"`

	Mentee  User            `gorm:"foreignkey:MenteeID" json:"mentee,omitempty"`
	Mentor  User            `gorm:"foreignkey:MentorID" json:"mentor,omitempty"`
	Payment *SessionPayment `gorm:"foreignkey:SessionID" json:"payment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanTransition reports whether a session may move from one status to another.
func CanTransition(from, to string) bool {
	switch from {
	case SessionScheduled:
		return to == SessionConfirmed || to == SessionCancelled
	case SessionConfirmed:
		return to == SessionCompleted || to == SessionCancelled
	}
	return false
}

func (s *Session) IsParticipant(userID uuid.UUID) bool {
	return s.MenteeID == userID || s.MentorID == userID
}
