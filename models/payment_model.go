package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

const (
	PaidViaCallback = "callback"
	PaidViaWebhook  = "webhook"
)

type SessionPayment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;unique" json:"session_id"`
	MenteeID  uuid.UUID `gorm:"type:uuid;not null" json:"mentee_id"`
	// Amount is in minor currency units (paise for INR).
	Amount           int64      `gorm:"not null" json:"amount"`
	Currency         string     `gorm:"size:3;not null" json:"currency"`
	GatewayOrderID   string     `gorm:"size:255;not null;unique" json:"gateway_order_id"`
	GatewayPaymentID *string    `gorm:"size:255;unique" json:"gateway_payment_id"`
	GatewaySignature *string    `gorm:"size:255" json:"-"`
	Status           string     `gorm:"size:20;not null;default:'created'" json:"status"`
	PaidVia          *string    `gorm:"size:20" json:"paid_via"`
	ReceiptURL       *string    `gorm:"type:text" json:"receipt_url"`
	FailureReason    *string    `gorm:"type:text" json:"failure_reason"`
	PaidAt           *time.Time `json:"paid_at"`
	// NeedsRefund is set when money arrives for a session that was already
	// cancelled. Such payments are never paid out.
	NeedsRefund bool `gorm:"not null;default:false;index" json:"needs_refund"`

	Session Session `gorm:"foreignkey:SessionID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
