package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TransferPending    = "pending"
	TransferProcessing = "processing"
	TransferProcessed  = "processed"
	TransferFailed     = "failed"
)

type Transfer struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PaymentID         uuid.UUID  `gorm:"type:uuid;not null;unique" json:"payment_id"`
	MentorID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"mentor_id"`
	Amount            int64      `gorm:"not null" json:"amount"`
	Currency          string     `gorm:"size:3;not null" json:"currency"`
	LinkedAccountID   string     `gorm:"size:64;not null" json:"linked_account_id"`
	GatewayTransferID *string    `gorm:"size:255" json:"gateway_transfer_id"`
	IdempotencyKey    string     `gorm:"size:128;not null;unique" json:"idempotency_key"`
	Status            string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	FailureReason     *string    `gorm:"type:text" json:"failure_reason"`
	Attempts          int        `gorm:"not null;default:0" json:"attempts"`
	ProcessedAt       *time.Time `json:"processed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PayoutKey is the idempotency key used for the payout leg of a payment.
func PayoutKey(paymentID uuid.UUID) string {
	return fmt.Sprintf("payout_%s", paymentID)
}
