package models

import (
	"time"

	"github.com/google/uuid"
)

type BankDetails struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MentorID          uuid.UUID `gorm:"type:uuid;not null;unique" json:"mentor_id"`
	AccountHolderName string    `gorm:"size:255;not null" json:"account_holder_name"`
	AccountNumber     string    `gorm:"size:34;not null" json:"-"`
	IFSC              string    `gorm:"column:ifsc;size:11;not null" json:"ifsc"`
	BankName          *string   `gorm:"size:255" json:"bank_name"`
	UPIID             *string   `gorm:"column:upi_id;size:255" json:"upi_id"`
	// LinkedAccountID is the gateway route account (acc_...) that receives payouts.
	LinkedAccountID *string `gorm:"size:64" json:"linked_account_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaskedAccountNumber keeps only the last four digits.
func (b *BankDetails) MaskedAccountNumber() string {
	n := len(b.AccountNumber)
	if n <= 4 {
		return b.AccountNumber
	}
	masked := make([]byte, n)
	for i := 0; i < n-4; i++ {
		masked[i] = 'X'
	}
	copy(masked[n-4:], b.AccountNumber[n-4:])
	return string(masked)
}
