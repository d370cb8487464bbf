package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Answers maps question ids to the submitted answer and is stored as jsonb.
type Answers map[string]string

func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Answers) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Answers{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("answers: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, a)
}

type QuestionnaireResponse struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;unique" json:"user_id"`
	Role        string    `gorm:"size:20;not null" json:"role"`
	Answers     Answers   `gorm:"type:jsonb;not null" json:"answers"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`

	User User `gorm:"foreignkey:UserID" json:"user,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
