package models

import "time"

type WebhookEvent struct {
	EventID    string    `gorm:"size:255;primary_key"`
	EventType  string    `gorm:"size:64;not null"`
	ReceivedAt time.Time `gorm:"not null"`
}
