package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentEvent records every payment provider event that was processed.
// The unique EventID makes redelivered webhooks a no-op.
type PaymentEvent struct {
	ID              uint   `gorm:"primaryKey"`
	EventID         string `gorm:"uniqueIndex;size:255;not null"`
	Type            string `gorm:"size:128"`
	PaymentIntentID string `gorm:"index;size:255"`
	Payload         datatypes.JSON
	CreatedAt       time.Time
}
