package models

import (
	"gorm.io/gorm"
	"time"
)

type LoginToken struct {
	gorm.Model
	Token          string `gorm:"uniqueIndex;size:1024"`
	ExpirationTime time.Time
	UserID         uint
	Role           string
}
