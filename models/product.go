package models

import (
	"time"

	"gorm.io/gorm"
)

// Product prices are stored in cents.
type Product struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Description     string         `json:"description"`
	Price           int64          `gorm:"not null" json:"price"`
	PictureURL      string         `json:"pictureUrl"`
	Type            string         `gorm:"index;size:128" json:"type"`
	Brand           string         `gorm:"index;size:128" json:"brand"`
	QuantityInStock int            `gorm:"not null" json:"quantityInStock"`
	PublicID        string         `json:"publicId,omitempty"`
	CreatedAt       time.Time      `json:"-"`
	UpdatedAt       time.Time      `json:"-"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProductFilters lists the distinct brands and types in the catalog.
type ProductFilters struct {
	Brands []string `json:"brands"`
	Types  []string `json:"types"`
}
