package models

// Address is the saved address of a user. Field names follow the payment
// provider's naming so the client can hand it over unchanged.
type Address struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	Name       string  `json:"name" binding:"required"`
	Line1      string  `json:"line1" binding:"required"`
	Line2      *string `json:"line2"`
	City       string  `json:"city" binding:"required"`
	State      string  `json:"state" binding:"required"`
	PostalCode string  `json:"postal_code" binding:"required"`
	Country    string  `json:"country" binding:"required"`
}
