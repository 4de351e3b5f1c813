package models

import "time"

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "Pending"
	OrderStatusPaymentReceived OrderStatus = "PaymentReceived"
	OrderStatusPaymentFailed   OrderStatus = "PaymentFailed"
	OrderStatusPaymentMismatch OrderStatus = "PaymentMismatch"
)

type ShippingAddress struct {
	Name       string  `json:"name" binding:"required"`
	Line1      string  `json:"line1" binding:"required"`
	Line2      *string `json:"line2"`
	City       string  `json:"city" binding:"required"`
	State      string  `json:"state" binding:"required"`
	PostalCode string  `json:"postal_code" binding:"required"`
	Country    string  `json:"country" binding:"required"`
}

// PaymentSummary is the card snapshot the client receives from the
// payment provider after confirming the payment.
type PaymentSummary struct {
	Last4    int    `json:"last4"`
	Brand    string `json:"brand"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// Order amounts are stored in cents.
type Order struct {
	ID              uint            `gorm:"primaryKey"`
	BuyerEmail      string          `gorm:"index;size:256;not null"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_address_"`
	OrderDate       time.Time       `gorm:"index"`
	OrderItems      []OrderItem     `gorm:"constraint:OnDelete:CASCADE"`
	Subtotal        int64
	DeliveryFee     int64
	Discount        int64
	PaymentIntentID *string        `gorm:"index;size:255"`
	OrderStatus     OrderStatus    `gorm:"size:32;not null"`
	PaymentSummary  PaymentSummary `gorm:"embedded;embeddedPrefix:payment_summary_"`
}

func (o *Order) Total() int64 {
	return o.Subtotal + o.DeliveryFee - o.Discount
}

// AddressFromShipping copies a shipping address into a saved user address.
func AddressFromShipping(s ShippingAddress) Address {
	return Address{
		Name:       s.Name,
		Line1:      s.Line1,
		Line2:      s.Line2,
		City:       s.City,
		State:      s.State,
		PostalCode: s.PostalCode,
		Country:    s.Country,
	}
}
