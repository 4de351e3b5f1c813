package models

import (
	"errors"
	"time"
)

var ErrInvalidQuantity = errors.New("quantity should be greater than zero")

// Basket is identified on the client by BasketID, which travels in a cookie.
type Basket struct {
	ID              uint         `gorm:"primaryKey"`
	BasketID        string       `gorm:"uniqueIndex;size:64;not null"`
	Items           []BasketItem `gorm:"foreignKey:BasketID;constraint:OnDelete:CASCADE"`
	ClientSecret    *string
	PaymentIntentID *string `gorm:"index;size:255"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AddItem adds quantity of product to the basket and returns the line that
// changed. An existing line for the same product is incremented.
func (b *Basket) AddItem(product Product, quantity int) (*BasketItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if item := b.findItem(product.ID); item != nil {
		item.Quantity += quantity
		return item, nil
	}

	b.Items = append(b.Items, BasketItem{
		BasketID:  b.ID,
		ProductID: product.ID,
		Product:   product,
		Quantity:  quantity,
	})
	return &b.Items[len(b.Items)-1], nil
}

// RemoveItem lowers the quantity of a line. The line is dropped once its
// quantity reaches zero, in which case removed is true. Removing a product
// that is not in the basket is a no-op and returns a nil item.
func (b *Basket) RemoveItem(productID uint, quantity int) (item *BasketItem, removed bool, err error) {
	if quantity <= 0 {
		return nil, false, ErrInvalidQuantity
	}

	for i := range b.Items {
		if b.Items[i].ProductID != productID {
			continue
		}
		b.Items[i].Quantity -= quantity
		if b.Items[i].Quantity > 0 {
			return &b.Items[i], false, nil
		}
		dropped := b.Items[i]
		b.Items = append(b.Items[:i], b.Items[i+1:]...)
		return &dropped, true, nil
	}
	return nil, false, nil
}

// Subtotal is the sum of price times quantity over all lines, in cents.
func (b *Basket) Subtotal() int64 {
	var subtotal int64
	for _, item := range b.Items {
		subtotal += item.Product.Price * int64(item.Quantity)
	}
	return subtotal
}

func (b *Basket) findItem(productID uint) *BasketItem {
	for i := range b.Items {
		if b.Items[i].ProductID == productID {
			return &b.Items[i]
		}
	}
	return nil
}
