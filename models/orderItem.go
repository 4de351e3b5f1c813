package models

// ProductItemOrdered is a snapshot of the product taken when the order is
// placed, so later catalog edits do not rewrite order history.
type ProductItemOrdered struct {
	ProductID  uint
	Name       string
	PictureURL string
}

type OrderItem struct {
	ID          uint               `gorm:"primaryKey"`
	OrderID     uint               `gorm:"index;not null"`
	ItemOrdered ProductItemOrdered `gorm:"embedded;embeddedPrefix:item_ordered_"`
	Price       int64              `gorm:"not null"`
	Quantity    int                `gorm:"not null"`
}
