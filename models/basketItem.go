package models

type BasketItem struct {
	ID        uint `gorm:"primaryKey"`
	Quantity  int  `gorm:"not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	BasketID  uint `gorm:"index;not null"`
}
