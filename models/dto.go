package models

import "time"

type BasketItemDto struct {
	ProductID  uint   `json:"productId"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	PictureURL string `json:"pictureUrl"`
	Brand      string `json:"brand"`
	Type       string `json:"type"`
	Quantity   int    `json:"quantity"`
}

type BasketDto struct {
	BasketID        string          `json:"basketId"`
	Items           []BasketItemDto `json:"items"`
	ClientSecret    *string         `json:"clientSecret,omitempty"`
	PaymentIntentID *string         `json:"paymentIntentId,omitempty"`
}

func (b *Basket) ToDto() BasketDto {
	items := make([]BasketItemDto, 0, len(b.Items))
	for _, item := range b.Items {
		items = append(items, BasketItemDto{
			ProductID:  item.ProductID,
			Name:       item.Product.Name,
			Price:      item.Product.Price,
			PictureURL: item.Product.PictureURL,
			Brand:      item.Product.Brand,
			Type:       item.Product.Type,
			Quantity:   item.Quantity,
		})
	}
	return BasketDto{
		BasketID:        b.BasketID,
		Items:           items,
		ClientSecret:    b.ClientSecret,
		PaymentIntentID: b.PaymentIntentID,
	}
}

type OrderItemDto struct {
	ProductID  uint   `json:"productId"`
	Name       string `json:"name"`
	PictureURL string `json:"pictureUrl"`
	Price      int64  `json:"price"`
	Quantity   int    `json:"quantity"`
}

type OrderDto struct {
	ID              uint            `json:"id"`
	BuyerEmail      string          `json:"buyerEmail"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	OrderDate       time.Time       `json:"orderDate"`
	OrderItems      []OrderItemDto  `json:"orderItems"`
	Subtotal        int64           `json:"subtotal"`
	DeliveryFee     int64           `json:"deliveryFee"`
	Discount        int64           `json:"discount"`
	Total           int64           `json:"total"`
	OrderStatus     string          `json:"orderStatus"`
	PaymentSummary  PaymentSummary  `json:"paymentSummary"`
}

func (o *Order) ToDto() OrderDto {
	items := make([]OrderItemDto, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		items = append(items, OrderItemDto{
			ProductID:  item.ItemOrdered.ProductID,
			Name:       item.ItemOrdered.Name,
			PictureURL: item.ItemOrdered.PictureURL,
			Price:      item.Price,
			Quantity:   item.Quantity,
		})
	}
	return OrderDto{
		ID:              o.ID,
		BuyerEmail:      o.BuyerEmail,
		ShippingAddress: o.ShippingAddress,
		OrderDate:       o.OrderDate,
		OrderItems:      items,
		Subtotal:        o.Subtotal,
		DeliveryFee:     o.DeliveryFee,
		Discount:        o.Discount,
		Total:           o.Total(),
		OrderStatus:     string(o.OrderStatus),
		PaymentSummary:  o.PaymentSummary,
	}
}
