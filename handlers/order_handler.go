package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"Restore/middleware"
	"Restore/models"
	"Restore/problem"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errOutOfStock = errors.New("one or more items in your basket are no longer available in the desired quantity")

type createOrderRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentSummary  models.PaymentSummary  `json:"paymentSummary" binding:"required"`
	SaveAddress     bool                   `json:"saveAddress"`
}

// createOrderItems snapshots the basket lines.
func createOrderItems(items []models.BasketItem) []models.OrderItem {
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			ItemOrdered: models.ProductItemOrdered{
				ProductID:  item.ProductID,
				Name:       item.Product.Name,
				PictureURL: item.Product.PictureURL,
			},
			Price:    item.Product.Price,
			Quantity: item.Quantity,
		})
	}
	return orderItems
}

// reserveStock decrements stock for every line in one conditional UPDATE per
// product, so concurrent checkouts can never drive it below zero.
func reserveStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		result := tx.Model(&models.Product{}).
			Where("id = ? AND quantity_in_stock >= ?", item.ItemOrdered.ProductID, item.Quantity).
			Update("quantity_in_stock", gorm.Expr("quantity_in_stock - ?", item.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errOutOfStock
		}
	}
	return nil
}

// placeOrder claims the basket, reserves stock and stores the order in one
// transaction. The basket delete comes first so a concurrent checkout of the
// same basket fails with errBasketGone and rolls back.
func placeOrder(db *gorm.DB, basket *models.Basket, order *models.Order, saveAddress bool, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := deleteBasket(tx, basket); err != nil {
			return err
		}
		if err := reserveStock(tx, order.OrderItems); err != nil {
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if saveAddress {
			if _, err := saveUserAddress(tx, userID, models.AddressFromShipping(order.ShippingAddress)); err != nil {
				return fmt.Errorf("save address: %w", err)
			}
		}
		return nil
	})
}

// CreateOrderHandler turns the caller's basket into an order. The basket
// must already carry a payment intent.
func CreateOrderHandler(c *gin.Context, db *gorm.DB, rule models.DeliveryRule, secure bool) {
	identity, _ := middleware.CurrentIdentity(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindProblem(c, err)
		return
	}

	basket, err := retrieveBasket(c, db)
	if err != nil {
		problem.Internal(c, "Could not load the basket", err)
		return
	}
	if basket == nil || len(basket.Items) == 0 || basket.PaymentIntentID == nil || *basket.PaymentIntentID == "" {
		problem.Abort(c, http.StatusBadRequest, "Basket is empty or not found", "")
		return
	}

	items := createOrderItems(basket.Items)
	var subtotal int64
	for _, item := range items {
		subtotal += item.Price * int64(item.Quantity)
	}

	order := models.Order{
		BuyerEmail:      identity.Email,
		ShippingAddress: req.ShippingAddress,
		OrderDate:       time.Now().UTC(),
		OrderItems:      items,
		Subtotal:        subtotal,
		DeliveryFee:     rule.Calculate(subtotal),
		PaymentIntentID: basket.PaymentIntentID,
		OrderStatus:     models.OrderStatusPending,
		PaymentSummary:  req.PaymentSummary,
	}

	err = placeOrder(db, basket, &order, req.SaveAddress, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, errBasketGone):
			problem.Abort(c, http.StatusBadRequest, "Basket is empty or not found", "")
		case errors.Is(err, errOutOfStock):
			problem.Abort(c, http.StatusBadRequest, "One or more items in your basket are no longer available in the desired quantity.", "")
		default:
			problem.Internal(c, "Problem creating order", err)
		}
		return
	}

	clearCookie(c, basketCookieName, secure)
	c.Header("Location", fmt.Sprintf("/api/orders/%d", order.ID))
	c.JSON(http.StatusCreated, order.ToDto())
}

// GetOrderListHandler lists the caller's orders, newest first.
func GetOrderListHandler(c *gin.Context, db *gorm.DB) {
	identity, _ := middleware.CurrentIdentity(c)

	var orders []models.Order
	err := db.
		Preload("OrderItems").
		Where("buyer_email = ?", identity.Email).
		Order("order_date DESC").
		Order("id DESC").
		Find(&orders).
		Error
	if err != nil {
		problem.Internal(c, "Could not load orders", err)
		return
	}

	orderList := make([]models.OrderDto, 0, len(orders))
	for i := range orders {
		orderList = append(orderList, orders[i].ToDto())
	}
	c.JSON(http.StatusOK, orderList)
}

func GetOrderDataHandler(c *gin.Context, db *gorm.DB) {
	identity, _ := middleware.CurrentIdentity(c)
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	err := db.
		Preload("OrderItems").
		Where("id = ? AND buyer_email = ?", orderID, identity.Email).
		First(&order).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			problem.Abort(c, http.StatusNotFound, "", "")
			return
		}
		problem.Internal(c, "Could not load the order", err)
		return
	}

	c.JSON(http.StatusOK, order.ToDto())
}
