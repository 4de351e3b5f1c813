package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"Restore/models"
	"Restore/payments"
	"Restore/problem"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxWebhookBody = 64 << 10

// CreateOrUpdatePaymentIntentHandler makes sure the basket has a payment
// intent for its current amount. The intent id and client secret are only
// stored the first time.
func CreateOrUpdatePaymentIntentHandler(c *gin.Context, db *gorm.DB, gateway payments.Gateway, rule models.DeliveryRule) {
	basket, err := retrieveBasket(c, db)
	if err != nil {
		problem.Internal(c, "Could not load the basket", err)
		return
	}
	if basket == nil {
		problem.Abort(c, http.StatusNotFound, "", "Basket not found")
		return
	}
	if len(basket.Items) == 0 {
		problem.Abort(c, http.StatusBadRequest, "Problem creating payment intent", "Basket is empty")
		return
	}

	subtotal := basket.Subtotal()
	amount := subtotal + rule.Calculate(subtotal)

	intentID := ""
	if basket.PaymentIntentID != nil {
		intentID = *basket.PaymentIntentID
	}

	intent, err := gateway.CreateOrUpdateIntent(c, intentID, amount)
	if err != nil {
		slog.ErrorContext(c, "payment intent failed", "basketId", basket.BasketID, "error", err)
		detail := ""
		var apiErr *payments.APIError
		if errors.As(err, &apiErr) {
			detail = apiErr.Message
		}
		problem.Abort(c, http.StatusBadRequest, "Problem creating payment intent", detail)
		return
	}

	if basket.PaymentIntentID == nil {
		basket.PaymentIntentID = &intent.ID
		basket.ClientSecret = &intent.ClientSecret
		err := db.Model(basket).Omit(clause.Associations).Updates(map[string]any{
			"payment_intent_id": intent.ID,
			"client_secret":     intent.ClientSecret,
		}).Error
		if err != nil {
			problem.Internal(c, "Problem updating basket with intent", err)
			return
		}
	}

	c.JSON(http.StatusOK, basket.ToDto())
}

// StripeWebhookHandler reconciles orders with payment intent events. Each
// event id is processed once; redeliveries are acknowledged and skipped.
func StripeWebhookHandler(c *gin.Context, db *gorm.DB, secret string) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		problem.Abort(c, http.StatusBadRequest, "Webhook error", "Could not read the body")
		return
	}

	event, err := payments.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret, payments.DefaultTolerance)
	if err != nil {
		slog.WarnContext(c, "stripe event rejected", "error", err)
		detail := "Malformed event"
		if errors.Is(err, payments.ErrInvalidSignature) {
			detail = "Invalid signature"
		}
		problem.Abort(c, http.StatusBadRequest, "Webhook error", detail)
		return
	}
	slog.InfoContext(c, "stripe event received", "id", event.ID, "type", event.Type)

	duplicate := false
	err = db.Transaction(func(tx *gorm.DB) error {
		record := models.PaymentEvent{
			EventID: event.ID,
			Type:    event.Type,
			Payload: datatypes.JSON(payload),
		}

		var intent payments.Intent
		handled := event.Type == payments.EventPaymentSucceeded || event.Type == payments.EventPaymentFailed
		if handled {
			if intent, err = event.PaymentIntent(); err != nil {
				return err
			}
			record.PaymentIntentID = intent.ID
		}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			duplicate = true
			return nil
		}

		switch event.Type {
		case payments.EventPaymentSucceeded:
			return handlePaymentIntentSucceeded(c, tx, intent)
		case payments.EventPaymentFailed:
			return handlePaymentIntentFailed(c, tx, intent)
		default:
			slog.WarnContext(c, "unhandled stripe event type", "type", event.Type)
			return nil
		}
	})
	if err != nil {
		if errors.Is(err, payments.ErrUnexpectedPayload) {
			problem.Abort(c, http.StatusBadRequest, "Webhook error", err.Error())
			return
		}
		problem.Internal(c, "Webhook error", err)
		return
	}
	if duplicate {
		slog.InfoContext(c, "stripe event already processed", "id", event.ID)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func findOrderByIntent(tx *gorm.DB, intentID string) (*models.Order, error) {
	var order models.Order
	err := tx.Preload("OrderItems").Where("payment_intent_id = ?", intentID).Order("id DESC").First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// handlePaymentIntentSucceeded prefers amount_received over amount when
// comparing with the order total.
func handlePaymentIntentSucceeded(c *gin.Context, tx *gorm.DB, intent payments.Intent) error {
	order, err := findOrderByIntent(tx, intent.ID)
	if err != nil {
		return err
	}
	if order == nil {
		slog.WarnContext(c, "payment succeeded: order not found", "intentId", intent.ID)
		return nil
	}

	paid := intent.AmountReceived
	if paid <= 0 {
		paid = intent.Amount
	}

	status := models.OrderStatusPaymentReceived
	if order.Total() != paid {
		status = models.OrderStatusPaymentMismatch
		slog.WarnContext(c, "payment mismatch", "orderId", order.ID, "total", models.FormatCents(order.Total()), "paid", models.FormatCents(paid))
	}
	if err := tx.Model(order).Update("order_status", status).Error; err != nil {
		return err
	}
	slog.InfoContext(c, "order payment updated", "orderId", order.ID, "status", status)

	basket, err := findBasket(tx.Where("payment_intent_id = ?", intent.ID))
	if err != nil || basket == nil {
		return err
	}
	if err := deleteBasket(tx, basket); err != nil && !errors.Is(err, errBasketGone) {
		return err
	}
	return nil
}

// handlePaymentIntentFailed puts the ordered quantities back in stock.
func handlePaymentIntentFailed(c *gin.Context, tx *gorm.DB, intent payments.Intent) error {
	order, err := findOrderByIntent(tx, intent.ID)
	if err != nil {
		return err
	}
	if order == nil {
		slog.WarnContext(c, "payment failed: order not found", "intentId", intent.ID)
		return nil
	}
	if order.OrderStatus == models.OrderStatusPaymentFailed {
		return nil
	}

	for _, item := range order.OrderItems {
		result := tx.Unscoped().Model(&models.Product{}).
			Where("id = ?", item.ItemOrdered.ProductID).
			Update("quantity_in_stock", gorm.Expr("quantity_in_stock + ?", item.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			slog.ErrorContext(c, "product not found when restoring stock", "productId", item.ItemOrdered.ProductID)
		}
	}

	if err := tx.Model(order).Update("order_status", models.OrderStatusPaymentFailed).Error; err != nil {
		return err
	}
	slog.InfoContext(c, "order marked as payment failed, stock restored", "orderId", order.ID)
	return nil
}
