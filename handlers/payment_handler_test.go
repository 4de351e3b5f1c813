package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"
	"time"

	"Restore/models"
	"Restore/payments"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const webhookSecret = "whsec_test"

func paymentRouter(db *gorm.DB, gateway payments.Gateway, user models.User) *gin.Engine {
	router := gin.New()
	router.POST("/api/payments/webhook", func(c *gin.Context) { StripeWebhookHandler(c, db, webhookSecret) })
	router.POST("/api/payments", signedIn(user), func(c *gin.Context) {
		CreateOrUpdatePaymentIntentHandler(c, db, gateway, models.DefaultDeliveryRule)
	})
	return router
}

func TestCreatePaymentIntent(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "bob@test.com", models.RoleMember)
	gateway := &fakeGateway{}
	router := paymentRouter(db, gateway, user)
	boots := createProduct(t, db, "Red Boots", 2500, 10)
	basket := seedBasket(t, db, "", basketLine{boots, 2})
	cookies := []*http.Cookie{basketCookie(basket)}

	w := serve(router, request{method: http.MethodPost, target: "/api/payments", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[models.BasketDto](t, w)
	require.NotNil(t, first.PaymentIntentID)
	require.NotNil(t, first.ClientSecret)

	// a second call updates the same intent and keeps the stored secret
	w = serve(router, request{method: http.MethodPost, target: "/api/payments", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[models.BasketDto](t, w)
	assert.Equal(t, *first.PaymentIntentID, *second.PaymentIntentID)
	assert.Equal(t, *first.ClientSecret, *second.ClientSecret)

	assert.Equal(t, []string{"", *first.PaymentIntentID}, gateway.calls)

	var stored models.Basket
	require.NoError(t, db.First(&stored, basket.ID).Error)
	assert.Equal(t, *first.PaymentIntentID, *stored.PaymentIntentID)
}

func TestCreatePaymentIntentErrors(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "bob@test.com", models.RoleMember)
	boots := createProduct(t, db, "Red Boots", 2500, 10)

	w := serve(paymentRouter(db, &fakeGateway{}, user), request{method: http.MethodPost, target: "/api/payments"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	basket := seedBasket(t, db, "", basketLine{boots, 1})
	failing := &fakeGateway{err: &payments.APIError{StatusCode: 400, Message: "Your card was declined."}}
	w = serve(paymentRouter(db, failing, user), request{method: http.MethodPost, target: "/api/payments", cookies: []*http.Cookie{basketCookie(basket)}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Your card was declined.")
}

func intentEvent(eventID, eventType, intentID string, amount, received int64) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":%q,"data":{"object":{"id":%q,"object":"payment_intent","amount":%d,"amount_received":%d}}}`,
		eventID, eventType, intentID, amount, received,
	))
}

func postWebhook(router http.Handler, payload []byte) int {
	w := serve(router, request{
		method:  http.MethodPost,
		target:  "/api/payments/webhook",
		body:    bytes.NewReader(payload),
		headers: map[string]string{"Stripe-Signature": payments.SignatureHeader(payload, webhookSecret, time.Now())},
	})
	return w.Code
}

func seedOrder(t *testing.T, db *gorm.DB, intentID string, product models.Product, quantity int) models.Order {
	t.Helper()
	order := models.Order{
		BuyerEmail:      "bob@test.com",
		OrderDate:       time.Now().UTC(),
		Subtotal:        product.Price * int64(quantity),
		DeliveryFee:     500,
		PaymentIntentID: &intentID,
		OrderStatus:     models.OrderStatusPending,
		OrderItems: []models.OrderItem{{
			ItemOrdered: models.ProductItemOrdered{ProductID: product.ID, Name: product.Name},
			Price:       product.Price,
			Quantity:    quantity,
		}},
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func orderStatus(t *testing.T, db *gorm.DB, id uint) models.OrderStatus {
	t.Helper()
	var order models.Order
	require.NoError(t, db.First(&order, id).Error)
	return order.OrderStatus
}

func TestWebhookPaymentSucceeded(t *testing.T) {
	db := newTestDB(t)
	router := paymentRouter(db, &fakeGateway{}, models.User{})
	boots := createProduct(t, db, "Red Boots", 2500, 10)
	order := seedOrder(t, db, "pi_ok", boots, 2)
	seedBasket(t, db, "pi_ok", basketLine{boots, 2})

	require.Equal(t, http.StatusOK, postWebhook(router, intentEvent("evt_1", payments.EventPaymentSucceeded, "pi_ok", 5500, 5500)))
	assert.Equal(t, models.OrderStatusPaymentReceived, orderStatus(t, db, order.ID))

	var baskets, items int64
	require.NoError(t, db.Model(&models.Basket{}).Count(&baskets).Error)
	require.NoError(t, db.Model(&models.BasketItem{}).Count(&items).Error)
	assert.Zero(t, baskets, "basket bound to the intent is removed")
	assert.Zero(t, items)
}

func TestWebhookPaymentMismatch(t *testing.T) {
	db := newTestDB(t)
	router := paymentRouter(db, &fakeGateway{}, models.User{})
	boots := createProduct(t, db, "Red Boots", 2500, 10)
	order := seedOrder(t, db, "pi_short", boots, 2)

	// amount_received of zero falls back to amount
	require.Equal(t, http.StatusOK, postWebhook(router, intentEvent("evt_1", payments.EventPaymentSucceeded, "pi_short", 100, 0)))
	assert.Equal(t, models.OrderStatusPaymentMismatch, orderStatus(t, db, order.ID))
}

func TestWebhookPaymentFailedRestoresStock(t *testing.T) {
	db := newTestDB(t)
	router := paymentRouter(db, &fakeGateway{}, models.User{})
	boots := createProduct(t, db, "Red Boots", 2500, 8)
	order := seedOrder(t, db, "pi_fail", boots, 2)

	payload := intentEvent("evt_9", payments.EventPaymentFailed, "pi_fail", 5500, 0)
	require.Equal(t, http.StatusOK, postWebhook(router, payload))
	assert.Equal(t, models.OrderStatusPaymentFailed, orderStatus(t, db, order.ID))
	assert.Equal(t, 10, productStock(t, db, boots.ID))

	// redelivery of the same event is acknowledged but not applied twice
	require.Equal(t, http.StatusOK, postWebhook(router, payload))
	assert.Equal(t, 10, productStock(t, db, boots.ID))

	var events int64
	require.NoError(t, db.Model(&models.PaymentEvent{}).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestWebhookUnknownOrderAndEventType(t *testing.T) {
	db := newTestDB(t)
	router := paymentRouter(db, &fakeGateway{}, models.User{})

	assert.Equal(t, http.StatusOK, postWebhook(router, intentEvent("evt_1", payments.EventPaymentSucceeded, "pi_missing", 100, 100)))
	assert.Equal(t, http.StatusOK, postWebhook(router, []byte(`{"id":"evt_2","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	router := paymentRouter(db, &fakeGateway{}, models.User{})
	payload := intentEvent("evt_1", payments.EventPaymentSucceeded, "pi_1", 100, 100)

	w := serve(router, request{
		method:  http.MethodPost,
		target:  "/api/payments/webhook",
		body:    bytes.NewReader(payload),
		headers: map[string]string{"Stripe-Signature": payments.SignatureHeader(payload, "wrong", time.Now())},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, request{method: http.MethodPost, target: "/api/payments/webhook", body: bytes.NewReader(payload)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var events int64
	require.NoError(t, db.Model(&models.PaymentEvent{}).Count(&events).Error)
	assert.Zero(t, events)
}
