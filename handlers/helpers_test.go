package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"Restore/config"
	"Restore/middleware"
	"Restore/models"
	"Restore/payments"
	"Restore/storage"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Name:            name,
		Description:     name + " description",
		Price:           price,
		PictureURL:      "/images/" + strings.ToLower(strings.ReplaceAll(name, " ", "-")) + ".png",
		Type:            "Boots",
		Brand:           "Redis",
		QuantityInStock: stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func createUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{Email: email, UserName: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// signedIn fakes what AuthMiddleware sets for a signed in user.
func signedIn(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.KeyUserID, user.ID)
		c.Set(middleware.KeyEmail, user.Email)
		c.Set(middleware.KeyRole, user.Role)
		c.Next()
	}
}

type request struct {
	method  string
	target  string
	body    io.Reader
	headers map[string]string
	cookies []*http.Cookie
}

func serve(router http.Handler, r request) *httptest.ResponseRecorder {
	req := httptest.NewRequest(r.method, r.target, r.body)
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	for _, cookie := range r.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

type basketLine struct {
	product  models.Product
	quantity int
}

// seedBasket stores a basket holding lines.
func seedBasket(t *testing.T, db *gorm.DB, intentID string, lines ...basketLine) models.Basket {
	t.Helper()
	basket := models.Basket{BasketID: uuid.NewString()}
	if intentID != "" {
		secret := intentID + "_secret"
		basket.PaymentIntentID = &intentID
		basket.ClientSecret = &secret
	}
	require.NoError(t, db.Create(&basket).Error)
	for _, line := range lines {
		require.NoError(t, db.Create(&models.BasketItem{
			BasketID:  basket.ID,
			ProductID: line.product.ID,
			Quantity:  line.quantity,
		}).Error)
	}
	return basket
}

func basketCookie(basket models.Basket) *http.Cookie {
	return &http.Cookie{Name: basketCookieName, Value: basket.BasketID}
}

type fakeGateway struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeGateway) CreateOrUpdateIntent(_ context.Context, intentID string, amount int64) (payments.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, intentID)
	if f.err != nil {
		return payments.Intent{}, f.err
	}
	id := intentID
	if id == "" {
		id = "pi_" + uuid.NewString()[:8]
	}
	return payments.Intent{ID: id, ClientSecret: id + "_secret_" + uuid.NewString()[:4], Amount: amount}, nil
}

type fakeStore struct {
	mu       sync.Mutex
	uploaded map[string]string
	deleted  []string
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploaded: map[string]string{}}
}

func (f *fakeStore) Upload(_ context.Context, filename string, body io.Reader) (storage.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, err := storage.ObjectKey(filename)
	if err != nil {
		return storage.Image{}, err
	}
	if f.err != nil {
		return storage.Image{}, f.err
	}
	data, _ := io.ReadAll(body)
	f.uploaded[key] = string(data)
	return storage.Image{URL: "https://cdn.test/" + key, PublicID: key}, nil
}

func (f *fakeStore) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	delete(f.uploaded, publicID)
	return nil
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
