package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"Restore/models"
	"Restore/problem"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errBasketGone = errors.New("basket no longer exists")

const (
	basketCookieName = "basketId"
	basketCookieTTL  = 30 * 24 * time.Hour
)

// getBasketID reads the basket id cookie.
func getBasketID(c *gin.Context) string {
	basketID, err := c.Cookie(basketCookieName)
	if err != nil {
		return ""
	}
	return basketID
}

// retrieveBasket loads the caller's basket with items and products. It
// returns nil without error when there is none.
func retrieveBasket(c *gin.Context, db *gorm.DB) (*models.Basket, error) {
	basketID := getBasketID(c)
	if basketID == "" {
		return nil, nil
	}
	return findBasket(db.Where("basket_id = ?", basketID))
}

func findBasket(query *gorm.DB) (*models.Basket, error) {
	var basket models.Basket
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		First(&basket).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &basket, nil
}

// createBasket stores an empty basket and hands its id to the client.
func createBasket(c *gin.Context, db *gorm.DB, secure bool) (*models.Basket, error) {
	basket := models.Basket{BasketID: uuid.NewString()}
	if err := db.Create(&basket).Error; err != nil {
		return nil, err
	}
	setCookie(c, basketCookieName, basket.BasketID, basketCookieTTL, secure)
	return &basket, nil
}

// deleteBasket removes the basket and its lines. It returns errBasketGone
// when the basket row was already deleted by another transaction.
func deleteBasket(tx *gorm.DB, basket *models.Basket) error {
	result := tx.Where("id = ?", basket.ID).Delete(&models.Basket{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errBasketGone
	}
	return tx.Where("basket_id = ?", basket.ID).Delete(&models.BasketItem{}).Error
}

func basketQuery(c *gin.Context) (productID uint, quantity int, ok bool) {
	pid, err := strconv.ParseUint(c.Query("productId"), 10, 0)
	if err != nil {
		problem.Validation(c, map[string][]string{"productId": {"The productId field is invalid."}})
		return 0, 0, false
	}
	quantity, err = strconv.Atoi(c.Query("quantity"))
	if err != nil || quantity <= 0 {
		problem.Validation(c, map[string][]string{"quantity": {models.ErrInvalidQuantity.Error()}})
		return 0, 0, false
	}
	return uint(pid), quantity, true
}

func GetBasketHandler(c *gin.Context, db *gorm.DB) {
	basket, err := retrieveBasket(c, db)
	if err != nil {
		problem.Internal(c, "Could not load the basket", err)
		return
	}
	if basket == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, basket.ToDto())
}

// AddItemToBasketHandler adds a product to the caller's basket, creating the
// basket on first use.
func AddItemToBasketHandler(c *gin.Context, db *gorm.DB, secure bool) {
	productID, quantity, ok := basketQuery(c)
	if !ok {
		return
	}

	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			problem.Abort(c, http.StatusBadRequest, "Problem adding item to basket", "Product not found")
			return
		}
		problem.Internal(c, "Could not load the product", err)
		return
	}

	basket, err := retrieveBasket(c, db)
	if err != nil {
		problem.Internal(c, "Could not load the basket", err)
		return
	}
	if basket == nil {
		if basket, err = createBasket(c, db, secure); err != nil {
			problem.Internal(c, "Could not create the basket", err)
			return
		}
	}

	item, err := basket.AddItem(product, quantity)
	if err != nil {
		problem.Abort(c, http.StatusBadRequest, "Problem adding item to basket", err.Error())
		return
	}
	if err := db.Omit(clause.Associations).Save(item).Error; err != nil {
		problem.Internal(c, "Problem adding item to basket", err)
		return
	}

	c.Header("Location", "/api/basket")
	c.JSON(http.StatusCreated, basket.ToDto())
}

func RemoveBasketItemHandler(c *gin.Context, db *gorm.DB) {
	productID, quantity, ok := basketQuery(c)
	if !ok {
		return
	}

	basket, err := retrieveBasket(c, db)
	if err != nil {
		problem.Internal(c, "Could not load the basket", err)
		return
	}
	if basket == nil {
		problem.Abort(c, http.StatusNotFound, "", "Basket not found")
		return
	}

	item, removed, err := basket.RemoveItem(productID, quantity)
	if err != nil {
		problem.Abort(c, http.StatusBadRequest, "Problem removing item from the basket", err.Error())
		return
	}
	switch {
	case item == nil:
	case removed:
		err = db.Delete(item).Error
	default:
		err = db.Omit(clause.Associations).Save(item).Error
	}
	if err != nil {
		problem.Internal(c, "Problem removing item from the basket", err)
		return
	}

	c.Status(http.StatusOK)
}
