package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"Restore/cache"
	"Restore/models"
	"Restore/problem"
	"Restore/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// productForm is the multipart body of product create and update requests.
// Price is in cents.
type productForm struct {
	Name            string                `form:"name" binding:"required"`
	Description     string                `form:"description" binding:"required"`
	Price           int64                 `form:"price" binding:"required,min=100"`
	Type            string                `form:"type" binding:"required"`
	Brand           string                `form:"brand" binding:"required"`
	QuantityInStock int                   `form:"quantityInStock" binding:"min=0,max=200"`
	File            *multipart.FileHeader `form:"file"`
}

func (f productForm) apply(product *models.Product) {
	product.Name = f.Name
	product.Description = f.Description
	product.Price = f.Price
	product.Type = f.Type
	product.Brand = f.Brand
	product.QuantityInStock = f.QuantityInStock
}

// uploadImage stores the form file. It writes the error response itself and
// reports whether the upload went through.
func uploadImage(c *gin.Context, store storage.ImageStore, file *multipart.FileHeader) (storage.Image, bool) {
	if store == nil {
		problem.Abort(c, http.StatusBadRequest, "Image upload is not available", "No image store is configured")
		return storage.Image{}, false
	}

	f, err := file.Open()
	if err != nil {
		problem.Validation(c, map[string][]string{"File": {"The file could not be read."}})
		return storage.Image{}, false
	}
	defer f.Close()

	image, err := store.Upload(c, file.Filename, f)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			problem.Validation(c, map[string][]string{"File": {err.Error()}})
			return storage.Image{}, false
		}
		slog.ErrorContext(c, "image upload failed", "file", file.Filename, "error", err)
		problem.Abort(c, http.StatusBadGateway, "Problem uploading image", "")
		return storage.Image{}, false
	}
	return image, true
}

func deleteImage(c *gin.Context, store storage.ImageStore, publicID string) {
	if store == nil || publicID == "" {
		return
	}
	if err := store.Delete(c, publicID); err != nil {
		slog.WarnContext(c, "image delete failed", "publicID", publicID, "error", err)
	}
}

func CreateProductHandler(c *gin.Context, db *gorm.DB, productCache *cache.ProductCache, store storage.ImageStore) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		bindProblem(c, err)
		return
	}

	var product models.Product
	form.apply(&product)

	if form.File != nil {
		image, ok := uploadImage(c, store, form.File)
		if !ok {
			return
		}
		product.PictureURL = image.URL
		product.PublicID = image.PublicID
	}

	if err := db.Create(&product).Error; err != nil {
		deleteImage(c, store, product.PublicID)
		problem.Internal(c, "Problem creating new product", err)
		return
	}

	productCache.Invalidate(c, product.ID)
	c.Header("Location", fmt.Sprintf("/api/products/%d", product.ID))
	c.JSON(http.StatusCreated, product)
}

// UpdateProductHandler replaces the product fields. A new file replaces the
// stored image.
func UpdateProductHandler(c *gin.Context, db *gorm.DB, productCache *cache.ProductCache, store storage.ImageStore) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			problem.Abort(c, http.StatusNotFound, "", "")
			return
		}
		problem.Internal(c, "Could not load the product", err)
		return
	}

	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		bindProblem(c, err)
		return
	}
	form.apply(&product)

	oldPublicID := ""
	if form.File != nil {
		image, ok := uploadImage(c, store, form.File)
		if !ok {
			return
		}
		oldPublicID = product.PublicID
		product.PictureURL = image.URL
		product.PublicID = image.PublicID
	}

	if err := db.Save(&product).Error; err != nil {
		if form.File != nil {
			deleteImage(c, store, product.PublicID)
		}
		problem.Internal(c, "Problem updating product", err)
		return
	}
	deleteImage(c, store, oldPublicID)

	productCache.Invalidate(c, product.ID)
	c.Status(http.StatusNoContent)
}

// DeleteProductHandler removes the product, every basket line holding it and
// its stored image. Orders keep their snapshot.
func DeleteProductHandler(c *gin.Context, db *gorm.DB, productCache *cache.ProductCache, store storage.ImageStore) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			problem.Abort(c, http.StatusNotFound, "", "")
			return
		}
		problem.Internal(c, "Could not load the product", err)
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.BasketItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		problem.Internal(c, "Problem deleting the product", err)
		return
	}

	deleteImage(c, store, product.PublicID)
	productCache.Invalidate(c, product.ID)
	c.Status(http.StatusOK)
}
