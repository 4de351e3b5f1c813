package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"Restore/cache"
	"Restore/models"
	"Restore/problem"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 8
	maxPageSize     = 50
)

type ProductParams struct {
	OrderBy    string `form:"orderBy"`
	SearchTerm string `form:"searchTerm"`
	Brands     string `form:"brands"`
	Types      string `form:"types"`
	PageNumber int    `form:"pageNumber" binding:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" binding:"omitempty,min=1"`
}

type PaginationMetadata struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalCount  int64 `json:"totalCount"`
}

func (p *ProductParams) normalize() {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

// likeEscaper makes LIKE wildcards in a search term match literally. '!' is
// the escape character because MySQL treats a backslash inside a string
// literal as an escape of its own.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func splitList(list string) []string {
	var values []string
	for _, v := range strings.Split(list, ",") {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// filterProducts applies search, brand and type filters and the sort order.
func filterProducts(query *gorm.DB, params ProductParams) *gorm.DB {
	if term := strings.TrimSpace(params.SearchTerm); term != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(strings.ToLower(term))+"%")
	}
	if brands := splitList(params.Brands); len(brands) > 0 {
		query = query.Where("LOWER(brand) IN ?", brands)
	}
	if types := splitList(params.Types); len(types) > 0 {
		query = query.Where("LOWER(type) IN ?", types)
	}
	return query
}

func sortProducts(query *gorm.DB, orderBy string) *gorm.DB {
	switch orderBy {
	case "price":
		return query.Order("price ASC").Order("id")
	case "priceDesc":
		return query.Order("price DESC").Order("id")
	default:
		return query.Order("name ASC").Order("id")
	}
}

// GetProductListHandler returns one page of products. Paging metadata goes in
// the Pagination header.
func GetProductListHandler(c *gin.Context, db *gorm.DB) {
	var params ProductParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindProblem(c, err)
		return
	}
	params.normalize()

	query := filterProducts(db.Model(&models.Product{}), params).Session(&gorm.Session{})

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		problem.Internal(c, "Could not count products", err)
		return
	}

	products := []models.Product{}
	err := sortProducts(query, params.OrderBy).
		Offset((params.PageNumber - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&products).
		Error
	if err != nil {
		problem.Internal(c, "Could not load products", err)
		return
	}

	metadata := PaginationMetadata{
		CurrentPage: params.PageNumber,
		TotalPages:  int((totalCount + int64(params.PageSize) - 1) / int64(params.PageSize)),
		PageSize:    params.PageSize,
		TotalCount:  totalCount,
	}
	header, _ := json.Marshal(metadata)
	c.Header("Pagination", string(header))
	c.JSON(http.StatusOK, products)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		problem.Abort(c, http.StatusNotFound, "", "")
		return 0, false
	}
	return uint(id), true
}

func GetProductHandler(c *gin.Context, db *gorm.DB, productCache *cache.ProductCache) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if product, hit := productCache.Product(c, id); hit {
		c.JSON(http.StatusOK, product)
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

	productCache.SetProduct(c, product)
	c.JSON(http.StatusOK, product)
}

// GetProductFiltersHandler lists the distinct brands and types, sorted.
func GetProductFiltersHandler(c *gin.Context, db *gorm.DB, productCache *cache.ProductCache) {
	if filters, hit := productCache.Filters(c); hit {
		c.JSON(http.StatusOK, filters)
		return
	}

	filters := models.ProductFilters{Brands: []string{}, Types: []string{}}
	if err := db.Model(&models.Product{}).Distinct().Order("brand").Pluck("brand", &filters.Brands).Error; err != nil {
		problem.Internal(c, "Could not load brands", err)
		return
	}
	if err := db.Model(&models.Product{}).Distinct().Order("type").Pluck("type", &filters.Types).Error; err != nil {
		problem.Internal(c, "Could not load types", err)
		return
	}

	productCache.SetFilters(c, filters)
	c.JSON(http.StatusOK, filters)
}
