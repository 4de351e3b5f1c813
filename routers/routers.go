package routers

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"Restore/cache"
	"Restore/config"
	"Restore/handlers"
	"Restore/jwt"
	"Restore/middleware"
	"Restore/models"
	"Restore/payments"
	"Restore/problem"
	"Restore/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the services the routes are wired to. Cache and Images
// may be nil.
type Dependencies struct {
	Config  config.Config
	DB      *gorm.DB
	Signer  *jwt.Signer
	Cache   *cache.ProductCache
	Images  storage.ImageStore
	Gateway payments.Gateway
	Logger  *slog.Logger
}

func SetupRouters(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	db := deps.DB
	secure := cfg.Auth.CookieSecure

	rule, err := cfg.DeliveryRule()
	if err != nil {
		return nil, fmt.Errorf("delivery rule: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger), middleware.Recovery(logger, cfg.IsDevelopment()))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.ClientOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Pagination", "Location", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(db, deps.Signer, cfg.Auth.CookieName))
	{
		//account
		api.POST("/account/register", func(context *gin.Context) {
			handlers.RegisterHandler(context, db)
		})
		api.POST("/login", func(context *gin.Context) {
			handlers.LoginHandler(context, db, deps.Signer, cfg.Auth)
		})
		api.POST("/account/logout", func(context *gin.Context) {
			handlers.LogOutHandler(context, db, cfg.Auth)
		})
		api.GET("/account/user-info", func(context *gin.Context) {
			handlers.GetUserInfoHandler(context, db)
		})

		//catalog
		api.GET("/products", func(context *gin.Context) {
			handlers.GetProductListHandler(context, db)
		})
		api.GET("/products/filters", func(context *gin.Context) {
			handlers.GetProductFiltersHandler(context, db, deps.Cache)
		})
		api.GET("/products/:id", func(context *gin.Context) {
			handlers.GetProductHandler(context, db, deps.Cache)
		})

		//basket
		api.GET("/basket", func(context *gin.Context) {
			handlers.GetBasketHandler(context, db)
		})
		api.POST("/basket", func(context *gin.Context) {
			handlers.AddItemToBasketHandler(context, db, secure)
		})
		api.DELETE("/basket", func(context *gin.Context) {
			handlers.RemoveBasketItemHandler(context, db)
		})

		//Stripe calls this one, so it stays anonymous
		api.POST("/payments/webhook", func(context *gin.Context) {
			handlers.StripeWebhookHandler(context, db, cfg.Stripe.WebhookSecret)
		})

		loginRequired := api.Group("")
		loginRequired.Use(middleware.CheckLoginMiddleware())
		{
			loginRequired.GET("/account/address", func(context *gin.Context) {
				handlers.GetAddressHandler(context, db)
			})
			loginRequired.POST("/account/address", func(context *gin.Context) {
				handlers.SaveAddressHandler(context, db)
			})
			loginRequired.POST("/payments", func(context *gin.Context) {
				handlers.CreateOrUpdatePaymentIntentHandler(context, db, deps.Gateway, rule)
			})
			loginRequired.GET("/orders", func(context *gin.Context) {
				handlers.GetOrderListHandler(context, db)
			})
			loginRequired.GET("/orders/:id", func(context *gin.Context) {
				handlers.GetOrderDataHandler(context, db)
			})
			loginRequired.POST("/orders", func(context *gin.Context) {
				handlers.CreateOrderHandler(context, db, rule, secure)
			})
		}

		adminRequired := api.Group("")
		adminRequired.Use(middleware.CheckLoginMiddleware(), middleware.CheckRoleMiddleware(models.RoleAdmin))
		{
			adminRequired.POST("/products", func(context *gin.Context) {
				handlers.CreateProductHandler(context, db, deps.Cache, deps.Images)
			})
			adminRequired.PUT("/products/:id", func(context *gin.Context) {
				handlers.UpdateProductHandler(context, db, deps.Cache, deps.Images)
			})
			adminRequired.DELETE("/products/:id", func(context *gin.Context) {
				handlers.DeleteProductHandler(context, db, deps.Cache, deps.Images)
			})
			adminRequired.GET("/admin/users", func(context *gin.Context) {
				handlers.GetUserListHandler(context, db)
			})
		}
	}

	router.NoRoute(spaFallback(cfg.Server.StaticDir))
	return router, nil
}

// spaFallback serves files from the client build and index.html for any
// other path, so client side routes survive a reload. Unknown /api paths
// get a 404 problem instead.
func spaFallback(staticDir string) gin.HandlerFunc {
	index := filepath.Join(staticDir, "index.html")
	return func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if urlPath == "/api" || strings.HasPrefix(urlPath, "/api/") ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			problem.Abort(c, http.StatusNotFound, "", "")
			return
		}

		file := filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+urlPath)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		if _, err := os.Stat(index); err != nil {
			problem.Abort(c, http.StatusNotFound, "", "")
			return
		}
		c.File(index)
	}
}
