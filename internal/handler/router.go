package handler

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/flicky/go-marketplace-api/internal/middleware"
	"github.com/flicky/go-marketplace-api/internal/model"
)

type Services struct {
	Auth      AuthService
	Users     UserService
	Products  ProductService
	Carts     CartService
	Checkout  CheckoutService
	Orders    OrderService
	Favorites FavoriteService
	Stats     StatsService
}

type RouterConfig struct {
	JWTSecret      string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	Locks          middleware.Locks
	SubmissionTTL  time.Duration
	Health         *HealthHandler
	Log            *slog.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	authH := NewAuthHandler(svc.Auth)
	userH := NewUserHandler(svc.Users)
	productH := NewProductHandler(svc.Products)
	cartH := NewCartHandler(svc.Carts)
	checkoutH := NewCheckoutHandler(svc.Checkout)
	orderH := NewOrderHandler(svc.Orders)
	favoriteH := NewFavoriteHandler(svc.Favorites)
	statsH := NewStatsHandler(svc.Stats)

	health := cfg.Health
	if health == nil {
		health = NewHealthHandler()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(cfg.Log), cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/healthz", health.Healthz)
	router.GET("/readyz", health.Readyz)

	authed := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)
	sellers := middleware.RequireRoles(model.RoleSeller, model.RoleAdmin)
	customers := middleware.RequireRoles(model.RoleCustomer)

	v1 := router.Group("/api/v1", middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)

		users := v1.Group("/users", authed)
		users.POST("", adminOnly, userH.Create)
		users.GET("", adminOnly, userH.List)
		users.GET("/email/:email", userH.GetByEmail)
		users.GET("/:id", userH.GetByID)
		users.PATCH("/:id", userH.Update)
		users.DELETE("/:id", userH.SoftDelete)
		users.DELETE("/:id/hard", adminOnly, userH.HardDelete)

		products := v1.Group("/products")
		products.GET("", productH.List)
		products.GET("/:id", productH.GetByID)

		sellerProducts := products.Group("", authed)
		sellerProducts.POST("", sellers, productH.Create)
		sellerProducts.GET("/seller/:sellerId", sellers, productH.ListBySeller)
		sellerProducts.GET("/seller/:sellerId/export", sellers, productH.ExportBySeller)
		sellerProducts.PATCH("/:id", sellers, productH.Update)
		sellerProducts.DELETE("/:id", sellers, productH.Delete)

		carts := v1.Group("/carts", authed)
		carts.POST("", customers, cartH.Create)
		carts.GET("", cartH.List)
		carts.DELETE("/clear", customers, cartH.Clear)
		carts.GET("/:id", cartH.GetByID)
		carts.DELETE("/:id", cartH.Delete)

		items := v1.Group("/cart-items", authed)
		items.POST("", cartH.AddItem)
		items.GET("", cartH.ListItems)
		items.GET("/:id", cartH.GetItem)
		items.PATCH("/:id", cartH.UpdateItem)
		items.DELETE("/:id", cartH.DeleteItem)
		items.DELETE("/cart/:cartId/product/:productId", cartH.DeleteItemByProduct)

		checkout := []gin.HandlerFunc{authed, customers}
		if cfg.Locks != nil {
			checkout = append(checkout, middleware.SubmissionGuard(cfg.Locks, "checkout", cfg.SubmissionTTL, cfg.Log))
		}
		v1.POST("/checkout", append(checkout, checkoutH.Checkout)...)

		orders := v1.Group("/orders", authed)
		orders.GET("", orderH.List)
		orders.GET("/:id", orderH.GetByID)
		orders.DELETE("/:id", adminOnly, orderH.Delete)

		orderItems := v1.Group("/order-items", authed)
		orderItems.GET("", orderH.ListItems)
		orderItems.GET("/:id", orderH.GetItem)

		favorites := v1.Group("/favorites", authed)
		favorites.POST("", favoriteH.Create)
		favorites.POST("/:productId", favoriteH.CreateForProduct)
		favorites.GET("", favoriteH.List)
		favorites.GET("/:id", favoriteH.GetByID)
		favorites.DELETE("/product/:productId", favoriteH.DeleteByProduct)
		favorites.DELETE("/:id", favoriteH.Delete)

		stats := v1.Group("/stats", authed, middleware.RequireRoles(model.RoleSeller))
		stats.GET("/seller", statsH.Seller)
		stats.GET("/seller/recent-sales", statsH.RecentSales)
	}

	return router
}
