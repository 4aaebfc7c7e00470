package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/config"
	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/handlers/product"
	"storefront_back_end/internal/handlers/user"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/utils"
)

// Deps : tout ce dont le routeur a besoin, construit dans cmd/server.
type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	Cache   *cache.Cache
	Audit   middleware.Auditor
	Mailer  handlers.ContactSender
	User    *user.Handler
	Product *product.Handler
}

// NewRouter construit le moteur gin avec ses middlewares globaux.
func NewRouter(d Deps) *gin.Engine {
	if !d.Config.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(logger.GinMiddleware(d.Log), logger.Recovery(d.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.App.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.GuestHeader},
		ExposeHeaders:    []string{middleware.GuestHeader, "Retry-After", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRoutes(r, d)
	return r
}

// RegisterRoutes déclare toutes les routes de l'API.
func RegisterRoutes(r *gin.Engine, d Deps) {
	secret := d.Config.JWT.Secret
	secureCookie := !d.Config.App.IsDevelopment()

	r.GET("/healthz", handlers.Health)

	api := r.Group("/api")
	api.Use(
		middleware.APIRateLimit(d.Cache),
		middleware.OptionalAuth(secret, d.Cache),
		middleware.Owner(secureCookie),
	)

	authRequired := middleware.AuthRequired(secret, d.Cache)
	cartLimit := middleware.CartRateLimit(d.Cache)

	// =============================================
	// CATALOGUE (/, /shop, fiche produit)
	// =============================================
	products := api.Group("/products")
	{
		products.GET("", d.Product.ListProducts)
		products.GET("/search", middleware.SearchRateLimit(d.Cache), d.Product.SearchProducts)
		products.GET("/:id", d.Product.GetProduct)
		products.GET("/:id/comments", d.Product.ListComments)
		products.POST("/:id/comments",
			middleware.AuditAction(d.Audit, utils.ActionCommentCreate, utils.ResourceComment),
			d.Product.CreateComment)
	}

	// =============================================
	// PANIER (/cart)
	// =============================================
	cart := api.Group("/cart")
	{
		cart.GET("", d.User.GetCart)
		cart.POST("", cartLimit, d.User.AddToCart)
		cart.PUT("/:productId", cartLimit, d.User.UpdateCartQuantity)
		cart.DELETE("/:productId", cartLimit, d.User.RemoveFromCart)
		cart.DELETE("", cartLimit, d.User.ClearCart)
	}

	// =============================================
	// WISHLIST (/whislist)
	// =============================================
	wishlist := api.Group("/wishlist")
	{
		wishlist.GET("", d.User.GetWishlist)
		wishlist.POST("", cartLimit, d.User.AddToWishlist)
		wishlist.DELETE("/:productId", cartLimit, d.User.RemoveFromWishlist)
		wishlist.DELETE("", cartLimit, d.User.ClearWishlist)
	}

	// =============================================
	// COMMANDES (/orders)
	// =============================================
	orders := api.Group("/orders")
	{
		// Ouvert aux visiteurs : le refus (401) est rendu par le handler.
		orders.POST("/checkout",
			middleware.AuditAction(d.Audit, utils.ActionOrderCreate, utils.ResourceOrder),
			d.User.Checkout)
		orders.GET("", authRequired, d.User.GetMyOrders)
		orders.GET("/:id", authRequired, d.User.GetOrderByID)
	}

	// =============================================
	// AUTH (/login)
	// =============================================
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(d.Cache),
			middleware.AuditAction(d.Audit, utils.ActionUserCreate, utils.ResourceUser),
			d.User.Register)
		auth.POST("/login", middleware.LoginRateLimit(d.Cache), d.User.Login)
		auth.POST("/logout", authRequired,
			middleware.AuditAction(d.Audit, utils.ActionLogout, utils.ResourceAuth),
			d.User.Logout)
		auth.GET("/me", authRequired, d.User.Me)
		auth.GET("/:provider", d.User.BeginOAuth)
		auth.GET("/:provider/callback", d.User.OAuthCallback)
	}

	api.GET("/session", d.User.GetSession)
	api.GET("/sync", d.User.SyncWebSocket)

	// =============================================
	// CONTACT (/contact)
	// =============================================
	api.POST("/contact", middleware.ContactRateLimit(d.Cache), handlers.Contact(d.Mailer))
}
