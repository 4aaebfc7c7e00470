package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/config"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/handlers/product"
	"storefront_back_end/internal/handlers/user"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/routes"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	zlog := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients, err := database.Connect(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("❌ Database connection failed", zap.Error(err))
	}
	defer clients.Close()

	if err := database.EnsureSchema(clients.Scylla); err != nil {
		zlog.Fatal("❌ Scylla schema", zap.Error(err))
	}

	orderRepo := store.NewOrderRepository(clients.Mongo)
	userRepo := store.NewUserRepository(clients.Mongo)
	if err := ensureIndexes(ctx, orderRepo, userRepo); err != nil {
		zlog.Fatal("❌ Mongo indexes", zap.Error(err))
	}

	redisCache := cache.New(clients.Redis)
	carts := store.NewListStore[models.CartItem](clients.Redis, store.KeyCart, cfg.Cart.TTL)
	wishlists := store.NewListStore[models.WishlistItem](clients.Redis, store.KeyWishlist, cfg.Cart.TTL)

	media := services.NewMediaService(clients.MinIO, cfg.MinIO.Bucket)
	search := services.NewSearchService(clients.Elastic, cfg.Elastic.Index)
	mailer := services.NewMailer(cfg.SMTP, cfg.App.FrontendURL, zlog)
	audit := services.NewAuditService(store.NewAuditRepository(clients.Scylla), zlog)

	var payments services.PaymentGateway
	if cfg.Stripe.Enabled() {
		payments = services.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.Currency)
		zlog.Info("✅ Stripe enabled")
	} else {
		zlog.Warn("⚠️ STRIPE_SECRET_KEY missing, card payments recorded without intent")
	}

	catalog := services.NewCatalogService(store.NewProductRepository(clients.Scylla), redisCache, media, search, zlog)
	cartSvc := services.NewCartService(carts, catalog, media)
	wishlistSvc := services.NewWishlistService(wishlists, catalog, media)
	commentSvc := services.NewCommentService(store.NewCommentRepository(clients.Scylla), catalog)
	checkoutSvc := services.NewCheckoutService(orderRepo, carts, payments, mailer, zlog)
	authSvc := services.NewAuthService(userRepo, redisCache, cfg.JWT.Secret, cfg.JWT.TTL, zlog)

	config.InitOAuthProviders(cfg, zlog)

	router := routes.NewRouter(routes.Deps{
		Config: cfg,
		Log:    zlog,
		Cache:  redisCache,
		Audit:  audit,
		Mailer: mailer,
		User: user.NewHandler(user.Deps{
			Auth:           authSvc,
			Cart:           cartSvc,
			Wishlist:       wishlistSvc,
			Checkout:       checkoutSvc,
			Audit:          audit,
			PubSub:         clients.Redis,
			AllowedOrigins: cfg.App.CORSOrigins,
			FrontendURL:    cfg.App.FrontendURL,
		}),
		Product: product.NewHandler(catalog, commentSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("🚀 Storefront server listening", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("❌ Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("❌ Graceful shutdown failed", zap.Error(err))
	}
}

func ensureIndexes(ctx context.Context, orders *store.OrderRepository, users *store.UserRepository) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := orders.EnsureIndexes(ctx); err != nil {
		return err
	}
	return users.EnsureIndexes(ctx)
}
