// Commande reindex : recopie tous les produits ScyllaDB dans l'index
// Elasticsearch utilisé par /api/products/search.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"storefront_back_end/internal/config"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/logger"
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

	if !cfg.Elastic.Enabled() {
		zlog.Fatal("❌ ELASTIC_URL is required to reindex")
	}

	session, err := database.ConnectScylla(cfg.Scylla)
	if err != nil {
		zlog.Fatal("❌ ScyllaDB connection failed", zap.Error(err))
	}
	defer session.Close()

	es, err := database.ConnectElastic(cfg.Elastic)
	if err != nil {
		zlog.Fatal("❌ Elasticsearch connection failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	products, err := store.NewProductRepository(session).List(ctx)
	if err != nil {
		zlog.Fatal("❌ Failed to read products", zap.Error(err))
	}

	failed, err := services.NewSearchService(es, cfg.Elastic.Index).IndexProducts(ctx, products)
	if err != nil {
		zlog.Fatal("❌ Bulk indexing failed", zap.Error(err))
	}

	zlog.Info("✅ Reindex done",
		zap.Int("products", len(products)),
		zap.Int("failed", failed),
		zap.String("index", cfg.Elastic.Index),
		zap.Duration("took", time.Since(start)),
	)
}
