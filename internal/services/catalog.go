package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/store"
)

// ProductRepository : source de vérité des produits.
type ProductRepository interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
}

// ProductGetter : lookup d'un produit par id (valeurs stockées, image brute).
type ProductGetter interface {
	Get(ctx context.Context, id string) (*models.Product, error)
}

type ImageResolver interface {
	ImageURL(ctx context.Context, image string) string
}

// ProductCache : cache JSON devant le repository.
type ProductCache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// durée max d'un chargement partagé, indépendante du premier appelant
const sharedLoadTimeout = 5 * time.Second

// CatalogService : lecture des produits avec cache Redis.
type CatalogService struct {
	repo   ProductRepository
	cache  ProductCache
	images ImageResolver
	search *SearchService
	log    *zap.Logger
	sfg    singleflight.Group // évite le stampede sur un produit populaire
}

func NewCatalogService(repo ProductRepository, c ProductCache, images ImageResolver, search *SearchService, log *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: c, images: images, search: search, log: log}
}

// Get retourne le produit tel que stocké. ErrProductNotFound s'il n'existe pas.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	key := cache.ProductKey(id)
	v, err := s.shared(ctx, key, func(ctx context.Context) (interface{}, error) {
		var cached models.Product
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("⚠️ product cache read failed", zap.String("product_id", id), zap.Error(err))
		}

		product, err := s.repo.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}

		if err := s.cache.SetJSON(ctx, key, product, cache.ProductCacheTTL); err != nil {
			s.log.Warn("⚠️ product cache write failed", zap.String("product_id", id), zap.Error(err))
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}

	product := *v.(*models.Product)
	return &product, nil
}

// shared exécute load une seule fois par clé pour tous les appelants
// concurrents. Le chargement ne dépend pas de l'annulation d'un appelant :
// chacun n'attend que tant que son propre ctx est vivant.
func (s *CatalogService) shared(ctx context.Context, key string, load func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := s.sfg.DoChan(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return load(lctx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Detail : comme Get, image prête à afficher.
func (s *CatalogService) Detail(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Image = s.imageURL(ctx, product.Image)
	return product, nil
}

// List retourne tous les produits (page d'accueil et /shop).
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	key := cache.ProductListKey()
	v, err := s.shared(ctx, key, func(ctx context.Context) (interface{}, error) {
		var cached []models.Product
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("⚠️ product list cache read failed", zap.Error(err))
		}

		products, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		if err := s.cache.SetJSON(ctx, key, products, cache.ProductListCacheTTL); err != nil {
			s.log.Warn("⚠️ product list cache write failed", zap.Error(err))
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return s.withImages(ctx, v.([]models.Product)), nil
}

// Search délègue à Elasticsearch.
func (s *CatalogService) Search(ctx context.Context, query string) ([]models.Product, error) {
	products, err := s.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.withImages(ctx, products), nil
}

func (s *CatalogService) withImages(ctx context.Context, products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	for i, p := range products {
		p.Image = s.imageURL(ctx, p.Image)
		out[i] = p
	}
	return out
}

func (s *CatalogService) imageURL(ctx context.Context, image string) string {
	if s.images == nil {
		return image
	}
	return s.images.ImageURL(ctx, image)
}
