package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront_back_end/internal/models"
)

// CartStore : stockage de la liste brute du panier par propriétaire.
type CartStore interface {
	Load(ctx context.Context, owner string) ([]models.CartItem, error)
	Update(ctx context.Context, owner string, fn func([]models.CartItem) ([]models.CartItem, error)) ([]models.CartItem, error)
	Clear(ctx context.Context, owner string) error
	Adopt(ctx context.Context, from, to string) ([]models.CartItem, error)
	Take(ctx context.Context, owner string) ([]models.CartItem, error)
	Prepend(ctx context.Context, owner string, items []models.CartItem) ([]models.CartItem, error)
}

// AggregateCart fusionne les entrées de même id : une ligne par produit,
// quantités additionnées (1 par défaut), dans l'ordre de première apparition.
func AggregateCart(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.DefaultQuantity()
			continue
		}
		item.Quantity = item.DefaultQuantity()
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// SetQuantity remplace la quantité de la ligne id. Id absent : liste inchangée.
func SetQuantity(items []models.CartItem, id string, quantity int) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == id {
			out[i].Quantity = quantity
		}
	}
	return out
}

// RemoveByID retire toutes les lignes id (idempotent).
func RemoveByID(items []models.CartItem, id string) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// CartTotal = Σ prix × quantité, arrondi au centime.
func CartTotal(items []models.CartItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.DefaultQuantity())))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}

type CartService struct {
	store   CartStore
	catalog ProductGetter
	images  ImageResolver
}

// NewCartService : images peut être nil (images servies telles que stockées).
func NewCartService(store CartStore, catalog ProductGetter, images ImageResolver) *CartService {
	return &CartService{store: store, catalog: catalog, images: images}
}

// view construit la réponse ; les images sont résolues sur une copie, la
// liste stockée garde les valeurs d'origine.
func (s *CartService) view(ctx context.Context, items []models.CartItem) *models.CartView {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	if s.images != nil {
		for i := range out {
			out[i].Image = s.images.ImageURL(ctx, out[i].Image)
		}
	}
	return &models.CartView{
		Items: out,
		Total: CartTotal(out),
		Count: len(out),
	}
}

// Get retourne le panier agrégé, son total et son nombre de lignes.
func (s *CartService) Get(ctx context.Context, owner string) (*models.CartView, error) {
	items, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return s.view(ctx, AggregateCart(items)), nil
}

// Add ajoute une entrée brute ; les doublons sont fusionnés à la lecture.
// quantity 0 vaut 1.
func (s *CartService) Add(ctx context.Context, owner, productID string, quantity int) (*models.Product, *models.CartView, error) {
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	entry := models.CartItemFromProduct(*product, quantity)
	items, err := s.store.Update(ctx, owner, func(items []models.CartItem) ([]models.CartItem, error) {
		return append(items, entry), nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("add to cart: %w", err)
	}
	return product, s.view(ctx, AggregateCart(items)), nil
}

// UpdateQuantity fixe la quantité d'une ligne et persiste la liste agrégée.
func (s *CartService) UpdateQuantity(ctx context.Context, owner, productID string, quantity int) (*models.CartView, error) {
	return s.mutate(ctx, owner, func(items []models.CartItem) []models.CartItem {
		return SetQuantity(items, productID, quantity)
	})
}

// Remove retire le produit du panier ; sans effet s'il n'y est pas.
func (s *CartService) Remove(ctx context.Context, owner, productID string) (*models.CartView, error) {
	return s.mutate(ctx, owner, func(items []models.CartItem) []models.CartItem {
		return RemoveByID(items, productID)
	})
}

func (s *CartService) Clear(ctx context.Context, owner string) error {
	if err := s.store.Clear(ctx, owner); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Adopt rattache le panier invité au compte connecté.
func (s *CartService) Adopt(ctx context.Context, guest, user string) (*models.CartView, error) {
	items, err := s.store.Adopt(ctx, guest, user)
	if err != nil {
		return nil, fmt.Errorf("adopt cart: %w", err)
	}
	return s.view(ctx, AggregateCart(items)), nil
}

func (s *CartService) mutate(ctx context.Context, owner string, fn func([]models.CartItem) []models.CartItem) (*models.CartView, error) {
	items, err := s.store.Update(ctx, owner, func(items []models.CartItem) ([]models.CartItem, error) {
		return fn(AggregateCart(items)), nil
	})
	if err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return s.view(ctx, items), nil
}
