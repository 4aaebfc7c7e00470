package services

import (
	"context"
	"fmt"

	"storefront_back_end/internal/models"
)

type WishlistStore interface {
	Load(ctx context.Context, owner string) ([]models.WishlistItem, error)
	Update(ctx context.Context, owner string, fn func([]models.WishlistItem) ([]models.WishlistItem, error)) ([]models.WishlistItem, error)
	Clear(ctx context.Context, owner string) error
	Adopt(ctx context.Context, from, to string) ([]models.WishlistItem, error)
}

// WishlistService : liste de produits indexée par id, sans quantité.
type WishlistService struct {
	store   WishlistStore
	catalog ProductGetter
	images  ImageResolver
}

func NewWishlistService(store WishlistStore, catalog ProductGetter, images ImageResolver) *WishlistService {
	return &WishlistService{store: store, catalog: catalog, images: images}
}

func (s *WishlistService) view(ctx context.Context, items []models.WishlistItem) []models.WishlistItem {
	out := dedupeWishlist(items)
	if s.images != nil {
		for i := range out {
			out[i].Image = s.images.ImageURL(ctx, out[i].Image)
		}
	}
	return out
}

func (s *WishlistService) Get(ctx context.Context, owner string) ([]models.WishlistItem, error) {
	items, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	return s.view(ctx, items), nil
}

// Add est sans effet si le produit est déjà dans la liste.
func (s *WishlistService) Add(ctx context.Context, owner, productID string) (*models.Product, []models.WishlistItem, error) {
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.Update(ctx, owner, func(items []models.WishlistItem) ([]models.WishlistItem, error) {
		for _, item := range items {
			if item.ID == product.ID {
				return items, nil
			}
		}
		return append(items, models.WishlistItemFromProduct(*product)), nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("add to wishlist: %w", err)
	}
	return product, s.view(ctx, items), nil
}

// Remove est idempotent.
func (s *WishlistService) Remove(ctx context.Context, owner, productID string) ([]models.WishlistItem, error) {
	items, err := s.store.Update(ctx, owner, func(items []models.WishlistItem) ([]models.WishlistItem, error) {
		out := make([]models.WishlistItem, 0, len(items))
		for _, item := range items {
			if item.ID != productID {
				out = append(out, item)
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove from wishlist: %w", err)
	}
	return s.view(ctx, items), nil
}

func (s *WishlistService) Clear(ctx context.Context, owner string) error {
	if err := s.store.Clear(ctx, owner); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	return nil
}

// Adopt fusionne la liste invitée dans celle du compte (doublons retirés).
func (s *WishlistService) Adopt(ctx context.Context, guest, user string) ([]models.WishlistItem, error) {
	items, err := s.store.Adopt(ctx, guest, user)
	if err != nil {
		return nil, fmt.Errorf("adopt wishlist: %w", err)
	}
	return s.view(ctx, items), nil
}

func dedupeWishlist(items []models.WishlistItem) []models.WishlistItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.WishlistItem, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
