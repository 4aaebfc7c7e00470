package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
)

// ProductRepository lit la table products (lecture seule côté boutique).
type ProductRepository struct {
	session *gocql.Session
}

func NewProductRepository(session *gocql.Session) *ProductRepository {
	return &ProductRepository{session: session}
}

const productColumns = `product_id, name, price, image, description, brand, seller_email`

func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).
		WithContext(ctx).
		Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Description, &p.Brand, &p.SellerEmail)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	iter := r.session.Query(`SELECT ` + productColumns + ` FROM products`).
		WithContext(ctx).
		PageSize(500).
		Iter()

	products := []models.Product{}
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Description, &p.Brand, &p.SellerEmail) {
		products = append(products, p)
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
