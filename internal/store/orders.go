package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront_back_end/internal/models"
)

// OrderRepository : collection "orders", un document par ligne commandée.
type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection("orders")}
}

// EnsureIndexes crée les index de lecture (acheteur, checkout).
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "checkout_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("orders indexes: %w", err)
	}
	return nil
}

// Create insère la commande et renseigne son ID.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// DeleteByCheckout supprime toutes les lignes d'un checkout.
func (r *OrderRepository) DeleteByCheckout(ctx context.Context, checkoutID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"checkout_id": checkoutID})
	if err != nil {
		return 0, fmt.Errorf("delete checkout %s: %w", checkoutID, err)
	}
	return res.DeletedCount, nil
}

// ListByBuyer : plus récentes d'abord.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"buyer_id": buyerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// Get ne retourne la commande que si elle appartient à buyerID.
func (r *OrderRepository) Get(ctx context.Context, buyerID, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var order models.Order
	err = r.coll.FindOne(ctx, bson.M{"_id": oid, "buyer_id": buyerID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	return &order, nil
}
