package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order : une ligne de panier commandée. Écrit une seule fois.
type Order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CheckoutID string             `bson:"checkout_id" json:"checkoutId"`

	ProductID    string  `bson:"product_id" json:"productId"`
	ProductName  string  `bson:"product_name" json:"productName"`
	ProductPrice float64 `bson:"product_price" json:"productPrice"`
	ProductImage string  `bson:"product_image,omitempty" json:"productImage,omitempty"`
	Brand        string  `bson:"brand,omitempty" json:"brand,omitempty"`
	Quantity     int     `bson:"quantity" json:"quantity"`
	SellerEmail  string  `bson:"seller_email" json:"sellerEmail"`

	BuyerID    string `bson:"buyer_id" json:"buyerId"`
	BuyerEmail string `bson:"buyer_email" json:"buyerEmail"`

	Name          string `bson:"name" json:"name"`
	Address       string `bson:"address" json:"address"`
	PaymentMethod string `bson:"payment_method" json:"paymentMethod"`
	PaymentID     string `bson:"payment_id,omitempty" json:"paymentId,omitempty"`

	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Payment methods acceptés par le formulaire de commande.
const (
	PaymentCreditCard = "creditCard"
	PaymentPaypal     = "paypal"
)

// CheckoutForm : champs saisis dans la modale de commande.
type CheckoutForm struct {
	Name          string `json:"name" binding:"required"`
	Address       string `json:"address" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required,oneof=creditCard paypal"`
}

type CheckoutResult struct {
	CheckoutID string  `json:"checkoutId"`
	Orders     []Order `json:"orders"`
	Total      float64 `json:"total"`
	PaymentID  string  `json:"paymentId,omitempty"`
}
