package models

// Product est en lecture seule côté storefront.
type Product struct {
	ID          string  `json:"id" db:"product_id"`
	Name        string  `json:"name" db:"name"`
	Price       float64 `json:"price" db:"price"`
	Image       string  `json:"image" db:"image"`
	Description string  `json:"description" db:"description"`
	Brand       string  `json:"brand" db:"brand"`
	SellerEmail string  `json:"sellerEmail,omitempty" db:"seller_email"`
}
