package models

// CartItem reprend les champs produit plus la quantité.
// Quantity vaut 0 quand l'entrée brute ne la précise pas : voir DefaultQuantity.
type CartItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	Quantity    int     `json:"quantity,omitempty"`
	SellerEmail string  `json:"sellerEmail,omitempty"`
}

// DefaultQuantity retourne la quantité effective d'une entrée (1 par défaut).
func (i CartItem) DefaultQuantity() int {
	if i.Quantity == 0 {
		return 1
	}
	return i.Quantity
}

// CartItemFromProduct crée une ligne de panier à partir d'un produit.
func CartItemFromProduct(p Product, quantity int) CartItem {
	return CartItem{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		Brand:       p.Brand,
		Quantity:    quantity,
		SellerEmail: p.SellerEmail,
	}
}

type CartView struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
	Count int        `json:"count"`
}
