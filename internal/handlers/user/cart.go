package user

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/services"
)

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetCart retourne le panier agrégé, son total et son nombre de lignes.
func (h *Handler) GetCart(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	view, err := h.cart.Get(ctx, middleware.OwnerFromContext(c))
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to fetch cart", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddToCart ajoute un produit du catalogue au panier.
func (h *Handler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	ctx, cancel := handlers.Context(c)
	defer cancel()

	product, view, err := h.cart.Add(ctx, middleware.OwnerFromContext(c), req.ProductID, req.Quantity)
	if errors.Is(err, services.ErrProductNotFound) {
		handlers.Fail(c, http.StatusNotFound, "Product not found", err)
		return
	}
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to add product to cart", err)
		return
	}

	logger.FromContext(c).Info("🛒 added to cart", zap.String("product_id", product.ID))
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s has been added to your cart.", product.Name),
		"cart":    view,
	})
}

// UpdateCartQuantity fixe la quantité d'une ligne (>= 1).
func (h *Handler) UpdateCartQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Quantity must be at least 1", err)
		return
	}

	ctx, cancel := handlers.Context(c)
	defer cancel()

	view, err := h.cart.UpdateQuantity(ctx, middleware.OwnerFromContext(c), c.Param("productId"), req.Quantity)
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to update quantity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Quantity updated successfully",
		"cart":    view,
	})
}

// RemoveFromCart retire une ligne ; sans effet si elle n'existe pas.
func (h *Handler) RemoveFromCart(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	view, err := h.cart.Remove(ctx, middleware.OwnerFromContext(c), c.Param("productId"))
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to remove product from cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from cart successfully",
		"cart":    view,
	})
}

func (h *Handler) ClearCart(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	if err := h.cart.Clear(ctx, middleware.OwnerFromContext(c)); err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to clear cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
