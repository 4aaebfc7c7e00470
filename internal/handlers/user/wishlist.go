package user

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/services"
)

func (h *Handler) GetWishlist(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	items, err := h.wishlist.Get(ctx, middleware.OwnerFromContext(c))
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to fetch wishlist", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *Handler) AddToWishlist(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	ctx, cancel := handlers.Context(c)
	defer cancel()

	product, items, err := h.wishlist.Add(ctx, middleware.OwnerFromContext(c), req.ProductID)
	if errors.Is(err, services.ErrProductNotFound) {
		handlers.Fail(c, http.StatusNotFound, "Product not found", err)
		return
	}
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to add product to wishlist", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s has been added to your wishlist.", product.Name),
		"items":   items,
	})
}

// RemoveFromWishlist est idempotent.
func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	items, err := h.wishlist.Remove(ctx, middleware.OwnerFromContext(c), c.Param("productId"))
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to remove product from wishlist", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from wishlist successfully",
		"items":   items,
	})
}

func (h *Handler) ClearWishlist(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	if err := h.wishlist.Clear(ctx, middleware.OwnerFromContext(c)); err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to clear wishlist", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wishlist cleared"})
}
