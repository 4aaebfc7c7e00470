package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/store"
)

const (
	msgLoginToOrder = "You must be logged in to place an order."
	msgOrderPlaced  = "Your order has been placed successfully."
)

// Checkout passe la commande du panier de l'utilisateur connecté. La route
// accepte les visiteurs : le refus est fait ici, avant toute écriture.
func (h *Handler) Checkout(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		handlers.Fail(c, http.StatusUnauthorized, msgLoginToOrder, services.ErrUnauthenticated)
		return
	}

	var form models.CheckoutForm
	if err := c.ShouldBindJSON(&form); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Please fill in your name, address and payment method.", err)
		return
	}

	ctx, cancel := handlers.Context(c)
	defer cancel()

	result, err := h.checkout.Checkout(ctx, identity, form)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUnauthenticated):
		handlers.Fail(c, http.StatusUnauthorized, msgLoginToOrder, err)
		return
	case errors.Is(err, services.ErrEmptyCart):
		handlers.Fail(c, http.StatusBadRequest, "Your cart is empty.", err)
		return
	case errors.Is(err, services.ErrInvalidForm):
		handlers.Fail(c, http.StatusBadRequest, err.Error(), err)
		return
	case errors.Is(err, services.ErrPaymentFailed):
		handlers.Fail(c, http.StatusPaymentRequired, "Error placing order: "+err.Error(), err)
		return
	default:
		handlers.Fail(c, http.StatusInternalServerError, "Error placing order: "+err.Error(), err)
		return
	}

	c.Set(middleware.AuditResourceKey, result.CheckoutID)
	c.JSON(http.StatusCreated, gin.H{
		"message":    msgOrderPlaced,
		"checkoutId": result.CheckoutID,
		"orders":     result.Orders,
		"total":      result.Total,
		"paymentId":  result.PaymentID,
	})
}

// GetMyOrders : commandes de l'utilisateur connecté, plus récentes d'abord.
func (h *Handler) GetMyOrders(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	orders, err := h.checkout.ListOrders(ctx, c.GetString("user_id"))
	if errors.Is(err, services.ErrUnauthenticated) {
		handlers.Fail(c, http.StatusUnauthorized, "Authentication required", err)
		return
	}
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to fetch orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderByID : uniquement si la commande appartient à l'utilisateur.
func (h *Handler) GetOrderByID(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	order, err := h.checkout.GetOrder(ctx, c.GetString("user_id"), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		handlers.Fail(c, http.StatusNotFound, "Order not found", err)
		return
	}
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to fetch order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}
