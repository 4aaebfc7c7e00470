package user

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validForm = map[string]any{"name": "Ada Lovelace", "address": "12 Analytical St", "paymentMethod": "paypal"}

func TestCheckout_RequiresLogin(t *testing.T) {
	ts := newTestServer(t)
	guest := newGuest()
	ts.do(t, request{method: http.MethodPost, path: "/api/cart", body: map[string]any{"productId": "p1"}, guest: guest})

	w := ts.do(t, request{method: http.MethodPost, path: "/api/orders/checkout", body: validForm, guest: guest})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "You must be logged in to place an order.", decode(t, w)["error"])
	orders, attempts := ts.orders.snapshot()
	assert.Empty(t, orders)
	assert.Zero(t, attempts)

	// panier intact
	w = ts.do(t, request{method: http.MethodGet, path: "/api/cart", guest: guest})
	assert.Equal(t, float64(1), decode(t, w)["count"])
}

func TestCheckout_WritesOneOrderPerLine(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, "u1")

	ts.do(t, request{method: http.MethodPost, path: "/api/cart", body: map[string]any{"productId": "p1", "quantity": 2}, token: token})
	ts.do(t, request{method: http.MethodPost, path: "/api/cart", body: map[string]any{"productId": "p2"}, token: token})
	ts.do(t, request{method: http.MethodPost, path: "/api/cart", body: map[string]any{"productId": "p1"}, token: token})

	w := ts.do(t, request{method: http.MethodPost, path: "/api/orders/checkout", body: validForm, token: token})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Your order has been placed successfully.", body["message"])
	assert.Equal(t, float64(35), body["total"])

	orders, _ := ts.orders.snapshot()
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, body["checkoutId"], o.CheckoutID)
		assert.Equal(t, "u1", o.BuyerID)
		assert.Equal(t, "paypal", o.PaymentMethod)
	}

	raw, err := ts.mr.Get("storefront:user:u1:cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	w = ts.do(t, request{method: http.MethodGet, path: "/api/orders", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["orders"], 2)

	w = ts.do(t, request{method: http.MethodGet, path: "/api/orders/" + orders[0].ID.Hex(), token: token})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, request{method: http.MethodGet, path: "/api/orders/" + orders[0].ID.Hex(), token: tokenFor(t, "u2")})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckout_FailedWriteKeepsCart(t *testing.T) {
	ts := newTestServer(t)
	ts.orders.failOn = "p2"
	token := tokenFor(t, "u1")

	ts.do(t, request{method: http.MethodPost, path: "/api/cart", body: map[string]any{"productId": "p1"}, token: token})
	ts.do(t, request{method: http.MethodPost, path: "/api/cart", body: map[string]any{"productId": "p2"}, token: token})

	w := ts.do(t, request{method: http.MethodPost, path: "/api/orders/checkout", body: validForm, token: token})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Error placing order: ")

	orders, attempts := ts.orders.snapshot()
	assert.Empty(t, orders)
	assert.Equal(t, 2, attempts)

	w = ts.do(t, request{method: http.MethodGet, path: "/api/cart", token: token})
	assert.Equal(t, float64(2), decode(t, w)["count"])
}

func TestCheckout_EmptyCart(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, request{method: http.MethodPost, path: "/api/orders/checkout", body: validForm, token: tokenFor(t, "u1")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Your cart is empty.", decode(t, w)["error"])
}

func TestCheckout_InvalidForm(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, "u1")
	ts.do(t, request{method: http.MethodPost, path: "/api/cart", body: map[string]any{"productId": "p1"}, token: token})

	w := ts.do(t, request{method: http.MethodPost, path: "/api/orders/checkout",
		body: map[string]any{"name": "Ada", "address": "x", "paymentMethod": "cash"}, token: token})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, attempts := ts.orders.snapshot()
	assert.Zero(t, attempts)
}

func TestOrders_RequireToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, request{method: http.MethodGet, path: "/api/orders"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
