package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
)

// stripeStub redirige le SDK vers un serveur local le temps du test.
func stripeStub(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		EnableTelemetry:   stripe.Bool(false),
	}))
	t.Cleanup(func() { stripe.SetBackend(stripe.APIBackend, nil) })
}

func TestStripeGateway_CreateIntent(t *testing.T) {
	seen := make(chan [2]string, 1)
	stripeStub(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		seen <- [2]string{r.Header.Get("Idempotency-Key"), r.PostForm.Get("amount")}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_test","object":"payment_intent"}`))
	})

	id, err := NewStripeGateway("sk_test_x", "eur").CreateIntent(context.Background(), "c1", 12.5, nil)
	require.NoError(t, err)
	assert.Equal(t, "pi_test", id)
	got := <-seen
	assert.Equal(t, "checkout-c1", got[0])
	assert.Equal(t, "1250", got[1])
}

func TestStripeGateway_CreateIntentHonoursContext(t *testing.T) {
	calls := make(chan struct{}, 1)
	stripeStub(t, func(w http.ResponseWriter, r *http.Request) {
		calls <- struct{}{}
		_, _ = w.Write([]byte(`{"id":"pi_late"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStripeGateway("sk_test_x", "eur").CreateIntent(ctx, "c2", 3, nil)
	require.Error(t, err)
	assert.Empty(t, calls)
}
