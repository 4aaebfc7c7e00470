package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/store"
	"storefront_back_end/internal/utils"
)

const testSecret = "test_secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	orders *fakeOrders
	users  *fakeUsers
	audit  *fakeAuditor
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := cache.New(rdb)
	carts := store.NewListStore[models.CartItem](rdb, store.KeyCart, time.Hour)
	wishlists := store.NewListStore[models.WishlistItem](rdb, store.KeyWishlist, time.Hour)
	products := fakeProducts{
		"p1": {ID: "p1", Name: "Sneaker", Price: 10, Brand: "Acme", SellerEmail: "seller@example.com"},
		"p2": {ID: "p2", Name: "Cap", Price: 5, Brand: "Acme", SellerEmail: "seller@example.com"},
	}
	catalog := services.NewCatalogService(products, c, nil, nil, zap.NewNop())

	ts := &testServer{
		mr:     mr,
		rdb:    rdb,
		orders: &fakeOrders{},
		users:  &fakeUsers{users: map[string]*models.User{}},
		audit:  &fakeAuditor{},
	}

	h := NewHandler(Deps{
		Auth:     services.NewAuthService(ts.users, c, testSecret, time.Hour, zap.NewNop()),
		Cart:     services.NewCartService(carts, catalog, nil),
		Wishlist: services.NewWishlistService(wishlists, catalog, nil),
		Checkout: services.NewCheckoutService(ts.orders, carts, nil, nil, zap.NewNop()),
		Audit:    ts.audit,
		PubSub:   rdb,
	})

	r := gin.New()
	api := r.Group("/api", middleware.OptionalAuth(testSecret, c), middleware.Owner(false))
	authRequired := middleware.AuthRequired(testSecret, c)
	api.GET("/cart", h.GetCart)
	api.POST("/cart", h.AddToCart)
	api.PUT("/cart/:productId", h.UpdateCartQuantity)
	api.DELETE("/cart/:productId", h.RemoveFromCart)
	api.DELETE("/cart", h.ClearCart)
	api.GET("/wishlist", h.GetWishlist)
	api.POST("/wishlist", h.AddToWishlist)
	api.DELETE("/wishlist/:productId", h.RemoveFromWishlist)
	api.DELETE("/wishlist", h.ClearWishlist)
	api.POST("/orders/checkout", h.Checkout)
	api.GET("/orders", authRequired, h.GetMyOrders)
	api.GET("/orders/:id", authRequired, h.GetOrderByID)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", authRequired, h.Logout)
	api.GET("/auth/me", authRequired, h.Me)
	api.GET("/session", h.GetSession)
	api.GET("/sync", h.SyncWebSocket)
	ts.router = r
	return ts
}

type request struct {
	method, path string
	body         any
	token        string
	guest        string
}

func (ts *testServer) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if req.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(req.body))
	}
	r := httptest.NewRequest(req.method, req.path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.guest != "" {
		r.Header.Set(middleware.GuestHeader, req.guest)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func tokenFor(t *testing.T, id string) string {
	t.Helper()
	token, err := utils.GenerateJWT(models.User{ID: id, Email: id + "@example.com", Name: "Ada"}, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

// --- fakes ---

type fakeProducts map[string]models.Product

func (f fakeProducts) Get(_ context.Context, id string) (*models.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f fakeProducts) List(_ context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(f))
	for _, p := range f {
		out = append(out, p)
	}
	return out, nil
}

type fakeOrders struct {
	mu       sync.Mutex
	orders   []models.Order
	failOn   string
	attempts int
}

func (f *fakeOrders) Create(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if order.ProductID == f.failOn {
		return errors.New("write failed")
	}
	order.ID = primitive.NewObjectID()
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrders) DeleteByCheckout(_ context.Context, checkoutID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.orders[:0]
	var n int64
	for _, o := range f.orders {
		if o.CheckoutID == checkoutID {
			n++
			continue
		}
		kept = append(kept, o)
	}
	f.orders = kept
	return n, nil
}

func (f *fakeOrders) ListByBuyer(_ context.Context, buyerID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Get(_ context.Context, buyerID, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID.Hex() == id && o.BuyerID == buyerID {
			return &o, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeOrders) snapshot() ([]models.Order, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Order(nil), f.orders...), f.attempts
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email && u.Provider == user.Provider {
			return store.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID().Hex()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email, provider string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.Provider == provider {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) FindOrCreateOAuth(ctx context.Context, provider, providerID, email, name string) (*models.User, error) {
	user := &models.User{Name: name, Email: email, Provider: provider, ProviderID: providerID}
	if err := f.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (f *fakeAuditor) Record(entry models.AuditLog) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeAuditor) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Action
	}
	return out
}

func newGuest() string { return uuid.NewString() }
