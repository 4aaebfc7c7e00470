package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/store"
)

type testEnv struct {
	mr       *miniredis.Miniredis
	rdb      *redis.Client
	cache    *cache.Cache
	cart     *store.ListStore[models.CartItem]
	wishlist *store.ListStore[models.WishlistItem]
	products *fakeProducts
	catalog  *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	products := newFakeProducts(
		models.Product{ID: "1", Name: "Sneaker", Price: 10, Brand: "Acme", Image: "https://cdn.example.com/1.png"},
		models.Product{ID: "2", Name: "Cap", Price: 5, Brand: "Acme", Image: "images/cap.png"},
	)
	c := cache.New(rdb)

	return &testEnv{
		mr:       mr,
		rdb:      rdb,
		cache:    c,
		cart:     store.NewListStore[models.CartItem](rdb, store.KeyCart, time.Hour),
		wishlist: store.NewListStore[models.WishlistItem](rdb, store.KeyWishlist, time.Hour),
		products: products,
		catalog:  NewCatalogService(products, c, nil, nil, zap.NewNop()),
	}
}

// --- produits ---

type fakeProducts struct {
	mu    sync.Mutex
	items map[string]models.Product
	calls int
	err   error

	// block retient Get jusqu'à sa fermeture (ou l'annulation du ctx)
	block chan struct{}
}

func newFakeProducts(products ...models.Product) *fakeProducts {
	f := &fakeProducts{items: map[string]models.Product{}}
	for _, p := range products {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProducts) List(_ context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProducts) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// --- commandes ---

type fakeOrders struct {
	mu       sync.Mutex
	orders   []models.Order
	failOn   string // product id dont l'écriture échoue
	attempts int

	// duringWrite est appelé une fois, pendant la première écriture
	duringWrite func()
	once        sync.Once
}

var errWriteFailed = errors.New("write failed")

func (f *fakeOrders) Create(_ context.Context, order *models.Order) error {
	if f.duringWrite != nil {
		f.once.Do(f.duringWrite)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if order.ProductID == f.failOn {
		return errWriteFailed
	}
	order.ID = primitive.NewObjectID()
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrders) DeleteByCheckout(_ context.Context, checkoutID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.orders[:0]
	var deleted int64
	for _, o := range f.orders {
		if o.CheckoutID == checkoutID {
			deleted++
			continue
		}
		kept = append(kept, o)
	}
	f.orders = kept
	return deleted, nil
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

func (f *fakeOrders) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeOrders) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

// --- paiement ---

type fakeGateway struct {
	id    string
	err   error
	total float64
	calls int
}

func (g *fakeGateway) CreateIntent(_ context.Context, _ string, total float64, _ map[string]string) (string, error) {
	g.calls++
	g.total = total
	return g.id, g.err
}

// --- commentaires ---

type fakeComments struct {
	mu       sync.Mutex
	comments []models.Comment
}

func (f *fakeComments) ListByProduct(_ context.Context, productID string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.comments {
		if c.ProductID == productID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) Create(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID().Hex()
	f.comments = append(f.comments, *c)
	return nil
}

// --- utilisateurs ---

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]*models.User{}} }

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email && u.Provider == user.Provider {
			return store.ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
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
	f.mu.Lock()
	for _, u := range f.users {
		if u.Provider == provider && u.ProviderID == providerID {
			cp := *u
			f.mu.Unlock()
			return &cp, nil
		}
	}
	f.mu.Unlock()
	user := &models.User{Name: name, Email: email, Provider: provider, ProviderID: providerID}
	if err := f.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
