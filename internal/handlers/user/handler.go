package user

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/services"
)

// Subscriber ouvre un abonnement pub/sub (un *redis.Client convient).
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// Handler regroupe les routes de l'espace client : compte, panier,
// wishlist, commandes, session et synchronisation temps réel.
type Handler struct {
	auth     *services.AuthService
	cart     *services.CartService
	wishlist *services.WishlistService
	checkout *services.CheckoutService
	audit    middleware.Auditor
	pubsub   Subscriber
	upgrader websocket.Upgrader

	frontendURL string
}

// Deps regroupe les dépendances du Handler.
type Deps struct {
	Auth           *services.AuthService
	Cart           *services.CartService
	Wishlist       *services.WishlistService
	Checkout       *services.CheckoutService
	Audit          middleware.Auditor
	PubSub         Subscriber
	AllowedOrigins []string
	FrontendURL    string
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		auth:        d.Auth,
		cart:        d.Cart,
		wishlist:    d.Wishlist,
		checkout:    d.Checkout,
		audit:       d.Audit,
		pubsub:      d.PubSub,
		frontendURL: strings.TrimRight(d.FrontendURL, "/"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(d.AllowedOrigins),
		},
	}
}

// originChecker n'accepte que les origines CORS configurées ; sans liste,
// tout est accepté (développement).
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}
