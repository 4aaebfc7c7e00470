package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/models"
)

// GetSession : état affiché par l'en-tête du site (connexion, compteurs).
func (h *Handler) GetSession(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	owner := middleware.OwnerFromContext(c)

	var (
		cart     *models.CartView
		wishlist []models.WishlistItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cart, err = h.cart.Get(gctx, owner)
		return err
	})
	g.Go(func() (err error) {
		wishlist, err = h.wishlist.Get(gctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to load session", err)
		return
	}

	resp := gin.H{
		"loggedIn":      false,
		"user":          nil,
		"cartCount":     cart.Count,
		"wishlistCount": len(wishlist),
	}
	if identity := middleware.IdentityFromContext(c); identity != nil {
		resp["loggedIn"] = true
		resp["user"] = identity
	}
	c.JSON(http.StatusOK, resp)
}
