package product

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/services"
)

// Handler expose le catalogue (lecture seule) et les commentaires produits.
type Handler struct {
	catalog  *services.CatalogService
	comments *services.CommentService
}

func NewHandler(catalog *services.CatalogService, comments *services.CommentService) *Handler {
	return &Handler{catalog: catalog, comments: comments}
}

// ListProducts alimente les pages / et /shop.
func (h *Handler) ListProducts(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	products, err := h.catalog.List(ctx)
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to fetch products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *Handler) GetProduct(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	product, err := h.catalog.Detail(ctx, c.Param("id"))
	if errors.Is(err, services.ErrProductNotFound) {
		handlers.Fail(c, http.StatusNotFound, "Product not found", err)
		return
	}
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to fetch product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// SearchProducts : recherche plein texte, ?q= obligatoire.
func (h *Handler) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		handlers.Fail(c, http.StatusBadRequest, "Query parameter 'q' is required", nil)
		return
	}

	ctx, cancel := handlers.Context(c)
	defer cancel()

	products, err := h.catalog.Search(ctx, query)
	if errors.Is(err, services.ErrSearchDisabled) {
		handlers.Fail(c, http.StatusServiceUnavailable, "Search is not available", err)
		return
	}
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Search failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products), "query": query})
}
