package product

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/services"
)

type commentRequest struct {
	Text string `json:"text" binding:"max=2000"`
}

func (h *Handler) ListComments(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	comments, err := h.comments.List(ctx, c.Param("id"))
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to fetch comments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// CreateComment publie un commentaire. La route accepte les visiteurs pour
// leur renvoyer un 401 explicite plutôt qu'un token manquant.
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Invalid comment", err)
		return
	}

	ctx, cancel := handlers.Context(c)
	defer cancel()

	comment, err := h.comments.Create(ctx, middleware.IdentityFromContext(c), c.Param("id"), req.Text)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUnauthenticated):
		handlers.Fail(c, http.StatusUnauthorized, "You must be logged in to comment.", err)
		return
	case errors.Is(err, services.ErrEmptyComment):
		handlers.Fail(c, http.StatusBadRequest, "Comment cannot be empty", err)
		return
	case errors.Is(err, services.ErrProductNotFound):
		handlers.Fail(c, http.StatusNotFound, "Product not found", err)
		return
	default:
		handlers.Fail(c, http.StatusInternalServerError, "Failed to add comment", err)
		return
	}

	c.Set(middleware.AuditResourceKey, comment.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added successfully!", "comment": comment})
}
