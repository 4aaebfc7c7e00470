package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/store"
	"storefront_back_end/internal/utils"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Invalid registration data", err)
		return
	}

	ctx, cancel := handlers.Context(c)
	defer cancel()

	result, err := h.auth.Register(ctx, req.Name, req.Email, req.Password)
	if errors.Is(err, services.ErrEmailTaken) {
		handlers.Fail(c, http.StatusConflict, "An account with this email already exists", err)
		return
	}
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	c.Set(middleware.AuditResourceKey, result.User.ID)
	c.JSON(http.StatusCreated, h.signedIn(c, result))
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Email and password are required", err)
		return
	}

	ctx, cancel := handlers.Context(c)
	defer cancel()

	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		entry := utils.NewAuditLog(c, utils.ActionLoginFailed, utils.ResourceAuth, "", err)
		entry.UserEmail = req.Email
		h.audit.Record(entry)

		if errors.Is(err, services.ErrInvalidCredentials) {
			handlers.Fail(c, http.StatusUnauthorized, "Invalid email or password", err)
			return
		}
		handlers.Fail(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	entry := utils.NewAuditLog(c, utils.ActionLoginSuccess, utils.ResourceAuth, result.User.ID, nil)
	entry.UserID, entry.UserEmail = result.User.ID, result.User.Email
	h.audit.Record(entry)

	c.JSON(http.StatusOK, h.signedIn(c, result))
}

// signedIn rattache le panier et la wishlist invités au compte puis
// construit la réponse de connexion.
func (h *Handler) signedIn(c *gin.Context, result *services.AuthResult) gin.H {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	log := logger.FromContext(c)
	guest := middleware.GuestOwnerFromContext(c)
	owner := store.UserOwner(result.User.ID)

	resp := gin.H{
		"token": result.Token,
		"user":  result.User,
	}
	if cart, err := h.cart.Adopt(ctx, guest, owner); err != nil {
		log.Warn("⚠️ guest cart not adopted", zap.String("user_id", result.User.ID), zap.Error(err))
	} else {
		resp["cart"] = cart
	}
	if items, err := h.wishlist.Adopt(ctx, guest, owner); err != nil {
		log.Warn("⚠️ guest wishlist not adopted", zap.String("user_id", result.User.ID), zap.Error(err))
	} else {
		resp["wishlist"] = items
	}
	return resp
}

// Logout révoque le token courant et déconnecte les autres onglets.
func (h *Handler) Logout(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	if err := h.auth.Logout(ctx, middleware.ClaimsFromContext(c)); err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			handlers.Fail(c, http.StatusUnauthorized, "Authentication required", err)
			return
		}
		handlers.Fail(c, http.StatusInternalServerError, "Logout failed", err)
		return
	}
	c.Set(middleware.AuditResourceKey, c.GetString("user_id"))
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *Handler) Me(c *gin.Context) {
	ctx, cancel := handlers.Context(c)
	defer cancel()

	user, err := h.auth.Me(ctx, c.GetString("user_id"))
	if errors.Is(err, store.ErrNotFound) {
		handlers.Fail(c, http.StatusNotFound, "Account not found", err)
		return
	}
	if err != nil {
		handlers.Fail(c, http.StatusInternalServerError, "Failed to fetch account", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
