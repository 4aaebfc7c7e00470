package user

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"go.uber.org/zap"

	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/utils"
)

// withProvider recopie le provider de la route dans la query, où gothic
// le lit.
func withProvider(c *gin.Context) bool {
	provider := c.Param("provider")
	if provider == "" {
		handlers.Fail(c, http.StatusBadRequest, "No provider specified", nil)
		return false
	}
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	return true
}

// BeginOAuth redirige vers le provider (google, facebook).
func (h *Handler) BeginOAuth(c *gin.Context) {
	if !withProvider(c) {
		return
	}
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// OAuthCallback termine la connexion sociale puis renvoie le navigateur
// vers FRONTEND_URL/login?token=... ; le panier invité est rattaché.
func (h *Handler) OAuthCallback(c *gin.Context) {
	if !withProvider(c) {
		return
	}
	log := logger.FromContext(c)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Warn("⚠️ oauth callback failed", zap.String("provider", c.Param("provider")), zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error=oauth_failed")
		return
	}

	ctx, cancel := handlers.Context(c)
	defer cancel()

	result, err := h.auth.LoginOAuth(ctx, gothUser.Provider, gothUser.UserID, gothUser.Email, gothUser.Name)
	if err != nil {
		entry := utils.NewAuditLog(c, utils.ActionLoginFailed, utils.ResourceAuth, "", err)
		entry.UserEmail = gothUser.Email
		h.audit.Record(entry)
		log.Error("❌ oauth sign-in failed", zap.String("provider", gothUser.Provider), zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error=oauth_failed")
		return
	}

	entry := utils.NewAuditLog(c, utils.ActionLoginSuccess, utils.ResourceAuth, result.User.ID, nil)
	entry.UserID, entry.UserEmail = result.User.ID, result.User.Email
	h.audit.Record(entry)

	h.signedIn(c, result)
	_ = gothic.Logout(c.Writer, c.Request)

	target := h.frontendURL + "/login?" + url.Values{"token": {result.Token}}.Encode()
	c.Redirect(http.StatusTemporaryRedirect, target)
}
