package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/utils"
)

// Clés posées dans le contexte gin.
const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxName   = "name"
	ctxClaims = "claims"

	accessTokenParam = "access_token"
)

// TokenChecker indique si un token a été révoqué (logout).
type TokenChecker interface {
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// AuthRequired exige un Bearer token valide et non révoqué.
func AuthRequired(secret string, tokens TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or malformed token"})
			return
		}

		claims, status, msg := authenticate(c, tokenString, secret, tokens)
		if claims == nil {
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth renseigne l'identité si un token valide est présent, sans
// jamais rejeter la requête : les visiteurs gardent un panier invité.
func OptionalAuth(secret string, tokens TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, _, _ := authenticate(c, tokenString, secret, tokens); claims != nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// bearerToken lit le header Authorization. Les navigateurs ne pouvant pas
// poser de header sur un websocket, le token peut alors passer en query.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if isWebsocket(c) {
			if token := strings.TrimSpace(c.Query(accessTokenParam)); token != "" {
				return token, true
			}
		}
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func isWebsocket(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func authenticate(c *gin.Context, tokenString, secret string, tokens TokenChecker) (*utils.Claims, int, string) {
	log := logger.FromContext(c)

	claims, err := utils.ParseJWT(tokenString, secret)
	if err != nil {
		log.Debug("invalid token", zap.Error(err))
		return nil, http.StatusUnauthorized, "Invalid token"
	}

	if tokens != nil && claims.ID != "" {
		revoked, err := tokens.IsTokenBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error("❌ token blacklist check failed", zap.Error(err))
			return nil, http.StatusServiceUnavailable, "Authentication temporarily unavailable"
		}
		if revoked {
			return nil, http.StatusUnauthorized, "Token has been revoked"
		}
	}
	return claims, 0, ""
}

func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxName, claims.Name)
	c.Set(ctxClaims, claims)
}

// IdentityFromContext retourne l'utilisateur connecté, nil pour un visiteur.
func IdentityFromContext(c *gin.Context) *models.Identity {
	if claims := ClaimsFromContext(c); claims != nil {
		return claims.Identity()
	}
	return nil
}

func ClaimsFromContext(c *gin.Context) *utils.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*utils.Claims); ok {
			return claims
		}
	}
	return nil
}
