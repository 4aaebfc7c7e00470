package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront_back_end/internal/store"
)

const (
	GuestHeader = "X-Guest-ID"
	GuestCookie = "guest_id"

	guestCookieMaxAge = 365 * 24 * 3600

	ctxOwner      = "owner"
	ctxGuestOwner = "guest_owner"
)

// Owner résout à qui appartient le stockage "navigateur" de la requête :
// l'utilisateur connecté, sinon le visiteur identifié par son guest id.
// Un guest id est créé (et posé en cookie) s'il n'y en a pas.
// À placer après OptionalAuth / AuthRequired.
func Owner(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := guestIDFromRequest(c)
		if guestID == "" {
			guestID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(GuestCookie, guestID, guestCookieMaxAge, "/", "", secureCookie, true)
		}
		c.Header(GuestHeader, guestID)
		c.Set(ctxGuestOwner, store.GuestOwner(guestID))

		if userID := c.GetString(ctxUserID); userID != "" {
			c.Set(ctxOwner, store.UserOwner(userID))
		} else {
			c.Set(ctxOwner, store.GuestOwner(guestID))
		}
		c.Next()
	}
}

func guestIDFromRequest(c *gin.Context) string {
	candidates := []string{c.GetHeader(GuestHeader)}
	if isWebsocket(c) {
		candidates = append(candidates, c.Query(GuestCookie))
	}
	if cookie, err := c.Cookie(GuestCookie); err == nil {
		candidates = append(candidates, cookie)
	}
	for _, candidate := range candidates {
		if _, err := uuid.Parse(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// OwnerFromContext retourne le propriétaire résolu par Owner.
func OwnerFromContext(c *gin.Context) string {
	return c.GetString(ctxOwner)
}

// GuestOwnerFromContext retourne le propriétaire invité de la requête, même
// si l'utilisateur est connecté (utile pour adopter le panier invité).
func GuestOwnerFromContext(c *gin.Context) string {
	return c.GetString(ctxGuestOwner)
}
