package user

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/store"
)

const (
	pingPeriod = 30 * time.Second
	pongWait   = 2 * pingPeriod
	writeWait  = 10 * time.Second
)

// SyncWebSocket pousse au navigateur les modifications faites depuis un
// autre onglet : panier, wishlist et déconnexion.
func (h *Handler) SyncWebSocket(c *gin.Context) {
	if !requireUpgrade(c) {
		return
	}
	log := logger.FromContext(c)
	owner := middleware.OwnerFromContext(c)
	identity := middleware.IdentityFromContext(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("⚠️ websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	cartChannel := store.StorageKey(owner, store.KeyCart)
	wishlistChannel := store.StorageKey(owner, store.KeyWishlist)
	channels := []string{cartChannel, wishlistChannel}
	if identity != nil {
		channels = append(channels, store.StorageKey(owner, store.KeySession))
	}

	pubsub := h.pubsub.Subscribe(ctx, channels...)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Error("❌ sync subscribe failed", zap.String("owner", owner), zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		return
	}
	ch := pubsub.Channel()

	// Lecture : seulement pour les pongs et la détection de fermeture.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, gin.H{"type": "connected", "owner": owner, "loggedIn": identity != nil}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case msg, ok := <-ch:
			if !ok {
				return
			}
			switch msg.Channel {
			case cartChannel:
				view, err := h.cart.Get(ctx, owner)
				if err != nil {
					log.Warn("⚠️ sync cart read failed", zap.String("owner", owner), zap.Error(err))
					continue
				}
				err = h.write(conn, gin.H{"type": "cart_updated", "items": view.Items, "total": view.Total, "count": view.Count})
				if err != nil {
					return
				}
			case wishlistChannel:
				items, err := h.wishlist.Get(ctx, owner)
				if err != nil {
					log.Warn("⚠️ sync wishlist read failed", zap.String("owner", owner), zap.Error(err))
					continue
				}
				if err := h.write(conn, gin.H{"type": "wishlist_updated", "items": items, "count": len(items)}); err != nil {
					return
				}
			default:
				if msg.Payload != store.EventSignedOut {
					continue
				}
				_ = h.write(conn, gin.H{"type": "signed_out"})
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "signed out"),
					time.Now().Add(writeWait))
				return
			}
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, payload any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(payload)
}

// requireUpgrade refuse les appels HTTP classiques sur la route de sync.
func requireUpgrade(c *gin.Context) bool {
	if !websocket.IsWebSocketUpgrade(c.Request) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Websocket upgrade required"})
		return false
	}
	return true
}
