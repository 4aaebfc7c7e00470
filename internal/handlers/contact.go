package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/services"
)

// ContactSender envoie le formulaire de contact (*services.Mailer).
type ContactSender interface {
	Enabled() bool
	SendContact(ctx context.Context, contact models.ContactMessage) error
}

// Contact traite le formulaire de la page /contact.
func Contact(mailer ContactSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		if mailer == nil || !mailer.Enabled() {
			Fail(c, http.StatusServiceUnavailable, "Contact form is not available", services.ErrMailDisabled)
			return
		}

		var msg models.ContactMessage
		if err := c.ShouldBindJSON(&msg); err != nil {
			Fail(c, http.StatusBadRequest, "Please provide your name, a valid email and a message.", err)
			return
		}

		ctx, cancel := Context(c)
		defer cancel()

		if err := mailer.SendContact(ctx, msg); err != nil {
			if errors.Is(err, services.ErrMailDisabled) {
				Fail(c, http.StatusServiceUnavailable, "Contact form is not available", err)
				return
			}
			Fail(c, http.StatusBadGateway, "Your message could not be sent, please try again later.", err)
			return
		}

		logger.FromContext(c).Info("📨 contact message sent", zap.String("from", msg.Email))
		c.JSON(http.StatusOK, gin.H{"message": "Thank you, your message has been sent."})
	}
}

// Health répond pour les sondes de disponibilité.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
