package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront_back_end/internal/logger"
)

// RequestTimeout borne les appels sortants d'un handler.
const RequestTimeout = 10 * time.Second

// Fail répond {"error": msg}, journalise err et l'attache au contexte gin
// (lu par le log de requête et l'audit).
func Fail(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		_ = c.Error(err)
		if status >= 500 {
			logger.FromContext(c).Error("❌ "+msg, zap.Error(err))
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// Context dérive un contexte borné de la requête.
func Context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), RequestTimeout)
}
