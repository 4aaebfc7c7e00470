package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
)

// Actions d'audit
const (
	ActionOrderCreate   = "order.create"
	ActionCommentCreate = "comment.create"
	ActionUserCreate    = "user.create"
	ActionLoginSuccess  = "auth.login_success"
	ActionLoginFailed   = "auth.login_failed"
	ActionLogout        = "auth.logout"
)

// Ressources d'audit
const (
	ResourceOrder   = "order"
	ResourceComment = "comment"
	ResourceUser    = "user"
	ResourceAuth    = "auth"
)

// NewAuditLog construit une entrée à partir de la requête en cours.
// user_id et email sont ceux posés par le middleware JWT, s'il y en a.
func NewAuditLog(c *gin.Context, action, resource, resourceID string, err error) models.AuditLog {
	entry := models.AuditLog{
		ID:         gocql.TimeUUID(),
		UserID:     c.GetString("user_id"),
		UserEmail:  c.GetString("email"),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Success:    err == nil,
		Timestamp:  time.Now().UTC(),
	}
	if err != nil {
		entry.ErrorMsg = err.Error()
	}
	return entry
}
