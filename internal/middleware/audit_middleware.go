package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/utils"
)

// AuditResourceKey : le handler y pose l'id de la ressource créée.
const AuditResourceKey = "audit_resource_id"

// Auditor enregistre une entrée d'audit (en arrière-plan).
type Auditor interface {
	Record(entry models.AuditLog)
}

// AuditAction audite l'action après le handler : succès si 2xx, sinon
// échec avec la dernière erreur attachée au contexte.
func AuditAction(auditor Auditor, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		resourceID := c.GetString(AuditResourceKey)
		if resourceID == "" {
			resourceID = c.Param("id")
		}

		var err error
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			} else {
				err = fmt.Errorf("status %d", status)
			}
		}
		auditor.Record(utils.NewAuditLog(c, action, resource, resourceID, err))
	}
}
