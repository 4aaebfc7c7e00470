package store

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
)

type AuditRepository struct {
	session *gocql.Session
}

func NewAuditRepository(session *gocql.Session) *AuditRepository {
	return &AuditRepository{session: session}
}

func (r *AuditRepository) Insert(ctx context.Context, entry models.AuditLog) error {
	err := r.session.Query(`INSERT INTO audit_logs
		(id, user_id, user_email, action, resource, resource_id, ip_address, user_agent, success, error_msg, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.UserEmail, entry.Action, entry.Resource, entry.ResourceID,
		entry.IPAddress, entry.UserAgent, entry.Success, entry.ErrorMsg, entry.Timestamp).
		WithContext(ctx).
		Exec()
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
