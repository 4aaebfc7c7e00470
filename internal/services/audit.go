package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront_back_end/internal/models"
)

type AuditRepository interface {
	Insert(ctx context.Context, entry models.AuditLog) error
}

// AuditService enregistre les logs d'audit en arrière-plan : une panne de
// ScyllaDB ne bloque pas la requête.
type AuditService struct {
	repo AuditRepository
	log  *zap.Logger
}

func NewAuditService(repo AuditRepository, log *zap.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

func (s *AuditService) Record(entry models.AuditLog) {
	if s == nil || s.repo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Insert(ctx, entry); err != nil {
			s.log.Error("❌ audit log insert failed",
				zap.String("action", entry.Action),
				zap.String("resource_id", entry.ResourceID),
				zap.Error(err))
		}
	}()
}
