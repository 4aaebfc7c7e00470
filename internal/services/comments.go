package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront_back_end/internal/models"
)

type CommentRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
}

const anonymousName = "Anonymous"

type CommentService struct {
	repo    CommentRepository
	catalog ProductGetter
	now     func() time.Time
}

func NewCommentService(repo CommentRepository, catalog ProductGetter) *CommentService {
	return &CommentService{repo: repo, catalog: catalog, now: time.Now}
}

// List : commentaires du produit, du plus ancien au plus récent.
func (s *CommentService) List(ctx context.Context, productID string) ([]models.Comment, error) {
	comments, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Create publie un commentaire au nom de identity. La date est fixée une
// seule fois ici : la valeur stockée est celle retournée.
func (s *CommentService) Create(ctx context.Context, identity *models.Identity, productID, text string) (*models.Comment, error) {
	if identity == nil || identity.UserID == "" {
		return nil, ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ProductID: productID,
		Text:      text,
		UserID:    identity.UserID,
		UserName:  displayName(identity),
		Email:     identity.Email,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func displayName(identity *models.Identity) string {
	if name := strings.TrimSpace(identity.DisplayName); name != "" {
		return name
	}
	if identity.Email != "" {
		return identity.Email
	}
	return anonymousName
}
