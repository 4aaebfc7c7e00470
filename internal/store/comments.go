package store

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
)

// CommentRepository : commentaires partitionnés par produit, triés par date.
type CommentRepository struct {
	session *gocql.Session
}

func NewCommentRepository(session *gocql.Session) *CommentRepository {
	return &CommentRepository{session: session}
}

// ListByProduct retourne les commentaires du produit, du plus ancien au plus récent.
func (r *CommentRepository) ListByProduct(ctx context.Context, productID string) ([]models.Comment, error) {
	iter := r.session.Query(`SELECT comment_id, product_id, text, user_id, user_name, email, created_at
		FROM comments_by_product WHERE product_id = ?`, productID).
		WithContext(ctx).
		Iter()

	comments := []models.Comment{}
	var (
		c  models.Comment
		id gocql.UUID
	)
	for iter.Scan(&id, &c.ProductID, &c.Text, &c.UserID, &c.UserName, &c.Email, &c.CreatedAt) {
		c.ID = id.String()
		c.CreatedAt = c.CreatedAt.UTC()
		comments = append(comments, c)
		c = models.Comment{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list comments of %s: %w", productID, err)
	}
	return comments, nil
}

// Create insère le commentaire ; ID est attribué ici si vide.
func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	id := gocql.TimeUUID()
	if c.ID != "" {
		parsed, err := gocql.ParseUUID(c.ID)
		if err != nil {
			return fmt.Errorf("comment id: %w", err)
		}
		id = parsed
	}

	err := r.session.Query(`INSERT INTO comments_by_product
		(product_id, created_at, comment_id, text, user_id, user_name, email)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ProductID, c.CreatedAt, id, c.Text, c.UserID, c.UserName, c.Email).
		WithContext(ctx).
		Exec()
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	c.ID = id.String()
	return nil
}
