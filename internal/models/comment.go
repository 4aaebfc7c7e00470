package models

import "time"

// Comment est append-only : ni édition ni suppression.
type Comment struct {
	ID        string    `json:"id" db:"comment_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Text      string    `json:"text" db:"text"`
	UserID    string    `json:"userId,omitempty" db:"user_id"`
	UserName  string    `json:"userName" db:"user_name"`
	Email     string    `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
