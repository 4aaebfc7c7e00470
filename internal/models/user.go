package models

import "time"

type User struct {
	ID         string    `bson:"_id" json:"user_id"`
	Name       string    `bson:"name,omitempty" json:"name,omitempty"`
	Email      string    `bson:"email" json:"email"`
	Password   string    `bson:"password,omitempty" json:"-"`
	Provider   string    `bson:"provider" json:"provider,omitempty"`
	ProviderID string    `bson:"provider_id,omitempty" json:"-"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// Identity : l'utilisateur courant tel qu'extrait du JWT.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"name,omitempty"`
}
