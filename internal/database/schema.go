package database

import (
	"fmt"

	"github.com/gocql/gocql"
)

// Tables ScyllaDB utilisées par le storefront. Les collections MongoDB
// (users, orders) sont créées à la première écriture.
var scyllaSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_id text PRIMARY KEY,
		name text,
		price double,
		image text,
		description text,
		brand text,
		seller_email text
	)`,
	`CREATE TABLE IF NOT EXISTS comments_by_product (
		product_id text,
		created_at timestamp,
		comment_id timeuuid,
		text text,
		user_id text,
		user_name text,
		email text,
		PRIMARY KEY (product_id, created_at, comment_id)
	) WITH CLUSTERING ORDER BY (created_at ASC, comment_id ASC)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id timeuuid PRIMARY KEY,
		user_id text,
		user_email text,
		action text,
		resource text,
		resource_id text,
		ip_address text,
		user_agent text,
		success boolean,
		error_msg text,
		timestamp timestamp
	)`,
}

// EnsureSchema crée les tables manquantes dans le keyspace de la session.
func EnsureSchema(session *gocql.Session) error {
	for _, stmt := range scyllaSchema {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}
