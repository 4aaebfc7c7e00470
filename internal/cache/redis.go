package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache regroupe les usages "clé/valeur" de Redis : cache JSON, compteurs
// de rate limit et blacklist des tokens.
type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// --- Cache générique ---

// GetJSON décode la valeur en cache dans dst. ErrCacheMiss si absente.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) error {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stocke value encodée en JSON.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// Delete supprime une ou plusieurs clés.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// --- Rate limiting ---

// IncrementRateLimit incrémente le compteur et (ré)arme sa fenêtre.
func (c *Cache) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// GetRateLimit retourne le compteur courant (0 si absent).
func (c *Cache) GetRateLimit(ctx context.Context, key string) (int64, error) {
	val, err := c.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return val, err
}

// TTL retourne la durée de vie restante d'une clé (<= 0 si absente).
func (c *Cache) TTL(ctx context.Context, key string) time.Duration {
	ttl, err := c.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0
	}
	return ttl
}

// SetFlag pose une clé marqueur, utilisée pour les cooldowns.
func (c *Cache) SetFlag(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, "1", ttl).Err()
}

// Exists indique si la clé est présente. Une erreur Redis est remontée.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Blacklist JWT (révocation avant expiration) ---

// BlacklistToken révoque un token jusqu'à son expiration.
func (c *Cache) BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, "blacklist:"+tokenID, "revoked", ttl).Err()
}

// IsTokenBlacklisted vérifie si un token a été révoqué.
func (c *Cache) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	return c.Exists(ctx, "blacklist:"+tokenID)
}

// Publish envoie un message sur un canal pub/sub.
func (c *Cache) Publish(ctx context.Context, channel, message string) error {
	return c.rdb.Publish(ctx, channel, message).Err()
}
