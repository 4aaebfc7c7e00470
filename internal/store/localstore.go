package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Clés du stockage "navigateur" ("whislist" est la clé lue par le front).
// KeySession n'a pas de valeur stockée, seulement un canal.
const (
	KeyCart     = "cart"
	KeyWishlist = "whislist"
	KeySession  = "session"
)

// Événements publiés après chaque écriture.
const (
	EventUpdated   = "updated"
	EventCleared   = "cleared"
	EventSignedOut = "signed_out"
)

const maxUpdateRetries = 5

// ListStore conserve une liste JSON par propriétaire, réécrite en entier à
// chaque mutation, comme le localStorage du navigateur.
type ListStore[T any] struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewListStore[T any](rdb *redis.Client, key string, ttl time.Duration) *ListStore[T] {
	return &ListStore[T]{rdb: rdb, key: key, ttl: ttl}
}

// StorageKey est aussi le nom du canal pub/sub de la liste.
func StorageKey(owner, key string) string {
	return fmt.Sprintf("storefront:%s:%s", owner, key)
}

// Load lit la liste brute ; une clé absente donne une liste vide.
func (s *ListStore[T]) Load(ctx context.Context, owner string) ([]T, error) {
	return s.decode(s.rdb.Get(ctx, StorageKey(owner, s.key)))
}

// Save écrase la liste et notifie les abonnés.
func (s *ListStore[T]) Save(ctx context.Context, owner string, items []T) error {
	data, err := s.encode(items)
	if err != nil {
		return err
	}
	key := StorageKey(owner, s.key)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, s.ttl)
		pipe.Publish(ctx, key, eventFor(items))
		return nil
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Update applique fn sous WATCH : si un autre onglet écrit entre la lecture
// et l'écriture, la transaction échoue et fn est rejouée sur la nouvelle
// valeur.
func (s *ListStore[T]) Update(ctx context.Context, owner string, fn func([]T) ([]T, error)) ([]T, error) {
	key := StorageKey(owner, s.key)
	var result []T

	err := s.watch(ctx, func(tx *redis.Tx) error {
		current, err := s.decode(tx.Get(ctx, key))
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		data, err := s.encode(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			pipe.Publish(ctx, key, eventFor(next))
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Take vide la liste et retourne ce qu'elle contenait, en une transaction :
// deux appels concurrents ne récupèrent jamais les mêmes entrées.
func (s *ListStore[T]) Take(ctx context.Context, owner string) ([]T, error) {
	key := StorageKey(owner, s.key)
	var taken []T

	err := s.watch(ctx, func(tx *redis.Tx) error {
		current, err := s.decode(tx.Get(ctx, key))
		if err != nil {
			return err
		}
		if len(current) == 0 {
			taken = current
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, "[]", s.ttl)
			pipe.Publish(ctx, key, EventCleared)
			return nil
		})
		if err == nil {
			taken = current
		}
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return taken, nil
}

// Prepend remet items en tête de la liste, sans écraser ce qui a été écrit
// depuis (annulation d'un Take).
func (s *ListStore[T]) Prepend(ctx context.Context, owner string, items []T) ([]T, error) {
	return s.Update(ctx, owner, func(current []T) ([]T, error) {
		out := make([]T, 0, len(items)+len(current))
		out = append(out, items...)
		return append(out, current...), nil
	})
}

// Clear persiste une liste vide.
func (s *ListStore[T]) Clear(ctx context.Context, owner string) error {
	return s.Save(ctx, owner, []T{})
}

// Adopt ajoute la liste de from à la fin de celle de to puis supprime from.
// Lecture, fusion et suppression forment une seule transaction sur les deux
// clés : une écriture invitée concurrente relance l'adoption, et une
// adoption ne peut pas être appliquée deux fois.
// Sert à rattacher le panier invité au compte après connexion.
func (s *ListStore[T]) Adopt(ctx context.Context, from, to string) ([]T, error) {
	if from == "" || from == to {
		return s.Load(ctx, to)
	}
	fromKey := StorageKey(from, s.key)
	toKey := StorageKey(to, s.key)
	var result []T

	err := s.watch(ctx, func(tx *redis.Tx) error {
		guest, err := s.decode(tx.Get(ctx, fromKey))
		if err != nil {
			return err
		}
		current, err := s.decode(tx.Get(ctx, toKey))
		if err != nil {
			return err
		}
		if len(guest) == 0 {
			result = current
			return nil
		}

		merged := append(current, guest...)
		data, err := s.encode(merged)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, toKey, data, s.ttl)
			pipe.Del(ctx, fromKey)
			pipe.Publish(ctx, toKey, EventUpdated)
			pipe.Publish(ctx, fromKey, EventCleared)
			return nil
		})
		if err == nil {
			result = merged
		}
		return err
	}, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// watch rejoue txf tant qu'une clé surveillée change pendant la transaction.
func (s *ListStore[T]) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, txf, keys...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: %w", keys[0], ErrConflict)
}

func (s *ListStore[T]) decode(cmd *redis.StringCmd) ([]T, error) {
	data, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *ListStore[T]) encode(items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.key, err)
	}
	return data, nil
}

func eventFor[T any](items []T) string {
	if len(items) == 0 {
		return EventCleared
	}
	return EventUpdated
}
