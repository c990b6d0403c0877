// Package redis keeps unsaved editor sessions in Redis so a failed save
// does not lose in-progress edits.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meikuraledutech/area"
	"github.com/meikuraledutech/area/workset"
	backend "github.com/redis/go-redis/v9"
)

// Store implements editor.DraftStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for drafts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for drafts.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis draft store with options.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a new Redis draft store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "area:draft:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the snapshot under key.
func (s *Store) Save(ctx context.Context, key string, snap *workset.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Load retrieves the snapshot stored under key.
func (s *Store) Load(ctx context.Context, key string) (*workset.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, area.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var snap workset.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &snap, nil
}

// Delete removes a draft. Missing drafts are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(key))
	pipe.SRem(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// List returns the keys of the live drafts. Index entries whose draft
// expired are pruned on the way.
func (s *Store) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	live := make([]string, 0, len(keys))
	for _, k := range keys {
		n, err := s.client.Exists(ctx, s.key(k)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check draft %s: %w", k, err)
		}
		if n == 0 {
			if err := s.client.SRem(ctx, s.indexKey(), k).Err(); err != nil {
				return nil, fmt.Errorf("failed to prune draft %s: %w", k, err)
			}
			continue
		}
		live = append(live, k)
	}
	return live, nil
}
