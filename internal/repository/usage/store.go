package usage

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// store is the consumer interface for usage mirror operations (ISP).
type store interface {
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration, nx bool) error
	IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) error
}

// Store mirrors ledger activity into key-value storage:
//
//	<prefix>usage:<token>:created_at  unix seconds, written once
//	<prefix>usage:<token>:words       running word total
//
// Both keys expire ttl after the token was first seen.
type Store struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a usage mirror. prefix is prepended to every key.
func New(s store, prefix string, ttl time.Duration) *Store {
	return &Store{
		store:  s,
		prefix: prefix,
		ttl:    ttl,
	}
}

// RecordIssue stores the creation time of a freshly issued token.
func (s *Store) RecordIssue(ctx context.Context, tokenID string, createdAtUnix int64) error {
	key := s.key(tokenID, "created_at")
	val := []byte(strconv.FormatInt(createdAtUnix, 10))
	if err := s.store.SetWithTTL(ctx, key, val, s.ttl, true); err != nil {
		return fmt.Errorf("usage SET %s: %w", key, err)
	}
	return nil
}

// RecordConsume adds words to the token's running total.
func (s *Store) RecordConsume(ctx context.Context, tokenID string, words int64) error {
	key := s.key(tokenID, "words")
	if err := s.store.IncrByWithTTL(ctx, key, words, s.ttl); err != nil {
		return fmt.Errorf("usage INCRBY %s: %w", key, err)
	}
	return nil
}

func (s *Store) key(tokenID, field string) string {
	return s.prefix + "usage:" + tokenID + ":" + field
}
