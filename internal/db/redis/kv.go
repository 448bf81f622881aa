package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/justext/internal/db"
)

// SetWithTTL stores a value with an expiration. With nx=true the value is
// written only if the key does not exist yet (SET NX).
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration, nx bool) error {
	var err error
	if nx {
		err = s.do(ctx, s.b().Set().Key(key).Value(string(value)).Nx().ExSeconds(int64(ttl.Seconds())).Build()).Error()
	} else {
		err = s.do(ctx, s.b().Set().Key(key).Value(string(value)).ExSeconds(int64(ttl.Seconds())).Build()).Error()
	}
	// SET NX on an existing key answers nil, which is not a failure.
	if err != nil && !isNil(err) {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// IncrByWithTTL increments a counter and, in the same round-trip, sets its
// TTL only if it has none yet (INCRBY + EXPIRE NX). Repeated increments do
// not extend the expiry.
func (s *Store) IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) error {
	results := s.client.DoMulti(ctx,
		s.b().Incrby().Key(key).Increment(val).Build(),
		s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Nx().Build(),
	)
	if err := results[0].Error(); err != nil {
		return &db.Error{Op: db.OpIncrBy, Err: err}
	}
	if err := results[1].Error(); err != nil {
		return &db.Error{Op: db.OpExpire, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	return nil
}
