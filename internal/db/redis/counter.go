package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/prepscore/internal/db"
)

// IncrBy atomically adds val to the counter at key.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	cmd := s.client.B().Incrby().Key(key).Increment(val).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpIncr, Err: err}
	}
	return nil
}

// GetCounter reads the counter at key. A missing key yields db.ErrKeyNotFound.
func (s *Store) GetCounter(ctx context.Context, key string) (int64, error) {
	cmd := s.client.B().Get().Key(key).Build()
	n, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, db.ErrKeyNotFound
		}
		return 0, &db.Error{Op: db.OpGet, Err: err}
	}
	return n, nil
}
