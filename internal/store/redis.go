package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/lyrebird/internal/session"
)

const keyPrefix = "session:"

// redisStore persists sessions as JSON values with a sliding TTL. Updates go
// through WATCH so concurrent writers hit the version check instead of
// clobbering each other.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *redisStore) Create(ctx context.Context, sess *session.Session) error {
	key := keyPrefix + sess.ID
	now := time.Now()
	sess.CreatedAt = now
	sess.UpdatedAt = now
	sess.Version = 1

	val, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	created, err := s.client.SetNX(ctx, key, val, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !created {
		return ErrExists
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*session.Session, error) {
	key := keyPrefix + id
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	// Refresh TTL on read
	_ = s.client.Expire(ctx, key, s.ttl).Err()

	return &sess, nil
}

func (s *redisStore) Update(ctx context.Context, sess *session.Session) error {
	key := keyPrefix + sess.ID

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}

		var stored session.Session
		if err := json.Unmarshal([]byte(val), &stored); err != nil {
			return fmt.Errorf("decode stored session: %w", err)
		}
		if stored.Version != sess.Version {
			return ErrVersionConflict
		}

		sess.Version++
		sess.UpdatedAt = time.Now()

		newVal, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, s.ttl)
			return nil
		})
		return err
	}, key)
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

func (s *redisStore) Count(ctx context.Context) (int, int, error) {
	var active, terminated int

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		val, err := s.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return 0, 0, fmt.Errorf("load session: %w", err)
		}

		var sess session.Session
		if err := json.Unmarshal([]byte(val), &sess); err != nil {
			continue
		}
		if sess.Status == session.StatusTerminated {
			terminated++
		} else {
			active++
		}
	}
	if err := iter.Err(); err != nil {
		return 0, 0, fmt.Errorf("scan sessions: %w", err)
	}

	return active, terminated, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
