//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/lyrebird/internal/session"
)

func setupRedisStore(t *testing.T) Store {
	t.Helper()
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set, skipping integration test")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}

	s, err := New(TypeRedis, WithRedisClient(redis.NewClient(opts)), WithTTL(time.Hour))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIntegration_RedisLifecycle(t *testing.T) {
	s := setupRedisStore(t)
	ctx := context.Background()
	id := "integration-" + uuid.New().String()[:8]
	t.Cleanup(func() { s.Delete(context.Background(), id) })

	sess := session.New(id)
	sess.Append(session.Message{Sender: session.SenderScammer, Text: "hello"})

	if err := s.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, session.New(id)); !errors.Is(err, ErrExists) {
		t.Fatalf("second create = %v, want ErrExists", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Version != 1 || len(got.Transcript) != 1 {
		t.Fatalf("got = %+v", got)
	}

	stale := got.Clone()

	got.TurnCount = 1
	if err := s.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Update(ctx, stale); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale update = %v, want ErrVersionConflict", err)
	}

	again, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if again.TurnCount != 1 || again.Version != 2 {
		t.Fatalf("after update = %+v", again)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete = %v, want ErrNotFound", err)
	}
}

func TestIntegration_RedisUpdateMissing(t *testing.T) {
	s := setupRedisStore(t)

	ghost := session.New("integration-ghost-" + uuid.New().String()[:8])
	if err := s.Update(context.Background(), ghost); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
