package booking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// IdempotencyKey derives a deterministic key for a submission from the
// normalized contact email and the resolved slot start. Two submissions
// with the same contact and slot are considered duplicates.
func IdempotencyKey(email string, slot Slot) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(normalized + "|" + slot.Start.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(sum[:])
}

// IdempotencyStore records accepted submission keys for a bounded window.
type IdempotencyStore interface {
	// Reserve claims the key. It reports false when the key was already
	// reserved, meaning the submission is a duplicate.
	Reserve(ctx context.Context, key string) (bool, error)
	// Release frees a reserved key so the same submission can be
	// retried after a failed pipeline.
	Release(ctx context.Context, key string) error
}

// RedisIdempotencyStore backs the duplicate guard with redis so the
// window survives restarts and is shared between replicas.
type RedisIdempotencyStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisIdempotencyStore {
	if client == nil {
		panic("booking: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("scailer.internal.booking.idempotency")
	}
	return &RedisIdempotencyStore{
		redis:  client,
		ttl:    ttl,
		tracer: tracer,
	}
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "booking.reserve_idempotency_key")
	defer span.End()

	ok, err := s.redis.SetNX(ctx, idempotencyRedisKey(key), "1", s.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("booking: failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	ctx, span := s.tracer.Start(ctx, "booking.release_idempotency_key")
	defer span.End()

	if err := s.redis.Del(ctx, idempotencyRedisKey(key)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: failed to release idempotency key: %w", err)
	}
	return nil
}

func idempotencyRedisKey(key string) string {
	return fmt.Sprintf("booking:idem:%s", key)
}

// MemoryIdempotencyStore is the in-process fallback used when redis is
// not configured. The window is lost on restart.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, expiry := range s.seen {
		if now.After(expiry) {
			delete(s.seen, k)
		}
	}

	if _, exists := s.seen[key]; exists {
		return false, nil
	}
	s.seen[key] = now.Add(s.ttl)
	return true, nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, key)
	return nil
}
