package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockTTL bounds how long a reservation survives a handler that never returns.
const lockTTL = 60 * time.Second

var errNoEntry = errors.New("idempotency: no entry")

// replayEntry is what Redis holds under a replay key: first a reservation,
// then the final response.
type replayEntry struct {
	Done     bool      `json:"done"`
	Status   int       `json:"status,omitempty"`
	Response []byte    `json:"response,omitempty"`
	Digest   string    `json:"digest"`
	SentAt   time.Time `json:"sent_at"`
	StoredAt time.Time `json:"stored_at"`
}

type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func replayKey(method, route string, userID uint64, requestID string) string {
	return fmt.Sprintf("cta:idem:%d:%s %s:%s", userID, method, route, requestID)
}

func digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// reserve claims key for an in-flight request; false means it is already held.
func (s replayStore) reserve(ctx context.Context, key string, e replayEntry) (bool, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, b, lockTTL).Result()
}

func (s replayStore) lookup(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return e, errNoEntry
	}
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(b, &e); err != nil {
		return e, fmt.Errorf("idempotency: decode %s: %w", key, err)
	}
	return e, nil
}

// complete replaces the reservation with the final response for ttl.
func (s replayStore) complete(ctx context.Context, key string, e replayEntry) error {
	e.Done = true
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, s.ttl).Err()
}

func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
