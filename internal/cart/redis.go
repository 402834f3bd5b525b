package cart

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a cart survives without a write.
const DefaultTTL = 24 * time.Hour

// RedisStore keeps each cart as one hash keyed by sender, with product ids
// as fields and quantities as values. HIncrBy gives atomic increments, and
// a TTL refreshed on every write expires abandoned carts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Add(ctx context.Context, sender, productID string, delta int64) error {
	key := cartKey(sender)
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, productID, delta)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cart: add %s to %s: %w", productID, sender, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sender string) ([]Entry, error) {
	fields, err := s.client.HGetAll(ctx, cartKey(sender)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("cart: get %s: %w", sender, err)
	}

	entries := make([]Entry, 0, len(fields))
	for productID, raw := range fields {
		qty, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || qty < 1 {
			continue
		}
		entries = append(entries, Entry{ProductID: productID, Quantity: qty})
	}
	// Hash iteration order is unspecified; sort for a stable sequence.
	sort.Slice(entries, func(i, j int) bool { return entries[i].ProductID < entries[j].ProductID })
	return entries, nil
}

func (s *RedisStore) Clear(ctx context.Context, sender string) error {
	if err := s.client.Del(ctx, cartKey(sender)).Err(); err != nil {
		return fmt.Errorf("cart: clear %s: %w", sender, err)
	}
	return nil
}

func cartKey(sender string) string {
	return "cart:" + sender
}
