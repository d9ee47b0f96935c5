package security

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// WindowStore counts events per key inside a sliding window. Hit records one
// event happening now and returns the number of events still inside the
// window, including the new one.
type WindowStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisWindowStore keeps each caller's window as a ZSET of event timestamps,
// so limits are shared across processes.
type RedisWindowStore struct {
	client redis.UniversalClient
}

func NewRedisWindowStore(client redis.UniversalClient) *RedisWindowStore {
	return &RedisWindowStore{client: client}
}

func (s *RedisWindowStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	cutoff := now.Add(-window).UnixNano()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10) + ":" + strconv.FormatInt(seq(), 10),
	})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return card.Val(), nil
}

var (
	seqMu sync.Mutex
	seqN  int64
)

// seq disambiguates ZSET members created within the same nanosecond.
func seq() int64 {
	seqMu.Lock()
	defer seqMu.Unlock()
	seqN++
	return seqN
}

// MemoryWindowStore is the in-process fallback used when no redis address is
// configured. Entries idle for longer than their window are evicted by the
// underlying cache; a periodic prune job collects the leftovers.
type MemoryWindowStore struct {
	cache *gocache.Cache
}

type windowEntry struct {
	mu     sync.Mutex
	events []time.Time
}

func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

func (s *MemoryWindowStore) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()

	var entry *windowEntry
	if v, ok := s.cache.Get(key); ok {
		entry = v.(*windowEntry)
	} else {
		entry = &windowEntry{}
		// Another goroutine may race the insert; use its entry if it won.
		if err := s.cache.Add(key, entry, window); err != nil {
			if v, ok := s.cache.Get(key); ok {
				entry = v.(*windowEntry)
			}
		}
	}
	s.cache.Set(key, entry, window)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	cutoff := now.Add(-window)
	kept := entry.events[:0]
	for _, t := range entry.events {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	entry.events = append(kept, now)
	return int64(len(entry.events)), nil
}

// Prune drops idle keys and returns how many were evicted.
func (s *MemoryWindowStore) Prune() int {
	before := s.cache.ItemCount()
	s.cache.DeleteExpired()
	return before - s.cache.ItemCount()
}
