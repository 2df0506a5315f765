package simulator

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/dixon-coles/internal/metrics"
)

// CacheKey identifies a fixture under one rating set
type CacheKey struct {
	Fingerprint string
	HomeTeam    string
	AwayTeam    string
	MaxGoals    int
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%d", k.Fingerprint, k.HomeTeam, k.AwayTeam, k.MaxGoals)
}

// MatrixCache provides in-memory caching for score matrices
type MatrixCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewMatrixCache creates a new matrix cache
func NewMatrixCache(ttl time.Duration, maxSize int) *MatrixCache {
	return &MatrixCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached matrix
func (mc *MatrixCache) Get(key CacheKey) *ScoreMatrix {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if result, found := mc.cache.Get(key.String()); found {
		if m, ok := result.(*ScoreMatrix); ok {
			mc.hitCount++
			metrics.RecordCacheHit()
			return m
		}
	}

	mc.missCount++
	metrics.RecordCacheMiss()
	return nil
}

// Set stores a matrix in cache
func (mc *MatrixCache) Set(key CacheKey, m *ScoreMatrix) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	// Check size limit
	if mc.maxSize > 0 && mc.cache.ItemCount() >= mc.maxSize {
		mc.cache.DeleteExpired()
		if mc.cache.ItemCount() >= mc.maxSize {
			mc.cache.Flush()
		}
	}

	mc.cache.Set(key.String(), m, mc.ttl)
}

// Clear flushes the entire cache
func (mc *MatrixCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache.Flush()
	mc.hitCount = 0
	mc.missCount = 0
}

// Stats returns cache statistics
func (mc *MatrixCache) Stats() (hits, misses uint64, ratio float64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	hits = mc.hitCount
	misses = mc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (mc *MatrixCache) ItemCount() int {
	return mc.cache.ItemCount()
}
