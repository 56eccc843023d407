package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/raaihank/spell-sentinel/internal/engine"
	"go.uber.org/zap"
)

// ResultCache memoizes correction results in Redis. Every failure is
// treated as a miss so the caller falls back to computing the result.
type ResultCache struct {
	client *redis.Client
	config *Config
	logger *zap.Logger
	stats  cacheStats
}

// cacheStats tracks cache performance metrics
type cacheStats struct {
	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// NewResultCache creates a Redis-backed result cache and verifies the
// connection
func NewResultCache(config *Config, logger *zap.Logger) (*ResultCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.MaxConnections
	opts.MinIdleConns = config.MinIdleConns

	rc := newResultCache(redis.NewClient(opts), config, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rc.client.Ping(ctx).Err(); err != nil {
		rc.client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rc.logger.Info("Result cache initialized successfully",
		zap.String("redis_url", maskRedisURL(config.RedisURL)),
		zap.Int("max_connections", config.MaxConnections),
		zap.Duration("default_ttl", config.DefaultTTL))

	return rc, nil
}

func newResultCache(client *redis.Client, config *Config, logger *zap.Logger) *ResultCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultCache{
		client: client,
		config: config,
		logger: logger,
	}
}

// Get returns the cached result for text corrected with opts. A nil cache
// always misses.
func (rc *ResultCache) Get(ctx context.Context, text string, opts engine.Options) (engine.Result, bool) {
	if rc == nil {
		return engine.Result{}, false
	}

	key := resultKey(rc.config.KeyPrefix, text, opts)

	data, err := rc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		rc.stats.misses.Add(1)
		rc.logger.Debug("Cache miss", zap.String("key", key))
		return engine.Result{}, false
	} else if err != nil {
		rc.stats.misses.Add(1)
		rc.stats.errors.Add(1)
		rc.logger.Warn("Cache lookup failed", zap.Error(err))
		return engine.Result{}, false
	}

	var cached CachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		rc.stats.misses.Add(1)
		rc.stats.errors.Add(1)
		rc.logger.Error("Failed to unmarshal cached result", zap.Error(err))
		// Delete corrupted cache entry
		rc.client.Del(ctx, key)
		return engine.Result{}, false
	}

	rc.stats.hits.Add(1)
	rc.logger.Debug("Cache hit", zap.String("key", key))

	return cached.Result, true
}

// Store caches result for text corrected with opts. Failures are logged and
// returned; callers may ignore them.
func (rc *ResultCache) Store(ctx context.Context, text string, opts engine.Options, result engine.Result) error {
	if rc == nil {
		return nil
	}

	key := resultKey(rc.config.KeyPrefix, text, opts)

	data, err := json.Marshal(CachedResult{
		Result:   result,
		CachedAt: time.Now(),
		TTL:      int64(rc.config.DefaultTTL.Seconds()),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal result for caching: %w", err)
	}

	if err := rc.client.Set(ctx, key, data, rc.config.DefaultTTL).Err(); err != nil {
		rc.stats.errors.Add(1)
		rc.logger.Warn("Failed to cache result", zap.Error(err))
		return fmt.Errorf("failed to cache result: %w", err)
	}

	rc.logger.Debug("Result cached", zap.String("key", key), zap.Int("changes", len(result.Changes)))
	return nil
}

// Counters returns hit and miss counts without contacting Redis
func (rc *ResultCache) Counters() CacheStats {
	if rc == nil {
		return CacheStats{}
	}

	stats := CacheStats{
		Hits:   rc.stats.hits.Load(),
		Misses: rc.stats.misses.Load(),
		Errors: rc.stats.errors.Load(),
	}

	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}
	return stats
}

// GetStats returns cache performance statistics including Redis memory
func (rc *ResultCache) GetStats(ctx context.Context) (*CacheStats, error) {
	stats := rc.Counters()

	info, err := rc.client.Info(ctx, "memory").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis info: %w", err)
	}
	stats.MemoryUsage = parseUsedMemory(info)

	keys, err := rc.client.DBSize(ctx).Result()
	if err == nil {
		stats.TotalKeys = keys
	}

	return &stats, nil
}

// Clear removes all cached results under the key prefix
func (rc *ResultCache) Clear(ctx context.Context) (int, error) {
	pattern := rc.config.KeyPrefix + ":result:*"

	iter := rc.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan cache keys: %w", err)
	}

	// Delete keys in batches
	batchSize := 100
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}

		if err := rc.client.Del(ctx, keys[i:end]...).Err(); err != nil {
			return i, fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	rc.logger.Info("Cache cleared", zap.Int("deleted_keys", len(keys)))
	return len(keys), nil
}

// Close closes the Redis connection
func (rc *ResultCache) Close() error {
	if rc != nil && rc.client != nil {
		return rc.client.Close()
	}
	return nil
}

// resultKey derives the cache key for a text and option set
func resultKey(prefix, text string, opts engine.Options) string {
	hasher := sha256.New()
	fmt.Fprintf(hasher, "%t|%t|", opts.SpellCheck, opts.GrammarCheck)
	hasher.Write([]byte(text))

	hash := hex.EncodeToString(hasher.Sum(nil))
	return fmt.Sprintf("%s:result:%s", prefix, hash[:16])
}

func parseUsedMemory(info string) int64 {
	for _, line := range strings.Split(info, "\r\n") {
		if memStr, ok := strings.CutPrefix(line, "used_memory:"); ok {
			if mem, err := strconv.ParseInt(memStr, 10, 64); err == nil {
				return mem
			}
		}
	}
	return 0
}

// maskRedisURL masks sensitive information in Redis URL for logging
func maskRedisURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}
