package embedding

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"rfpgpt/internal/logger"
)

const redisKeyPrefix = "emb:"

// RedisCache is a VectorCache backed by Redis, sharing computed
// embeddings across processes. Vectors are stored as little-endian
// float64 binary blobs.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// RedisCacheConfig holds connection settings for the Redis cache.
type RedisCacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisCache connects to Redis and verifies the connection with a
// ping before returning the cache.
func NewRedisCache(cfg RedisCacheConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

func (r *RedisCache) Get(key string) ([]float64, bool) {
	data, err := r.rdb.Get(context.Background(), redisKeyPrefix+key).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return bytesToVector(data), true
}

func (r *RedisCache) Put(key string, vector []float64) {
	err := r.rdb.Set(context.Background(), redisKeyPrefix+key, vectorToBytes(vector), r.ttl).Err()
	if err != nil {
		logger.Warn("redis cache write failed: %v", err)
	}
}

// Close releases the underlying Redis connection.
func (r *RedisCache) Close() error { return r.rdb.Close() }

func vectorToBytes(vector []float64) []byte {
	b := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

func bytesToVector(b []byte) []float64 {
	n := len(b) / 8
	vector := make([]float64, n)
	for i := 0; i < n; i++ {
		vector[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8 : (i+1)*8]))
	}
	return vector
}
