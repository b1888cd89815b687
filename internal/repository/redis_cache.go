package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	catalogVersionKey   = "pricing:catalog_version"
	priceQuoteKeyPrefix = "pricing:quote:"
)

// RedisCacheRepository implements domain.PriceQuoteCache using Redis
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
	}
}

// =============================================================================
// Generic Cache Operations with OpenTelemetry Tracing
// =============================================================================

// Get retrieves a value from cache by key with OTel tracing
func (r *RedisCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cache.result", "miss"))
			return domain.ErrCacheMiss
		}
		span.RecordError(err)
		return fmt.Errorf("redis get error: %w", err)
	}

	span.SetAttributes(attribute.String("cache.result", "hit"))
	if err := json.Unmarshal(data, dest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// Set stores a value in cache with TTL and OTel tracing
func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())),
		),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// Delete removes keys from cache with OTel tracing
func (r *RedisCacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))),
	)
	defer span.End()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis delete error: %w", err)
	}

	return nil
}

// =============================================================================
// Listing Price Quotes
// =============================================================================

// CatalogVersion returns the current catalog version, 0 before the first change.
func (r *RedisCacheRepository) CatalogVersion(ctx context.Context) (int64, error) {
	v, err := r.client.Get(ctx, catalogVersionKey).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read catalog version: %w", err)
	}
	return v, nil
}

// BumpCatalogVersion orphans every cached quote. Old entries age out via their TTL.
func (r *RedisCacheRepository) BumpCatalogVersion(ctx context.Context) (int64, error) {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.BumpCatalogVersion")
	defer span.End()

	v, err := r.client.Incr(ctx, catalogVersionKey).Result()
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to bump catalog version: %w", err)
	}
	span.SetAttributes(attribute.Int64("pricing.catalog_version", v))
	return v, nil
}

func (r *RedisCacheRepository) GetPriceQuote(ctx context.Context, version int64, days int) (*domain.PriceResult, error) {
	var result domain.PriceResult
	if err := r.Get(ctx, priceQuoteKey(version, days), &result); err != nil {
		return nil, err
	}
	if result.Breakdown == nil {
		result.Breakdown = []domain.PriceBreakdownLine{}
	}
	return &result, nil
}

func (r *RedisCacheRepository) SetPriceQuote(ctx context.Context, version int64, days int, result *domain.PriceResult, ttl time.Duration) error {
	return r.Set(ctx, priceQuoteKey(version, days), result, ttl)
}

func priceQuoteKey(version int64, days int) string {
	return priceQuoteKeyPrefix + strconv.FormatInt(version, 10) + ":" + strconv.Itoa(days)
}
