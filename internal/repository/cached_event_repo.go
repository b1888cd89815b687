package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mansoorceksport/eventhub/internal/domain"
)

const (
	eventByIDKeyPrefix = "event:id:"
	eventCacheTTL      = 5 * time.Minute
)

// ObjectCache is the JSON key/value cache the decorators use
type ObjectCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedEventRepository wraps an EventRepository with a read-through cache
// for single event lookups. Every write drops the cached copy.
type CachedEventRepository struct {
	domain.EventRepository
	cache ObjectCache
}

// NewCachedEventRepository creates a new cached event repository
func NewCachedEventRepository(inner domain.EventRepository, cache ObjectCache) *CachedEventRepository {
	return &CachedEventRepository{
		EventRepository: inner,
		cache:           cache,
	}
}

// GetByID retrieves an event with caching
func (r *CachedEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	key := eventByIDKeyPrefix + id

	var event domain.Event
	err := r.cache.Get(ctx, key, &event)
	if err == nil {
		return &event, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("[EventCache] Get %s failed: %v", key, err)
	}

	result, err := r.EventRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Ignore cache errors
	_ = r.cache.Set(ctx, key, result, eventCacheTTL)
	return result, nil
}

func (r *CachedEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if err := r.EventRepository.Update(ctx, event); err != nil {
		return err
	}
	r.invalidate(ctx, event.ID)
	return nil
}

func (r *CachedEventRepository) UpdateImageURL(ctx context.Context, id, imageURL string) error {
	if err := r.EventRepository.UpdateImageURL(ctx, id, imageURL); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedEventRepository) ActivateListing(ctx context.Context, id, invoiceID string, expiresAt time.Time) (bool, error) {
	applied, err := r.EventRepository.ActivateListing(ctx, id, invoiceID, expiresAt)
	if applied {
		r.invalidate(ctx, id)
	}
	return applied, err
}

func (r *CachedEventRepository) ExpireListing(ctx context.Context, id string, now time.Time) (bool, error) {
	changed, err := r.EventRepository.ExpireListing(ctx, id, now)
	if changed {
		r.invalidate(ctx, id)
	}
	return changed, err
}

func (r *CachedEventRepository) Delete(ctx context.Context, id string) error {
	if err := r.EventRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedEventRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, eventByIDKeyPrefix+id); err != nil {
		// Entry ages out on its TTL
		log.Printf("[EventCache] Failed to drop event %s: %v", id, err)
	}
}
