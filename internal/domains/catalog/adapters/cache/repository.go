package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
)

const (
	DefaultTTL = 30 * time.Second

	itemKeyPrefix    = "menu:item:"
	listVersionKey   = "menu:lists:version"
	notFoundMarker   = "notfound"
	notFoundLifespan = 10 * time.Second
)

var _ ports.Repository = (*Repository)(nil)

// Repository is a read-through Redis cache in front of another menu repository.
// Redis failures are logged and fall through to the wrapped repository.
type Repository struct {
	inner  ports.Repository
	redis  redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Repository)

func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRepository(inner ports.Repository, client redis.UniversalClient, opts ...Option) *Repository {
	r := &Repository{inner: inner, redis: client, ttl: DefaultTTL, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.MenuItem, error) {
	key := itemKey(id)
	data, err := r.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, ports.ErrNotFound
		}
		var cached cachedItem
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached.toDomain(), nil
		}
		r.warn(ctx, "discarding undecodable cached menu item", key, err)
	case errors.Is(err, redis.Nil):
	default:
		r.warn(ctx, "menu cache read failed, using repository", key, err)
	}

	item, err := r.inner.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			if setErr := r.redis.Set(ctx, key, notFoundMarker, notFoundLifespan).Err(); setErr != nil {
				r.warn(ctx, "failed to cache missing menu item", key, setErr)
			}
		}
		return nil, err
	}
	r.store(ctx, key, fromDomain(item))
	return item, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.MenuItem, error) {
	key := r.listKey(ctx, filter)
	data, err := r.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []cachedItem
		if err := json.Unmarshal(data, &cached); err == nil {
			items := make([]*domain.MenuItem, 0, len(cached))
			for _, c := range cached {
				items = append(items, c.toDomain())
			}
			return items, nil
		}
		r.warn(ctx, "discarding undecodable cached menu list", key, err)
	case errors.Is(err, redis.Nil):
	default:
		r.warn(ctx, "menu cache read failed, using repository", key, err)
	}

	items, err := r.inner.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	cached := make([]cachedItem, 0, len(items))
	for _, item := range items {
		cached = append(cached, fromDomain(item))
	}
	r.store(ctx, key, cached)
	return items, nil
}

func (r *Repository) Save(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	saved, err := r.inner.Save(ctx, item)
	if err != nil {
		return nil, err
	}
	r.Invalidate(ctx, saved.ID)
	return saved, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	err := r.inner.Delete(ctx, id)
	r.Invalidate(ctx, id)
	return err
}

func (r *Repository) Reserve(ctx context.Context, id int64, qty int32) (*domain.MenuItem, error) {
	item, err := r.inner.Reserve(ctx, id, qty)
	if err != nil {
		return nil, err
	}
	r.Invalidate(ctx, id)
	return item, nil
}

func (r *Repository) Release(ctx context.Context, id int64, qty int32) (*domain.MenuItem, error) {
	item, err := r.inner.Release(ctx, id, qty)
	if err != nil {
		return nil, err
	}
	r.Invalidate(ctx, id)
	return item, nil
}

func (r *Repository) ResetRemaining(ctx context.Context) (int64, error) {
	n, err := r.inner.ResetRemaining(ctx)
	if err != nil {
		return 0, err
	}
	r.invalidateAll(ctx)
	return n, nil
}

func (r *Repository) SetQuantities(ctx context.Context, id int64, daily int32, remaining *int32) (*domain.MenuItem, error) {
	item, err := r.inner.SetQuantities(ctx, id, daily, remaining)
	if err != nil {
		return nil, err
	}
	r.Invalidate(ctx, id)
	return item, nil
}

// Invalidate drops cached copies of the given items and every cached listing.
// It is also called after a committed order transaction touched stock.
func (r *Repository) Invalidate(ctx context.Context, ids ...int64) {
	for _, id := range ids {
		if err := r.redis.Del(ctx, itemKey(id)).Err(); err != nil {
			r.warn(ctx, "failed to delete cached menu item", itemKey(id), err)
		}
	}
	if err := r.redis.Incr(ctx, listVersionKey).Err(); err != nil {
		r.warn(ctx, "failed to bump menu list version", listVersionKey, err)
	}
}

func (r *Repository) invalidateAll(ctx context.Context) {
	iter := r.redis.Scan(ctx, 0, itemKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.redis.Del(ctx, iter.Val()).Err(); err != nil {
			r.warn(ctx, "failed to delete cached menu item", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		r.warn(ctx, "menu cache scan failed", itemKeyPrefix, err)
	}
	r.Invalidate(ctx)
}

func (r *Repository) listKey(ctx context.Context, filter ports.ListFilter) string {
	version, err := r.redis.Get(ctx, listVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.warn(ctx, "failed to read menu list version", listVersionKey, err)
	}
	return fmt.Sprintf("menu:list:v%d:%s", version, r.filterKey(filter))
}

func (r *Repository) filterKey(filter ports.ListFilter) string {
	available := "any"
	if filter.Available != nil {
		available = fmt.Sprintf("%t", *filter.Available)
	}
	tags := make([]string, 0, len(filter.DietaryTags))
	for _, tag := range filter.DietaryTags {
		tags = append(tags, string(tag))
	}
	sort.Strings(tags)
	return fmt.Sprintf("%s:%s:%s", filter.Category, available, strings.Join(tags, ","))
}

func (r *Repository) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		r.warn(ctx, "failed to encode menu cache entry", key, err)
		return
	}
	if err := r.redis.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.warn(ctx, "failed to write menu cache entry", key, err)
	}
}

func (r *Repository) warn(ctx context.Context, msg, key string, err error) {
	r.logger.LogAttrs(ctx, slog.LevelWarn, msg, slog.String("cache.key", key), slog.String("error", err.Error()))
}

func itemKey(id int64) string {
	return fmt.Sprintf("%s%d", itemKeyPrefix, id)
}
