// Package cache keeps recent catalog reads in Redis so repeated feed loads
// do not hit the document database every time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/models"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 5 * time.Minute

const (
	productsKey      = "products:all"
	sellerKey        = "seller:"
	slugKey          = "store:"
	sellerProductKey = "products:seller:"
)

// Source wraps another catalog.Source with a read-through Redis cache.
// Redis failures are reported and the read falls through to the wrapped
// source.
type Source struct {
	next   catalog.Source
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

var (
	_ catalog.Source      = (*Source)(nil)
	_ catalog.Invalidator = (*Source)(nil)
)

func New(next catalog.Source, rdb *redis.Client, ttl time.Duration) *Source {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Source{next: next, rdb: rdb, ttl: ttl, prefix: "campusfair:"}
}

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *Source) Name() string { return s.next.Name() }

// Unwrap returns the cached backend, for writes that must bypass the cache.
func (s *Source) Unwrap() catalog.Source { return s.next }

func (s *Source) FetchAllProducts(ctx context.Context) ([]models.Product, error) {
	return cached(ctx, s, productsKey, func() ([]models.Product, error) {
		return s.next.FetchAllProducts(ctx)
	})
}

func (s *Source) FetchProductsBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	return cached(ctx, s, sellerProductKey+sellerID, func() ([]models.Product, error) {
		return s.next.FetchProductsBySeller(ctx, sellerID)
	})
}

func (s *Source) FindSellerBySlug(ctx context.Context, slug string) (*models.Seller, error) {
	return cached(ctx, s, slugKey+slug, func() (*models.Seller, error) {
		return s.next.FindSellerBySlug(ctx, slug)
	})
}

// FetchSellersByIDs serves what it can from Redis and asks the wrapped
// source for the rest. Sellers that do not exist are not cached.
func (s *Source) FetchSellersByIDs(ctx context.Context, ids []string) (map[string]models.Seller, error) {
	out := make(map[string]models.Seller, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + sellerKey + id
	}
	missing := ids
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		catalog.ReportProgress(ctx, fmt.Sprintf("Seller cache unavailable: %v", err))
	} else {
		missing = nil
		for i, v := range vals {
			str, ok := v.(string)
			var sel models.Seller
			if !ok || json.Unmarshal([]byte(str), &sel) != nil {
				missing = append(missing, ids[i])
				continue
			}
			out[ids[i]] = sel
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := s.next.FetchSellersByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	pipe := s.rdb.Pipeline()
	for id, sel := range found {
		out[id] = sel
		if data, err := json.Marshal(sel); err == nil {
			pipe.Set(ctx, s.prefix+sellerKey+id, data, s.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		catalog.ReportProgress(ctx, fmt.Sprintf("Seller cache write failed: %v", err))
	}
	return out, nil
}

// Invalidate drops every cached catalog read so the next feed load and store
// page read fresh data.
func (s *Source) Invalidate(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	for len(keys) > 0 {
		n := min(len(keys), 500)
		if err := s.rdb.Del(ctx, keys[:n]...).Err(); err != nil {
			return fmt.Errorf("delete cache keys: %w", err)
		}
		keys = keys[n:]
	}
	return nil
}

func cached[T any](ctx context.Context, s *Source, key string, load func() (T, error)) (T, error) {
	key = s.prefix + key
	if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var v T
		if json.Unmarshal(data, &v) == nil {
			return v, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		catalog.ReportProgress(ctx, fmt.Sprintf("Cache unavailable: %v", err))
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err == nil {
		if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
			catalog.ReportProgress(ctx, fmt.Sprintf("Cache write failed: %v", err))
		}
	}
	return v, nil
}
