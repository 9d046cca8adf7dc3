package queries

import (
	"context"
	"strings"
	"time"
)

// PageCache stores rendered pages keyed by slug and locale.
type PageCache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// PageCacheKey is the cache key of a rendered page.
func PageCacheKey(slug, locale string) string {
	return PageCachePrefix(slug) + strings.ToLower(locale)
}

// PageCachePrefix covers every locale of a page.
func PageCachePrefix(slug string) string {
	return "page:" + slug + ":"
}
