package domain

import "context"

// ListingRepository is the durable listing store.
type ListingRepository interface {
	// Write paths (seeding only)
	Migrate(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	InsertMany(ctx context.Context, ls []Listing) error

	// Read paths
	Search(ctx context.Context, f ListingFilter) ([]Listing, error)
	Ping(ctx context.Context) error
}

// FallbackStore is the in-memory listing set used while the durable store is down.
type FallbackStore interface {
	Replace(ls []Listing)
	ReplaceIfEmpty(ls []Listing) bool
	Len() int
	Search(f ListingFilter) []Listing
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	// DelPrefix removes every key starting with prefix and returns how many went.
	DelPrefix(ctx context.Context, prefix string) (int, error)
}
