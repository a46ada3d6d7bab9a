package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Region is a named partition of entries that can be invalidated as a unit.
type Region string

const (
	// RegionSpaceship holds single-record lookups, evicted precisely by id.
	RegionSpaceship Region = "spaceship"
	// RegionSpaceships holds listings and search results. It is evicted in its
	// entirety on any write: one changed row can move every page boundary and
	// every search result set, so fine-grained diffing is not attempted.
	RegionSpaceships Region = "spaceships"
)

// Loader produces the value for a key on a cache miss.
type Loader func(ctx context.Context) (any, error)

type Cache interface {
	GetOrLoad(ctx context.Context, region Region, key string, loader Loader) (any, error)
	Invalidate(region Region, key string)
	InvalidateRegion(region Region)
}

// RegionCache is a read-through cache with region-level eviction. It is not
// authoritative: entries are derived from the store and any write evicts the
// affected regions before the caller observes the mutation.
//
// There is no stampede protection: between eviction and repopulation two
// concurrent readers may both miss and both reload from the store. Reloads are
// idempotent reads, so the duplicate load is accepted cost, not a consistency
// violation.
type RegionCache struct {
	regions map[Region]*gocache.Cache
}

func New(ttl time.Duration) *RegionCache {
	cleanup := 2 * ttl
	return &RegionCache{
		regions: map[Region]*gocache.Cache{
			RegionSpaceship:  gocache.New(ttl, cleanup),
			RegionSpaceships: gocache.New(ttl, cleanup),
		},
	}
}

func (c *RegionCache) GetOrLoad(ctx context.Context, region Region, key string, loader Loader) (any, error) {
	store := c.regions[region]
	if store == nil {
		return loader(ctx)
	}

	if value, found := store.Get(key); found {
		return value, nil
	}

	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	store.SetDefault(key, value)
	return value, nil
}

func (c *RegionCache) Invalidate(region Region, key string) {
	if store := c.regions[region]; store != nil {
		store.Delete(key)
	}
}

func (c *RegionCache) InvalidateRegion(region Region) {
	if store := c.regions[region]; store != nil {
		store.Flush()
	}
}
