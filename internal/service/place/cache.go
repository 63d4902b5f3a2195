package place

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"waypost/internal/domain/geo"
)

// FallbackLabel is returned when a place name cannot be resolved.
const FallbackLabel = "Unknown location"

// keyPrefix namespaces place entries in the shared key-value store.
const keyPrefix = "place:"

// Store is the persistent tier of the cache. Writes are best-effort:
// the cache never treats a failed Set as an error.
type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value under key
	Set(ctx context.Context, key, value string) error

	// Remove deletes a key
	Remove(ctx context.Context, key string) error
}

// Cache resolves coordinates to short place labels with two cache tiers:
// an in-memory map and a persistent key-value store. Keys are coordinates
// rounded to three decimal places (~111 m), so nearby lookups collapse
// into one entry. Entries have no expiry.
type Cache struct {
	geocoder geo.Geocoder
	store    Store
	logger   *zap.Logger

	mu  sync.Mutex
	mem map[string]string
}

// NewCache creates a place-name cache.
func NewCache(geocoder geo.Geocoder, store Store, logger *zap.Logger) *Cache {
	return &Cache{
		geocoder: geocoder,
		store:    store,
		logger:   logger,
		mem:      make(map[string]string),
	}
}

// ResolvePlaceName resolves a coordinate to a short place label. Lookup
// and parse failures resolve to FallbackLabel rather than an error; only
// caller cancellation is propagated, so callers can tell "give up" apart
// from "resolved to unknown". Concurrent misses for the same key may each
// issue a geocoding request; the last write wins.
func (c *Cache) ResolvePlaceName(ctx context.Context, coord geo.Coordinate) (string, error) {
	key := cacheKey(coord)

	c.mu.Lock()
	if label, ok := c.mem[key]; ok {
		c.mu.Unlock()
		return label, nil
	}
	c.mu.Unlock()

	if value, ok, err := c.store.Get(ctx, key); err == nil && ok {
		c.remember(key, value)
		return value, nil
	} else if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Debug("place store read failed", zap.String("key", key), zap.Error(err))
	}

	place, err := c.geocoder.ReverseGeocode(ctx, coord.Latitude, coord.Longitude)
	if err != nil {
		// A cancelled resolution must neither populate the cache nor
		// masquerade as an unknown place.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Debug("reverse geocode failed", zap.String("key", key), zap.Error(err))
		return FallbackLabel, nil
	}

	label := shortLabel(place)

	c.remember(key, label)
	if err := c.store.Set(ctx, key, label); err != nil {
		c.logger.Debug("place store write failed", zap.String("key", key), zap.Error(err))
	}

	return label, nil
}

// remember stores a label in the in-memory tier.
func (c *Cache) remember(key, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem[key] = label
}

// cacheKey rounds a coordinate to three decimal places and formats it
// as the store key.
func cacheKey(coord geo.Coordinate) string {
	return fmt.Sprintf("%s%.3f,%.3f", keyPrefix, coord.Latitude, coord.Longitude)
}

// shortLabel extracts the most specific short name from a geocoding
// payload: locality-level names first, then county, then state, then
// the leading segments of the full display name.
func shortLabel(place *geo.Place) string {
	if place == nil {
		return FallbackLabel
	}

	addr := place.Address
	for _, candidate := range []string{
		addr.City,
		addr.Town,
		addr.Village,
		addr.Suburb,
		addr.Neighbourhood,
		addr.County,
		addr.State,
	} {
		if candidate != "" {
			return candidate
		}
	}

	if place.DisplayName != "" {
		segments := strings.Split(place.DisplayName, ",")
		if len(segments) > 3 {
			segments = segments[:3]
		}
		for i, segment := range segments {
			segments[i] = strings.TrimSpace(segment)
		}
		return strings.Join(segments, ", ")
	}

	return FallbackLabel
}
