package geo

import (
	"context"
)

// Service defines the interface for the geospatial relevance engine.
type Service interface {
	// DistanceKm calculates the great-circle distance between two points
	DistanceKm(a, b Coordinate) float64

	// Evaluate combines an item and a viewer location into a relevance
	// verdict. A nil location yields an unknown result, not a default.
	Evaluate(item Item, viewer *Coordinate) RelevanceResult

	// SortByDistance orders items by ascending distance from center.
	// The sort is stable; ties keep their original relative order.
	SortByDistance(items []Item, center Coordinate) []Item

	// FilterWithinRadius retains items within radiusKm of center,
	// boundary inclusive, order preserved.
	FilterWithinRadius(items []Item, center Coordinate, radiusKm float64) []Item
}

// Geocoder resolves coordinates to structured place information.
type Geocoder interface {
	// ReverseGeocode gets place information for a coordinate pair
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error)
}

// PlaceResolver resolves coordinates to a short human-readable label.
type PlaceResolver interface {
	// ResolvePlaceName returns a place label for a coordinate. Lookup
	// failures resolve to a fallback label; only caller cancellation is
	// returned as an error.
	ResolvePlaceName(ctx context.Context, coord Coordinate) (string, error)
}
