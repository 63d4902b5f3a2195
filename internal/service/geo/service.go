package geo

import (
	"math"
	"sort"

	"waypost/internal/domain/geo"
)

// GeoService implements the geo.Service interface. It is stateless and
// safe for concurrent use.
type GeoService struct{}

// NewGeoService creates a new geospatial relevance engine.
func NewGeoService() *GeoService {
	return &GeoService{}
}

// DistanceKm calculates the great-circle distance between two points in
// kilometers using the haversine formula on a spherical Earth. Haversine
// is numerically stable near zero distance, which the law-of-cosines
// form is not; identical points yield exactly 0.
func (s *GeoService) DistanceKm(a, b geo.Coordinate) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	hSin := math.Sin(dLat / 2)
	hSin *= hSin

	vSin := math.Sin(dLon / 2)
	vSin *= vSin

	h := hSin + math.Cos(lat1)*math.Cos(lat2)*vSin

	// Rounding can push h past 1 for near-antipodal pairs, which would
	// make Asin return NaN.
	if h > 1 {
		h = 1
	}

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Evaluate combines an item and a viewer location into a relevance
// verdict. A nil viewer yields nil distances and a false verdict,
// keeping "unknown location" distinct from "out of range". The radius
// boundary is inclusive; items without a relevance zone report distance
// but are never relevant.
func (s *GeoService) Evaluate(item geo.Item, viewer *geo.Coordinate) geo.RelevanceResult {
	if viewer == nil {
		return geo.RelevanceResult{}
	}

	km := s.DistanceKm(item.Location(), *viewer)
	meters := km * 1000

	radius := item.RelevanceRadius()
	relevant := radius > 0 && meters <= radius

	return geo.RelevanceResult{
		IsRelevant:     relevant,
		DistanceKm:     &km,
		DistanceMeters: &meters,
	}
}

// SortByDistance orders items by ascending distance from center. The
// distance for each item is computed once up front rather than inside
// the comparator, and the sort is stable so equidistant items keep
// their original relative order.
func (s *GeoService) SortByDistance(items []geo.Item, center geo.Coordinate) []geo.Item {
	type decorated struct {
		item geo.Item
		km   float64
	}

	decoratedItems := make([]decorated, len(items))
	for i, item := range items {
		decoratedItems[i] = decorated{
			item: item,
			km:   s.DistanceKm(center, item.Location()),
		}
	}

	sort.SliceStable(decoratedItems, func(i, j int) bool {
		return decoratedItems[i].km < decoratedItems[j].km
	})

	sorted := make([]geo.Item, len(items))
	for i, d := range decoratedItems {
		sorted[i] = d.item
	}

	return sorted
}

// FilterWithinRadius retains items whose distance from center does not
// exceed radiusKm. The boundary is inclusive and input order is
// preserved.
func (s *GeoService) FilterWithinRadius(items []geo.Item, center geo.Coordinate, radiusKm float64) []geo.Item {
	var within []geo.Item
	for _, item := range items {
		if s.DistanceKm(center, item.Location()) <= radiusKm {
			within = append(within, item)
		}
	}

	return within
}
