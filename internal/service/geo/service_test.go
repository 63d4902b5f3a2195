package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waypost/internal/domain/geo"
)

// testItem is a minimal geo.Item for engine tests.
type testItem struct {
	name   string
	coord  geo.Coordinate
	radius float64
}

func (t testItem) Location() geo.Coordinate { return t.coord }
func (t testItem) RelevanceRadius() float64 { return t.radius }

var (
	newYork    = geo.Coordinate{Latitude: 40.7128, Longitude: -74.0060}
	losAngeles = geo.Coordinate{Latitude: 34.0522, Longitude: -118.2437}
)

func TestDistanceKmKnownFixture(t *testing.T) {
	s := NewGeoService()

	// New York to Los Angeles, within 1%.
	d := s.DistanceKm(newYork, losAngeles)
	assert.InEpsilon(t, 3936.0, d, 0.01)
}

func TestDistanceKmSymmetry(t *testing.T) {
	s := NewGeoService()

	pairs := [][2]geo.Coordinate{
		{newYork, losAngeles},
		{{Latitude: -33.8688, Longitude: 151.2093}, {Latitude: 51.5074, Longitude: -0.1278}},
		{{Latitude: 0.001, Longitude: 0.001}, {Latitude: -0.001, Longitude: -0.001}},
	}

	for _, pair := range pairs {
		assert.InDelta(t, s.DistanceKm(pair[0], pair[1]), s.DistanceKm(pair[1], pair[0]), 1e-9)
	}
}

func TestDistanceKmZeroIdentity(t *testing.T) {
	s := NewGeoService()

	points := []geo.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 90, Longitude: 0},
		{Latitude: -90, Longitude: 0},
		{Latitude: 0, Longitude: 180},
		{Latitude: 0, Longitude: -180},
		{Latitude: 40.7128, Longitude: -74.0060},
	}

	for _, p := range points {
		assert.Zero(t, s.DistanceKm(p, p))
	}
}

func TestDistanceKmAntipodalIsFinite(t *testing.T) {
	s := NewGeoService()

	d := s.DistanceKm(geo.Coordinate{Latitude: 0, Longitude: 0}, geo.Coordinate{Latitude: 0, Longitude: 180})
	require.False(t, d != d, "distance must not be NaN")
	// Half the Earth's circumference on the sphere model.
	assert.InEpsilon(t, 20015.0, d, 0.01)
}

func TestEvaluateUnknownLocation(t *testing.T) {
	s := NewGeoService()

	item := testItem{coord: geo.Coordinate{Latitude: 1, Longitude: 1}, radius: 500}
	result := s.Evaluate(item, nil)

	assert.False(t, result.IsRelevant)
	assert.Nil(t, result.DistanceKm)
	assert.Nil(t, result.DistanceMeters)
}

func TestEvaluateBoundaryInclusive(t *testing.T) {
	s := NewGeoService()

	viewer := geo.Coordinate{Latitude: 0, Longitude: 0}
	coord := geo.Coordinate{Latitude: 0, Longitude: 0.0045}
	exactMeters := s.DistanceKm(coord, viewer) * 1000

	// Distance exactly equal to the radius counts as relevant.
	onBoundary := s.Evaluate(testItem{coord: coord, radius: exactMeters}, &viewer)
	assert.True(t, onBoundary.IsRelevant)

	// Any shortfall in the radius flips the verdict.
	outside := s.Evaluate(testItem{coord: coord, radius: exactMeters - 0.001}, &viewer)
	assert.False(t, outside.IsRelevant)
}

func TestEvaluateZeroRadiusNeverRelevant(t *testing.T) {
	s := NewGeoService()

	viewer := geo.Coordinate{Latitude: 0, Longitude: 0}
	result := s.Evaluate(testItem{coord: viewer, radius: 0}, &viewer)

	assert.False(t, result.IsRelevant)
	require.NotNil(t, result.DistanceKm)
	assert.Zero(t, *result.DistanceKm)
}

func TestEvaluateNearbyUpdateScenario(t *testing.T) {
	s := NewGeoService()

	viewer := geo.Coordinate{Latitude: 0, Longitude: 0}

	// ~490 m east with a 500 m radius: in range, distance within 5% of 500 m.
	near := s.Evaluate(testItem{coord: geo.Coordinate{Latitude: 0, Longitude: 0.0044}, radius: 500}, &viewer)
	assert.True(t, near.IsRelevant)
	require.NotNil(t, near.DistanceMeters)
	assert.InEpsilon(t, 500.0, *near.DistanceMeters, 0.05)

	// ~1.1 km east with the same radius: out of range.
	far := s.Evaluate(testItem{coord: geo.Coordinate{Latitude: 0, Longitude: 0.01}, radius: 500}, &viewer)
	assert.False(t, far.IsRelevant)
	require.NotNil(t, far.DistanceMeters)
	assert.Greater(t, *far.DistanceMeters, 1000.0)
}

func TestSortByDistance(t *testing.T) {
	s := NewGeoService()

	center := geo.Coordinate{Latitude: 0, Longitude: 0}
	items := []geo.Item{
		testItem{name: "far", coord: geo.Coordinate{Latitude: 0, Longitude: 2}},
		testItem{name: "near", coord: geo.Coordinate{Latitude: 0, Longitude: 0.5}},
		testItem{name: "mid", coord: geo.Coordinate{Latitude: 0, Longitude: 1}},
	}

	sorted := s.SortByDistance(items, center)

	require.Len(t, sorted, 3)
	assert.Equal(t, "near", sorted[0].(testItem).name)
	assert.Equal(t, "mid", sorted[1].(testItem).name)
	assert.Equal(t, "far", sorted[2].(testItem).name)
}

func TestSortByDistanceStable(t *testing.T) {
	s := NewGeoService()

	center := geo.Coordinate{Latitude: 0, Longitude: 0}

	// East and west at one degree are exactly equidistant from the
	// center, so their input order must survive the sort.
	items := []geo.Item{
		testItem{name: "east", coord: geo.Coordinate{Latitude: 0, Longitude: 1}},
		testItem{name: "west", coord: geo.Coordinate{Latitude: 0, Longitude: -1}},
		testItem{name: "close", coord: geo.Coordinate{Latitude: 0, Longitude: 0.1}},
	}

	sorted := s.SortByDistance(items, center)

	require.Len(t, sorted, 3)
	assert.Equal(t, "close", sorted[0].(testItem).name)
	assert.Equal(t, "east", sorted[1].(testItem).name)
	assert.Equal(t, "west", sorted[2].(testItem).name)
}

func TestFilterWithinRadius(t *testing.T) {
	s := NewGeoService()

	center := geo.Coordinate{Latitude: 0, Longitude: 0}
	boundary := geo.Coordinate{Latitude: 0, Longitude: 1}
	boundaryKm := s.DistanceKm(center, boundary)

	items := []geo.Item{
		testItem{name: "inside", coord: geo.Coordinate{Latitude: 0, Longitude: 0.5}},
		testItem{name: "boundary", coord: boundary},
		testItem{name: "outside", coord: geo.Coordinate{Latitude: 0, Longitude: 1.5}},
	}

	within := s.FilterWithinRadius(items, center, boundaryKm)

	require.Len(t, within, 2)
	assert.Equal(t, "inside", within[0].(testItem).name)
	assert.Equal(t, "boundary", within[1].(testItem).name)
}

func TestFilterWithinRadiusEmpty(t *testing.T) {
	s := NewGeoService()

	within := s.FilterWithinRadius(nil, geo.Coordinate{}, 10)
	assert.Empty(t, within)
}
