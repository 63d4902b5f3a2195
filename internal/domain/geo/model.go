package geo

// Coordinate represents a geographic point. It is treated as an immutable
// value; all engine computations take copies.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Item is implemented by any coordinate-tagged content entity subject to
// distance and relevance computation.
type Item interface {
	// Location returns the point the item is pinned to
	Location() Coordinate

	// RelevanceRadius returns the item's relevance zone in meters.
	// Zero means the item has no zone (point-proximity only) and is
	// never "relevant" in the radius sense.
	RelevanceRadius() float64
}

// RelevanceResult is the verdict of evaluating an item against a viewer
// location. Nil distance fields mean no reference location was available,
// which is distinct from an out-of-range verdict.
type RelevanceResult struct {
	IsRelevant     bool     `json:"is_relevant"`
	DistanceKm     *float64 `json:"distance_km"`
	DistanceMeters *float64 `json:"distance_meters"`
}

// Place holds the structured payload of a reverse-geocoding lookup.
type Place struct {
	DisplayName string
	Address     Address
}

// Address carries the locality fields a geocoding provider may return.
// Any of them can be empty.
type Address struct {
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	Suburb        string `json:"suburb"`
	Neighbourhood string `json:"neighbourhood"`
	County        string `json:"county"`
	State         string `json:"state"`
}
