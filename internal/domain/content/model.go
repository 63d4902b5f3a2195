package content

import (
	"fmt"
	"time"

	"waypost/internal/domain/geo"
)

// Category classifies a local update. The set is closed; every switch over
// it must handle all members.
type Category string

const (
	CategoryTraffic   Category = "traffic"
	CategoryPower     Category = "power"
	CategoryWeather   Category = "weather"
	CategorySafety    Category = "safety"
	CategoryEvent     Category = "event"
	CategoryCommunity Category = "community"
)

// Categories returns all valid categories in display order.
func Categories() []Category {
	return []Category{
		CategoryTraffic,
		CategoryPower,
		CategoryWeather,
		CategorySafety,
		CategoryEvent,
		CategoryCommunity,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryTraffic, CategoryPower, CategoryWeather,
		CategorySafety, CategoryEvent, CategoryCommunity:
		return true
	}
	return false
}

// Label returns the human-readable category name.
func (c Category) Label() string {
	switch c {
	case CategoryTraffic:
		return "Traffic"
	case CategoryPower:
		return "Power outage"
	case CategoryWeather:
		return "Weather"
	case CategorySafety:
		return "Safety"
	case CategoryEvent:
		return "Event"
	case CategoryCommunity:
		return "Community"
	}
	return string(c)
}

// Color returns the hex accent color for the category.
func (c Category) Color() string {
	switch c {
	case CategoryTraffic:
		return "#e8590c"
	case CategoryPower:
		return "#f59f00"
	case CategoryWeather:
		return "#1c7ed6"
	case CategorySafety:
		return "#e03131"
	case CategoryEvent:
		return "#9c36b5"
	case CategoryCommunity:
		return "#2f9e44"
	}
	return "#495057"
}

// Icon returns the icon identifier for the category.
func (c Category) Icon() string {
	switch c {
	case CategoryTraffic:
		return "car"
	case CategoryPower:
		return "zap-off"
	case CategoryWeather:
		return "cloud-rain"
	case CategorySafety:
		return "alert-triangle"
	case CategoryEvent:
		return "calendar"
	case CategoryCommunity:
		return "users"
	}
	return "map-pin"
}

// MuteSet maps categories to a muted flag. Missing keys mean unmuted.
type MuteSet map[Category]bool

// Muted reports whether the category is muted.
func (m MuteSet) Muted(c Category) bool {
	return m[c]
}

// SortKey identifies an ordering for feed queries.
type SortKey string

const (
	SortNearest    SortKey = "nearest"
	SortNewest     SortKey = "newest"
	SortMostViewed SortKey = "most_viewed"
	SortMostLiked  SortKey = "most_liked"
	SortMostPinned SortKey = "most_pinned"
)

// ParseSortKey validates a sort key string, defaulting to newest.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortNewest, nil
	}
	switch key := SortKey(s); key {
	case SortNearest, SortNewest, SortMostViewed, SortMostLiked, SortMostPinned:
		return key, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Story represents a short post pinned to a coordinate.
type Story struct {
	ID            string         `json:"id"`
	AuthorID      string         `json:"author_id"`
	AuthorName    string         `json:"author_name"`
	Title         string         `json:"title"`
	Body          string         `json:"body"`
	MediaURLs     []string       `json:"media_urls,omitempty"`
	Coordinate    geo.Coordinate `json:"coordinate"`
	PlaceName     string         `json:"place_name,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	ViewCount     int            `json:"view_count"`
	LikeCount     int            `json:"like_count"`
	PinCount      int            `json:"pin_count"`
	LikedByViewer bool           `json:"liked_by_viewer"`
	PinnedByVwr   bool           `json:"pinned_by_viewer"`
	DistanceKm    *float64       `json:"distance_km,omitempty"`
}

// Location implements geo.Item.
func (s Story) Location() geo.Coordinate { return s.Coordinate }

// RelevanceRadius implements geo.Item. Stories carry no relevance zone.
func (s Story) RelevanceRadius() float64 { return 0 }

// LocalUpdate is an ephemeral radius-scoped notice such as a traffic or
// power-outage alert. RadiusMeters is validated to [200,1000] at creation;
// the engine assumes well-formed values.
type LocalUpdate struct {
	ID           string         `json:"id"`
	AuthorID     string         `json:"author_id"`
	Category     Category       `json:"category"`
	Body         string         `json:"body"`
	Coordinate   geo.Coordinate `json:"coordinate"`
	RadiusMeters float64        `json:"radius_meters"`
	CreatedAt    time.Time      `json:"created_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	PlaceName    string         `json:"place_name,omitempty"`
	DistanceKm   *float64       `json:"distance_km,omitempty"`
}

// Location implements geo.Item.
func (u LocalUpdate) Location() geo.Coordinate { return u.Coordinate }

// RelevanceRadius implements geo.Item.
func (u LocalUpdate) RelevanceRadius() float64 { return u.RadiusMeters }

// Radius bounds for local updates, in meters.
const (
	MinUpdateRadiusMeters = 200
	MaxUpdateRadiusMeters = 1000
)

// Comment is a reply attached to a story.
type Comment struct {
	ID         string    `json:"id"`
	StoryID    string    `json:"story_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReportReason classifies a content report.
type ReportReason string

const (
	ReasonSpam       ReportReason = "spam"
	ReasonHarassment ReportReason = "harassment"
	ReasonFalseInfo  ReportReason = "false_info"
	ReasonOther      ReportReason = "other"
)

// Report flags a story or comment for backend moderation.
type Report struct {
	ID         string       `json:"id"`
	ReporterID string       `json:"reporter_id"`
	TargetID   string       `json:"target_id"`
	TargetType string       `json:"target_type"`
	Reason     ReportReason `json:"reason"`
	Detail     string       `json:"detail,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Draft is a story composed locally and not yet published. It keeps a
// client-generated ID until the backend assigns a canonical story ID.
type Draft struct {
	ID         string          `json:"id"`
	AuthorID   string          `json:"author_id"`
	Title      string          `json:"title"`
	Body       string          `json:"body"`
	MediaURLs  []string        `json:"media_urls,omitempty"`
	Coordinate *geo.Coordinate `json:"coordinate,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// StoryFilter defines criteria for story feed queries.
type StoryFilter struct {
	AuthorID string
	Sort     SortKey
	Center   *geo.Coordinate
	WithinKm float64
	Limit    int
	Offset   int
}
