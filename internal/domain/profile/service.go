package profile

import (
	"context"
	"time"

	"waypost/internal/domain/content"
	"waypost/internal/domain/geo"
)

// Profile represents a user of the system as presented to other users.
// The backend actor owns the durable record.
type Profile struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
	Bio         string          `json:"bio,omitempty"`
	JoinedAt    time.Time       `json:"joined_at"`
	StoryCount  int             `json:"story_count"`
	LastKnown   *geo.Coordinate `json:"last_known,omitempty"`
}

// Service defines profile access through the backend actor.
type Service interface {
	// GetProfile returns a profile by user ID
	GetProfile(ctx context.Context, id string) (*Profile, error)

	// UpdateProfile saves profile changes for the authenticated user
	UpdateProfile(ctx context.Context, p Profile) error
}

// Preferences manages the per-user, per-category mute flags that gate
// local-update notifications. Flags persist across sessions; a missing
// flag means unmuted.
type Preferences interface {
	// MuteSet returns the user's current mute flags
	MuteSet(ctx context.Context, userID string) (content.MuteSet, error)

	// SetMuted sets one category's mute flag
	SetMuted(ctx context.Context, userID string, category content.Category, muted bool) error
}
