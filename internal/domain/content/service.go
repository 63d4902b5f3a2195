package content

import (
	"context"
)

// Backend defines the remote actor owning all durable content state. The
// gateway treats it as an opaque RPC boundary: business rules (radius
// bounds aside), persistence, and moderation are enforced on the other
// side of this interface.
type Backend interface {
	// ListStories returns stories matching the filter
	ListStories(ctx context.Context, filter StoryFilter) ([]Story, error)

	// GetStory returns a story by ID
	GetStory(ctx context.Context, id string) (*Story, error)

	// CreateStory publishes a story and returns the canonical record
	CreateStory(ctx context.Context, story Story) (*Story, error)

	// SetLiked sets or clears the viewer's like on a story
	SetLiked(ctx context.Context, storyID, userID string, liked bool) error

	// SetPinned sets or clears the viewer's pin on a story
	SetPinned(ctx context.Context, storyID, userID string, pinned bool) error

	// ListComments returns comments for a story, oldest first
	ListComments(ctx context.Context, storyID string, limit, offset int) ([]Comment, error)

	// CreateComment attaches a comment to a story
	CreateComment(ctx context.Context, comment Comment) (*Comment, error)

	// CreateReport files a moderation report
	CreateReport(ctx context.Context, report Report) error

	// ListDrafts returns the user's drafts, most recently updated first
	ListDrafts(ctx context.Context, userID string) ([]Draft, error)

	// SaveDraft creates or updates a draft
	SaveDraft(ctx context.Context, draft Draft) (*Draft, error)

	// DeleteDraft removes a draft
	DeleteDraft(ctx context.Context, userID, draftID string) error

	// ListLocalUpdates returns all currently active local updates
	ListLocalUpdates(ctx context.Context) ([]LocalUpdate, error)

	// CreateLocalUpdate publishes a local update
	CreateLocalUpdate(ctx context.Context, update LocalUpdate) (*LocalUpdate, error)
}
