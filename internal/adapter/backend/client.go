// Package backend is the HTTP client for the remote content service. It
// is the only component allowed to talk to the backend actor; everything
// above it works against the domain interfaces.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"waypost/internal/domain/content"
	"waypost/internal/domain/profile"
)

// Client implements content.Backend and profile.Service over the backend
// HTTP API.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewClient creates a backend client.
func NewClient(baseURL, authToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiError mirrors the backend's error envelope.
type apiError struct {
	Error string `json:"error"`
}

// do sends a request and decodes a JSON response into out. A nil body
// sends no payload; a nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error requesting %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope apiError
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
			return fmt.Errorf("backend %s %s: %s (%s)", method, path, envelope.Error, resp.Status)
		}
		return fmt.Errorf("backend %s %s: unexpected status %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response for %s %s: %w", method, path, err)
	}
	return nil
}

// ListStories returns stories matching the filter.
func (c *Client) ListStories(ctx context.Context, filter content.StoryFilter) ([]content.Story, error) {
	query := url.Values{}
	if filter.AuthorID != "" {
		query.Set("author_id", filter.AuthorID)
	}
	if filter.Sort != "" {
		query.Set("sort", string(filter.Sort))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}

	var stories []content.Story
	if err := c.do(ctx, http.MethodGet, "/v1/stories", query, nil, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// GetStory returns a story by ID.
func (c *Client) GetStory(ctx context.Context, id string) (*content.Story, error) {
	var story content.Story
	if err := c.do(ctx, http.MethodGet, "/v1/stories/"+url.PathEscape(id), nil, nil, &story); err != nil {
		return nil, err
	}
	return &story, nil
}

// CreateStory publishes a story and returns the canonical record.
func (c *Client) CreateStory(ctx context.Context, story content.Story) (*content.Story, error) {
	var created content.Story
	if err := c.do(ctx, http.MethodPost, "/v1/stories", nil, story, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// reactionPayload carries a like or pin toggle.
type reactionPayload struct {
	UserID string `json:"user_id"`
	Value  bool   `json:"value"`
}

// SetLiked sets or clears the viewer's like on a story.
func (c *Client) SetLiked(ctx context.Context, storyID, userID string, liked bool) error {
	path := "/v1/stories/" + url.PathEscape(storyID) + "/like"
	return c.do(ctx, http.MethodPut, path, nil, reactionPayload{UserID: userID, Value: liked}, nil)
}

// SetPinned sets or clears the viewer's pin on a story.
func (c *Client) SetPinned(ctx context.Context, storyID, userID string, pinned bool) error {
	path := "/v1/stories/" + url.PathEscape(storyID) + "/pin"
	return c.do(ctx, http.MethodPut, path, nil, reactionPayload{UserID: userID, Value: pinned}, nil)
}

// ListComments returns comments for a story, oldest first.
func (c *Client) ListComments(ctx context.Context, storyID string, limit, offset int) ([]content.Comment, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var comments []content.Comment
	path := "/v1/stories/" + url.PathEscape(storyID) + "/comments"
	if err := c.do(ctx, http.MethodGet, path, query, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment attaches a comment to a story.
func (c *Client) CreateComment(ctx context.Context, comment content.Comment) (*content.Comment, error) {
	var created content.Comment
	path := "/v1/stories/" + url.PathEscape(comment.StoryID) + "/comments"
	if err := c.do(ctx, http.MethodPost, path, nil, comment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateReport files a moderation report.
func (c *Client) CreateReport(ctx context.Context, report content.Report) error {
	return c.do(ctx, http.MethodPost, "/v1/reports", nil, report, nil)
}

// ListDrafts returns the user's drafts, most recently updated first.
func (c *Client) ListDrafts(ctx context.Context, userID string) ([]content.Draft, error) {
	query := url.Values{}
	query.Set("user_id", userID)

	var drafts []content.Draft
	if err := c.do(ctx, http.MethodGet, "/v1/drafts", query, nil, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

// SaveDraft creates or updates a draft.
func (c *Client) SaveDraft(ctx context.Context, draft content.Draft) (*content.Draft, error) {
	var saved content.Draft
	if err := c.do(ctx, http.MethodPut, "/v1/drafts/"+url.PathEscape(draft.ID), nil, draft, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteDraft removes a draft.
func (c *Client) DeleteDraft(ctx context.Context, userID, draftID string) error {
	query := url.Values{}
	query.Set("user_id", userID)
	return c.do(ctx, http.MethodDelete, "/v1/drafts/"+url.PathEscape(draftID), query, nil, nil)
}

// ListLocalUpdates returns all currently active local updates.
func (c *Client) ListLocalUpdates(ctx context.Context) ([]content.LocalUpdate, error) {
	var updates []content.LocalUpdate
	if err := c.do(ctx, http.MethodGet, "/v1/updates", nil, nil, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// CreateLocalUpdate publishes a local update. Radius bounds are checked
// here as well as at the API surface so no out-of-range update reaches
// the backend regardless of entry point.
func (c *Client) CreateLocalUpdate(ctx context.Context, update content.LocalUpdate) (*content.LocalUpdate, error) {
	if update.RadiusMeters < content.MinUpdateRadiusMeters || update.RadiusMeters > content.MaxUpdateRadiusMeters {
		return nil, fmt.Errorf("update radius %.0fm outside [%d,%d]",
			update.RadiusMeters, content.MinUpdateRadiusMeters, content.MaxUpdateRadiusMeters)
	}

	var created content.LocalUpdate
	if err := c.do(ctx, http.MethodPost, "/v1/updates", nil, update, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetProfile returns a profile by user ID.
func (c *Client) GetProfile(ctx context.Context, id string) (*profile.Profile, error) {
	var p profile.Profile
	if err := c.do(ctx, http.MethodGet, "/v1/profiles/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile saves profile changes for the authenticated user.
func (c *Client) UpdateProfile(ctx context.Context, p profile.Profile) error {
	return c.do(ctx, http.MethodPut, "/v1/profiles/"+url.PathEscape(p.ID), nil, p, nil)
}

var (
	_ content.Backend = (*Client)(nil)
	_ profile.Service = (*Client)(nil)
)
