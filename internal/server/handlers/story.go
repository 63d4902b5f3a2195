package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"waypost/internal/domain/content"
	"waypost/internal/domain/geo"
	"waypost/internal/service/feed"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	feed    *feed.Service
	backend content.Backend
	userID  string
}

// NewStoryHandler creates a new story handler. userID identifies the
// gateway's authenticated user; the gateway is a single-user process.
func NewStoryHandler(feedService *feed.Service, backend content.Backend, userID string) *StoryHandler {
	return &StoryHandler{
		feed:    feedService,
		backend: backend,
		userID:  userID,
	}
}

// parseCoordinate reads optional lat/lng query parameters. Both must be
// present for a coordinate; neither present means nil.
func parseCoordinate(r *http.Request) (*geo.Coordinate, error) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, err
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, err
	}

	return &geo.Coordinate{Latitude: lat, Longitude: lng}, nil
}

// ListStories returns the story feed
func (h *StoryHandler) ListStories(w http.ResponseWriter, r *http.Request) {
	var filter content.StoryFilter

	sort, err := content.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid sort key", err)
		return
	}
	filter.Sort = sort

	center, err := parseCoordinate(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid location parameters", err)
		return
	}
	filter.Center = center

	if sort == content.SortNearest && center == nil {
		respondWithError(w, http.StatusBadRequest, "Nearest sort requires a location", nil)
		return
	}

	if withinStr := r.URL.Query().Get("within_km"); withinStr != "" {
		within, err := strconv.ParseFloat(withinStr, 64)
		if err != nil || within <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid within_km", err)
			return
		}
		if center == nil {
			respondWithError(w, http.StatusBadRequest, "within_km requires a location", nil)
			return
		}
		filter.WithinKm = within
	}

	filter.AuthorID = r.URL.Query().Get("author_id")

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	stories, err := h.feed.Stories(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list stories", err)
		return
	}

	respondWithJSON(w, http.StatusOK, stories)
}

// GetStory returns a single story
func (h *StoryHandler) GetStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing story ID", nil)
		return
	}

	story, err := h.backend.GetStory(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to get story", err)
		return
	}

	respondWithJSON(w, http.StatusOK, story)
}

// CreateStory publishes a new story
func (h *StoryHandler) CreateStory(w http.ResponseWriter, r *http.Request) {
	type createStoryRequest struct {
		Title      string         `json:"title"`
		Body       string         `json:"body"`
		MediaURLs  []string       `json:"media_urls"`
		Coordinate geo.Coordinate `json:"coordinate"`
	}

	var req createStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Title == "" && req.Body == "" {
		respondWithError(w, http.StatusBadRequest, "Story needs a title or body", nil)
		return
	}

	story := content.Story{
		AuthorID:   h.userID,
		Title:      req.Title,
		Body:       req.Body,
		MediaURLs:  req.MediaURLs,
		Coordinate: req.Coordinate,
	}

	created, err := h.backend.CreateStory(r.Context(), story)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to create story", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// reactionRequest carries a like or pin toggle body.
type reactionRequest struct {
	Value bool `json:"value"`
}

// SetLiked sets or clears the viewer's like
func (h *StoryHandler) SetLiked(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.backend.SetLiked(r.Context(), id, h.userID, req.Value); err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to update like", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"liked": req.Value})
}

// SetPinned sets or clears the viewer's pin
func (h *StoryHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.backend.SetPinned(r.Context(), id, h.userID, req.Value); err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to update pin", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"pinned": req.Value})
}

// ListComments returns comments for a story
func (h *StoryHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit := 50
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	comments, err := h.backend.ListComments(r.Context(), id, limit, offset)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to list comments", err)
		return
	}

	respondWithJSON(w, http.StatusOK, comments)
}

// CreateComment attaches a comment to a story
func (h *StoryHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	type createCommentRequest struct {
		Body string `json:"body"`
	}

	id := chi.URLParam(r, "id")

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Body == "" {
		respondWithError(w, http.StatusBadRequest, "Comment body is required", nil)
		return
	}

	comment := content.Comment{
		StoryID:  id,
		AuthorID: h.userID,
		Body:     req.Body,
	}

	created, err := h.backend.CreateComment(r.Context(), comment)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to create comment", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// CreateReport files a moderation report
func (h *StoryHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	type createReportRequest struct {
		TargetID   string               `json:"target_id"`
		TargetType string               `json:"target_type"`
		Reason     content.ReportReason `json:"reason"`
		Detail     string               `json:"detail"`
	}

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.TargetID == "" {
		respondWithError(w, http.StatusBadRequest, "Report target is required", nil)
		return
	}

	report := content.Report{
		ID:         uuid.New().String(),
		ReporterID: h.userID,
		TargetID:   req.TargetID,
		TargetType: req.TargetType,
		Reason:     req.Reason,
		Detail:     req.Detail,
	}

	if err := h.backend.CreateReport(r.Context(), report); err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to create report", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"id": report.ID})
}
