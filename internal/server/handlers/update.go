package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"waypost/internal/domain/content"
	"waypost/internal/domain/geo"
	"waypost/internal/service/feed"
	"waypost/internal/service/notify"
)

// UpdateHandler handles local-update HTTP requests
type UpdateHandler struct {
	feed    *feed.Service
	backend content.Backend
	source  notify.LocationSource
	userID  string
}

// NewUpdateHandler creates a new local-update handler
func NewUpdateHandler(feedService *feed.Service, backend content.Backend, source notify.LocationSource, userID string) *UpdateHandler {
	return &UpdateHandler{
		feed:    feedService,
		backend: backend,
		source:  source,
		userID:  userID,
	}
}

// ListNearby returns active local updates ordered by distance from the
// viewer. An explicit lat/lng pair overrides the tracked location.
func (h *UpdateHandler) ListNearby(w http.ResponseWriter, r *http.Request) {
	viewer, err := parseCoordinate(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid location parameters", err)
		return
	}
	if viewer == nil {
		viewer = h.source.Current()
	}
	if viewer == nil {
		respondWithError(w, http.StatusBadRequest, "No viewer location available", nil)
		return
	}

	updates, err := h.feed.NearbyUpdates(r.Context(), *viewer)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list nearby updates", err)
		return
	}

	respondWithJSON(w, http.StatusOK, updates)
}

// CreateUpdate publishes a local update. The radius bound is enforced
// here so a malformed request never reaches the backend or the engine.
func (h *UpdateHandler) CreateUpdate(w http.ResponseWriter, r *http.Request) {
	type createUpdateRequest struct {
		Category     content.Category `json:"category"`
		Body         string           `json:"body"`
		Coordinate   geo.Coordinate   `json:"coordinate"`
		RadiusMeters float64          `json:"radius_meters"`
	}

	var req createUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if !req.Category.Valid() {
		respondWithError(w, http.StatusBadRequest, "Unknown category", fmt.Errorf("category %q", req.Category))
		return
	}
	if req.RadiusMeters < content.MinUpdateRadiusMeters || req.RadiusMeters > content.MaxUpdateRadiusMeters {
		respondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("Radius must be between %dm and %dm", content.MinUpdateRadiusMeters, content.MaxUpdateRadiusMeters), nil)
		return
	}
	if req.Body == "" {
		respondWithError(w, http.StatusBadRequest, "Update body is required", nil)
		return
	}

	update := content.LocalUpdate{
		AuthorID:     h.userID,
		Category:     req.Category,
		Body:         req.Body,
		Coordinate:   req.Coordinate,
		RadiusMeters: req.RadiusMeters,
	}

	created, err := h.backend.CreateLocalUpdate(r.Context(), update)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to create update", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// ListCategories returns the closed category set with display metadata.
func (h *UpdateHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	type categoryInfo struct {
		ID    content.Category `json:"id"`
		Label string           `json:"label"`
		Color string           `json:"color"`
		Icon  string           `json:"icon"`
	}

	categories := content.Categories()
	payload := make([]categoryInfo, 0, len(categories))
	for _, category := range categories {
		payload = append(payload, categoryInfo{
			ID:    category,
			Label: category.Label(),
			Color: category.Color(),
			Icon:  category.Icon(),
		})
	}

	respondWithJSON(w, http.StatusOK, payload)
}
