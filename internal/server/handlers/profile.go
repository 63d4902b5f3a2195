package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"waypost/internal/domain/content"
	"waypost/internal/domain/profile"
)

// ProfileHandler handles profile and preference HTTP requests
type ProfileHandler struct {
	profiles profile.Service
	prefs    profile.Preferences
	userID   string
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles profile.Service, prefs profile.Preferences, userID string) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		prefs:    prefs,
		userID:   userID,
	}
}

// GetProfile returns a profile by ID. "me" resolves to the gateway's
// authenticated user.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" || id == "me" {
		id = h.userID
	}

	p, err := h.profiles.GetProfile(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to get profile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// UpdateProfile saves profile changes for the authenticated user
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p.ID = h.userID

	if err := h.profiles.UpdateProfile(r.Context(), p); err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to update profile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// GetMutes returns the mute flag for every category.
func (h *ProfileHandler) GetMutes(w http.ResponseWriter, r *http.Request) {
	muted, err := h.prefs.MuteSet(r.Context(), h.userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load mute preferences", err)
		return
	}

	type muteInfo struct {
		Category content.Category `json:"category"`
		Label    string           `json:"label"`
		Muted    bool             `json:"muted"`
	}

	categories := content.Categories()
	payload := make([]muteInfo, 0, len(categories))
	for _, category := range categories {
		payload = append(payload, muteInfo{
			Category: category,
			Label:    category.Label(),
			Muted:    muted.Muted(category),
		})
	}

	respondWithJSON(w, http.StatusOK, payload)
}

// SetMute sets one category's mute flag
func (h *ProfileHandler) SetMute(w http.ResponseWriter, r *http.Request) {
	type setMuteRequest struct {
		Muted bool `json:"muted"`
	}

	category := content.Category(chi.URLParam(r, "category"))

	var req setMuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.prefs.SetMuted(r.Context(), h.userID, category, req.Muted); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to set mute", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"muted":    req.Muted,
	})
}
