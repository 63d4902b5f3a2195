package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"waypost/internal/domain/content"
)

// DraftHandler handles draft-related HTTP requests
type DraftHandler struct {
	backend content.Backend
	userID  string
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(backend content.Backend, userID string) *DraftHandler {
	return &DraftHandler{
		backend: backend,
		userID:  userID,
	}
}

// ListDrafts returns the user's drafts
func (h *DraftHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.backend.ListDrafts(r.Context(), h.userID)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to list drafts", err)
		return
	}

	respondWithJSON(w, http.StatusOK, drafts)
}

// SaveDraft creates or updates a draft. A draft without an ID gets a
// client-generated one, which it keeps until publication.
func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var draft content.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	draft.AuthorID = h.userID
	draft.UpdatedAt = time.Now().UTC()

	saved, err := h.backend.SaveDraft(r.Context(), draft)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to save draft", err)
		return
	}

	respondWithJSON(w, http.StatusOK, saved)
}

// DeleteDraft removes a draft
func (h *DraftHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing draft ID", nil)
		return
	}

	if err := h.backend.DeleteDraft(r.Context(), h.userID, id); err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to delete draft", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
