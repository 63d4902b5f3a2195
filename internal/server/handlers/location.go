package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"waypost/internal/domain/geo"
	"waypost/internal/domain/location"
	"waypost/internal/service/notify"
)

// LocationHandler handles location and geospatial HTTP requests. The UI
// reports permission changes and position fixes here; the handler feeds
// them into the tracker and nudges the notification watcher so a newly
// relevant update surfaces without waiting for the next timer tick.
type LocationHandler struct {
	tracker *location.Tracker
	watcher *notify.Watcher
	engine  geo.Service
	places  geo.PlaceResolver
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(tracker *location.Tracker, watcher *notify.Watcher, engine geo.Service, places geo.PlaceResolver) *LocationHandler {
	return &LocationHandler{
		tracker: tracker,
		watcher: watcher,
		engine:  engine,
		places:  places,
	}
}

// GetState returns the permission state and current fix
func (h *LocationHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"state":    h.tracker.State(),
		"location": h.tracker.Current(),
	})
}

// SetPermission applies a permission state transition
func (h *LocationHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	type permissionRequest struct {
		State location.PermissionState `json:"state"`
	}

	var req permissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.tracker.Transition(req.State); err != nil {
		respondWithError(w, http.StatusConflict, "Invalid permission transition", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"state": h.tracker.State(),
	})
}

// SetFix records a position fix and runs an immediate dispatch pass
func (h *LocationHandler) SetFix(w http.ResponseWriter, r *http.Request) {
	var coord geo.Coordinate
	if err := json.NewDecoder(r.Body).Decode(&coord); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.tracker.UpdateFix(coord)

	if current := h.tracker.Current(); current != nil {
		h.watcher.Tick(r.Context())
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"state":    h.tracker.State(),
		"location": h.tracker.Current(),
	})
}

// ClearFix drops the current position fix
func (h *LocationHandler) ClearFix(w http.ResponseWriter, r *http.Request) {
	h.tracker.ClearFix()
	w.WriteHeader(http.StatusNoContent)
}

// GetDistance returns the great-circle distance between two coordinates
func (h *LocationHandler) GetDistance(w http.ResponseWriter, r *http.Request) {
	parse := func(name string) (float64, bool) {
		value, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
		return value, err == nil
	}

	fromLat, ok1 := parse("from_lat")
	fromLng, ok2 := parse("from_lng")
	toLat, ok3 := parse("to_lat")
	toLng, ok4 := parse("to_lng")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		respondWithError(w, http.StatusBadRequest, "Missing or invalid coordinates", nil)
		return
	}

	km := h.engine.DistanceKm(
		geo.Coordinate{Latitude: fromLat, Longitude: fromLng},
		geo.Coordinate{Latitude: toLat, Longitude: toLng},
	)

	respondWithJSON(w, http.StatusOK, map[string]float64{
		"distance_km": km,
		"distance_m":  km * 1000,
	})
}

// GetPlace resolves a coordinate to a short place label
func (h *LocationHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoordinate(r)
	if err != nil || coord == nil {
		respondWithError(w, http.StatusBadRequest, "Missing location parameters", err)
		return
	}

	label, err := h.places.ResolvePlaceName(r.Context(), *coord)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve place name", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"place_name": label})
}
