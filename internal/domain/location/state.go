package location

import (
	"fmt"
	"sync"

	"waypost/internal/domain/geo"
)

// PermissionState models the platform geolocation permission lifecycle.
type PermissionState string

const (
	// StateUnsupported means the platform has no geolocation capability.
	StateUnsupported PermissionState = "unsupported"

	// StateInsecure means geolocation is present but blocked by an
	// insecure context.
	StateInsecure PermissionState = "insecure"

	// StatePrompt means permission has not been requested yet.
	StatePrompt PermissionState = "prompt"

	// StateRequesting means a permission request is in flight.
	StateRequesting PermissionState = "requesting"

	// StateGranted means the platform is delivering position fixes.
	StateGranted PermissionState = "granted"

	// StateDenied means the user refused the permission request.
	StateDenied PermissionState = "denied"
)

// transitions holds the allowed state machine edges. Unsupported and
// insecure are terminal: they describe the platform, not the user.
var transitions = map[PermissionState][]PermissionState{
	StatePrompt:     {StateRequesting},
	StateRequesting: {StateGranted, StateDenied},
	StateGranted:    {StateDenied},
	StateDenied:     {StateRequesting},
}

// CanTransition reports whether the edge from s to next is allowed.
func (s PermissionState) CanTransition(next PermissionState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Tracker folds permission state and the latest position fix into the
// single value the relevance engine consumes: a coordinate, or nil when
// the viewer location is unknown. Platform callbacks drive it from
// multiple goroutines, so access is serialized.
type Tracker struct {
	mu    sync.RWMutex
	state PermissionState
	fix   *geo.Coordinate
}

// NewTracker creates a tracker in the given initial state. The initial
// state is reported by the platform, not chosen, so any state is valid
// as a starting point.
func NewTracker(initial PermissionState) *Tracker {
	return &Tracker{state: initial}
}

// State returns the current permission state.
func (t *Tracker) State() PermissionState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.state
}

// Transition moves the tracker to the next state, rejecting edges the
// state machine does not define. Leaving the granted state drops the
// stored fix.
func (t *Tracker) Transition(next PermissionState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.CanTransition(next) {
		return fmt.Errorf("invalid permission transition %s -> %s", t.state, next)
	}

	if t.state == StateGranted && next != StateGranted {
		t.fix = nil
	}
	t.state = next

	return nil
}

// UpdateFix records a position fix. Fixes arriving outside the granted
// state are discarded: a stale callback must not resurrect a location
// the user revoked.
func (t *Tracker) UpdateFix(coord geo.Coordinate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateGranted {
		return
	}
	t.fix = &coord
}

// ClearFix forgets the last known position without changing state.
func (t *Tracker) ClearFix() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.fix = nil
}

// Current returns the viewer coordinate, or nil when no location is
// available. The returned pointer is a copy; callers cannot mutate the
// tracker through it.
func (t *Tracker) Current() *geo.Coordinate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.state != StateGranted || t.fix == nil {
		return nil
	}
	coord := *t.fix
	return &coord
}
