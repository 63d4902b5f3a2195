package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"waypost/internal/domain/content"
)

// keyPrefix namespaces mute entries in the shared key-value store.
const keyPrefix = "mute:"

// Store is the persistent tier for preferences.
type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value under key
	Set(ctx context.Context, key, value string) error

	// Remove deletes a key
	Remove(ctx context.Context, key string) error
}

// Service implements profile.Preferences on top of the key-value store.
// The in-memory copy is authoritative for the running session, so a mute
// takes effect immediately even when the persistent write fails; the
// store only has to survive restarts.
type Service struct {
	store  Store
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]content.MuteSet
}

// NewService creates a preferences service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		cache:  make(map[string]content.MuteSet),
	}
}

// MuteSet returns the user's mute flags. Absent or unreadable stored
// state yields the default all-unmuted set.
func (s *Service) MuteSet(ctx context.Context, userID string) (content.MuteSet, error) {
	s.mu.Lock()
	if muted, ok := s.cache[userID]; ok {
		s.mu.Unlock()
		return cloneMuteSet(muted), nil
	}
	s.mu.Unlock()

	muted := content.MuteSet{}

	value, ok, err := s.store.Get(ctx, keyPrefix+userID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Debug("mute preferences read failed", zap.String("user_id", userID), zap.Error(err))
	} else if ok {
		if err := json.Unmarshal([]byte(value), &muted); err != nil {
			s.logger.Warn("discarding unreadable mute preferences", zap.String("user_id", userID), zap.Error(err))
			muted = content.MuteSet{}
		}
	}

	s.mu.Lock()
	s.cache[userID] = cloneMuteSet(muted)
	s.mu.Unlock()

	return muted, nil
}

// SetMuted sets one category's mute flag and persists the full set
// best-effort.
func (s *Service) SetMuted(ctx context.Context, userID string, category content.Category, muted bool) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}

	current, err := s.MuteSet(ctx, userID)
	if err != nil {
		return err
	}

	if muted {
		current[category] = true
	} else {
		delete(current, category)
	}

	s.mu.Lock()
	s.cache[userID] = cloneMuteSet(current)
	s.mu.Unlock()

	payload, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("error marshaling mute preferences: %w", err)
	}

	if err := s.store.Set(ctx, keyPrefix+userID, string(payload)); err != nil {
		// Persistence is best-effort; the session already honors the
		// flag through the in-memory copy.
		s.logger.Debug("mute preferences write failed", zap.String("user_id", userID), zap.Error(err))
	}

	return nil
}

func cloneMuteSet(m content.MuteSet) content.MuteSet {
	clone := make(content.MuteSet, len(m))
	for category, muted := range m {
		clone[category] = muted
	}
	return clone
}
