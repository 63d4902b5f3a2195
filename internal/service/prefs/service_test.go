package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"waypost/internal/domain/content"
)

type memStore struct {
	values map[string]string
	setErr error
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memStore) Remove(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func TestMuteSetDefaultsUnmuted(t *testing.T) {
	s := NewService(newMemStore(), zap.NewNop())

	muted, err := s.MuteSet(context.Background(), "u1")
	require.NoError(t, err)

	for _, category := range content.Categories() {
		assert.False(t, muted.Muted(category))
	}
}

func TestSetMutedRoundTrip(t *testing.T) {
	store := newMemStore()
	s := NewService(store, zap.NewNop())

	require.NoError(t, s.SetMuted(context.Background(), "u1", content.CategoryTraffic, true))

	muted, err := s.MuteSet(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, muted.Muted(content.CategoryTraffic))
	assert.False(t, muted.Muted(content.CategoryPower))

	// A fresh service over the same store sees the persisted flags.
	fresh := NewService(store, zap.NewNop())
	muted, err = fresh.MuteSet(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, muted.Muted(content.CategoryTraffic))
}

func TestSetMutedUnmute(t *testing.T) {
	s := NewService(newMemStore(), zap.NewNop())

	require.NoError(t, s.SetMuted(context.Background(), "u1", content.CategorySafety, true))
	require.NoError(t, s.SetMuted(context.Background(), "u1", content.CategorySafety, false))

	muted, err := s.MuteSet(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, muted.Muted(content.CategorySafety))
}

func TestSetMutedRejectsUnknownCategory(t *testing.T) {
	s := NewService(newMemStore(), zap.NewNop())

	err := s.SetMuted(context.Background(), "u1", content.Category("gossip"), true)
	assert.Error(t, err)
}

func TestSetMutedSurvivesStoreFailure(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("storage unavailable")
	s := NewService(store, zap.NewNop())

	require.NoError(t, s.SetMuted(context.Background(), "u1", content.CategoryTraffic, true))

	// The running session still honors the flag.
	muted, err := s.MuteSet(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, muted.Muted(content.CategoryTraffic))
}

func TestMuteSetDiscardsCorruptState(t *testing.T) {
	store := newMemStore()
	store.values[keyPrefix+"u1"] = "{not json"
	s := NewService(store, zap.NewNop())

	muted, err := s.MuteSet(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, muted)
}
