package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waypost/internal/domain/content"
	"waypost/internal/domain/geo"
)

func TestListStoriesSendsFilterAndAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stories", r.URL.Path)
		assert.Equal(t, "most_liked", r.URL.Query().Get("sort"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]content.Story{
			{ID: "s1", Title: "First"},
			{ID: "s2", Title: "Second"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", 5*time.Second)

	stories, err := client.ListStories(context.Background(), content.StoryFilter{
		Sort:  content.SortMostLiked,
		Limit: 20,
	})
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, "s1", stories[0].ID)
}

func TestCreateStoryReturnsCanonicalRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var story content.Story
		require.NoError(t, json.NewDecoder(r.Body).Decode(&story))
		story.ID = "assigned-id"
		story.CreatedAt = time.Now().UTC()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(story)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)

	created, err := client.CreateStory(context.Background(), content.Story{
		Title:      "Found a mural",
		Coordinate: geo.Coordinate{Latitude: 40.7, Longitude: -74},
	})
	require.NoError(t, err)
	assert.Equal(t, "assigned-id", created.ID)
	assert.Equal(t, "Found a mural", created.Title)
}

func TestSetLikedHitsReactionEndpoint(t *testing.T) {
	var gotPath string
	var gotPayload reactionPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)

	require.NoError(t, client.SetLiked(context.Background(), "s1", "u1", true))
	assert.Equal(t, "/v1/stories/s1/like", gotPath)
	assert.Equal(t, reactionPayload{UserID: "u1", Value: true}, gotPayload)
}

func TestErrorEnvelopeSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "story not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)

	_, err := client.GetStory(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "story not found")
}

func TestCreateLocalUpdateRejectsOutOfRangeRadius(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)

	_, err := client.CreateLocalUpdate(context.Background(), content.LocalUpdate{
		Category:     content.CategoryTraffic,
		RadiusMeters: 150,
	})
	assert.Error(t, err)

	_, err = client.CreateLocalUpdate(context.Background(), content.LocalUpdate{
		Category:     content.CategoryTraffic,
		RadiusMeters: 1500,
	})
	assert.Error(t, err)
	assert.False(t, called, "invalid update must not reach the backend")
}

func TestDeleteDraftSendsUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/drafts/d1", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	require.NoError(t, client.DeleteDraft(context.Background(), "u1", "d1"))
}
