package feed

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"waypost/internal/domain/content"
	"waypost/internal/domain/geo"
)

// Service assembles presentation-ready feeds: it pulls content from the
// backend actor and layers on the client-side concerns the backend does
// not know about — viewer distance, proximity ordering, radius
// filtering, and resolved place names.
type Service struct {
	backend content.Backend
	engine  geo.Service
	places  geo.PlaceResolver
	logger  *zap.Logger
}

// NewService creates a feed service.
func NewService(backend content.Backend, engine geo.Service, places geo.PlaceResolver, logger *zap.Logger) *Service {
	return &Service{
		backend: backend,
		engine:  engine,
		places:  places,
		logger:  logger,
	}
}

// Stories returns stories matching the filter, enriched and ordered for
// display. When the filter carries a center, each story gets its
// distance from the viewer; a WithinKm bound keeps only stories inside
// it (boundary inclusive, original order preserved by the filter step).
func (s *Service) Stories(ctx context.Context, filter content.StoryFilter) ([]content.Story, error) {
	stories, err := s.backend.ListStories(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing stories: %w", err)
	}

	if filter.Center != nil {
		for i := range stories {
			km := s.engine.DistanceKm(*filter.Center, stories[i].Coordinate)
			stories[i].DistanceKm = &km
		}

		if filter.WithinKm > 0 {
			kept := stories[:0]
			for _, story := range stories {
				if *story.DistanceKm <= filter.WithinKm {
					kept = append(kept, story)
				}
			}
			stories = kept
		}
	}

	sortStories(stories, filter.Sort)

	s.resolvePlaceNames(ctx, stories)

	return stories, nil
}

// NearbyUpdates returns all active local updates annotated with distance
// and relevance for the viewer, nearest first.
func (s *Service) NearbyUpdates(ctx context.Context, viewer geo.Coordinate) ([]content.LocalUpdate, error) {
	updates, err := s.backend.ListLocalUpdates(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing local updates: %w", err)
	}

	for i := range updates {
		km := s.engine.DistanceKm(viewer, updates[i].Coordinate)
		updates[i].DistanceKm = &km
	}

	sort.SliceStable(updates, func(i, j int) bool {
		return *updates[i].DistanceKm < *updates[j].DistanceKm
	})

	for i := range updates {
		label, err := s.places.ResolvePlaceName(ctx, updates[i].Coordinate)
		if err != nil {
			return nil, err
		}
		updates[i].PlaceName = label
	}

	return updates, nil
}

// resolvePlaceNames annotates stories with place labels. Resolution is
// cosmetic, so anything short of cancellation leaves the story as-is.
func (s *Service) resolvePlaceNames(ctx context.Context, stories []content.Story) {
	for i := range stories {
		label, err := s.places.ResolvePlaceName(ctx, stories[i].Coordinate)
		if err != nil {
			// Cancellation: the caller is gone, stop resolving.
			return
		}
		stories[i].PlaceName = label
	}
}

// sortStories orders stories by the given key. All sorts are stable;
// engagement sorts break ties newest-first, and equal-distance stories
// keep their incoming order.
func sortStories(stories []content.Story, key content.SortKey) {
	switch key {
	case content.SortNearest:
		sort.SliceStable(stories, func(i, j int) bool {
			di, dj := stories[i].DistanceKm, stories[j].DistanceKm
			if di == nil || dj == nil {
				// Stories without a computed distance sink to the end.
				return di != nil && dj == nil
			}
			return *di < *dj
		})

	case content.SortMostViewed:
		sort.SliceStable(stories, func(i, j int) bool {
			if stories[i].ViewCount != stories[j].ViewCount {
				return stories[i].ViewCount > stories[j].ViewCount
			}
			return stories[i].CreatedAt.After(stories[j].CreatedAt)
		})

	case content.SortMostLiked:
		sort.SliceStable(stories, func(i, j int) bool {
			if stories[i].LikeCount != stories[j].LikeCount {
				return stories[i].LikeCount > stories[j].LikeCount
			}
			return stories[i].CreatedAt.After(stories[j].CreatedAt)
		})

	case content.SortMostPinned:
		sort.SliceStable(stories, func(i, j int) bool {
			if stories[i].PinCount != stories[j].PinCount {
				return stories[i].PinCount > stories[j].PinCount
			}
			return stories[i].CreatedAt.After(stories[j].CreatedAt)
		})

	case content.SortNewest:
		fallthrough
	default:
		sort.SliceStable(stories, func(i, j int) bool {
			return stories[i].CreatedAt.After(stories[j].CreatedAt)
		})
	}
}
