package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/ports"
	"github.com/samirrijal/agrobot/internal/pkg/geospatial"
)

const (
	markerCacheTTL      = 300
	maxNearRadiusMeters = 50000.0
)

// MarkerService is the persistence gateway for per-user marker documents.
// Every error it returns is one of domain.ErrUnauthenticated,
// domain.ErrNotFound, domain.ErrValidation or domain.ErrTransport.
type MarkerService struct {
	repo      ports.MarkerRepository
	cache     ports.CacheService
	publisher ports.EventPublisher

	// cacheMu guards generations and orders cache fills against saves: a
	// document read before a save is never cached after it.
	cacheMu     sync.Mutex
	generations map[string]uint64
}

// NewMarkerService creates a new MarkerService. cache and publisher may be nil.
func NewMarkerService(repo ports.MarkerRepository, cache ports.CacheService, publisher ports.EventPublisher) *MarkerService {
	return &MarkerService{
		repo:        repo,
		cache:       cache,
		publisher:   publisher,
		generations: make(map[string]uint64),
	}
}

// Load returns the saved markers of userID. When nothing was ever saved it
// returns an empty sequence and domain.ErrNotFound.
func (s *MarkerService) Load(ctx context.Context, userID string) ([]domain.Marker, error) {
	doc, err := s.Document(ctx, userID)
	if err != nil {
		return []domain.Marker{}, err
	}
	return doc.Markers, nil
}

// Document returns the full saved document of userID.
func (s *MarkerService) Document(ctx context.Context, userID string) (*domain.MarkerDocument, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	cacheKey := markerCacheKey(userID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var doc domain.MarkerDocument
			if err := json.Unmarshal(data, &doc); err == nil {
				doc.UserID = userID
				doc.Markers = nonNil(doc.Markers)
				return &doc, nil
			}
		}
	}

	gen := s.generation(userID)
	doc, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, normalizeRepoError("load markers", err)
	}
	doc.Markers = nonNil(doc.Markers)

	if s.cache != nil {
		if data, err := json.Marshal(doc); err == nil {
			s.cacheMu.Lock()
			if s.generations[userID] == gen {
				_ = s.cache.Set(ctx, cacheKey, data, markerCacheTTL)
			}
			s.cacheMu.Unlock()
		}
	}

	return doc, nil
}

// Save overwrites the whole document of userID with markers. An empty
// sequence is a valid, meaningful save.
func (s *MarkerService) Save(ctx context.Context, userID string, markers []domain.Marker) error {
	return s.SaveFromSession(ctx, userID, "", markers)
}

// SaveFromSession is Save for a mapping session; sessionID travels with
// the published event so the originating session can ignore it.
func (s *MarkerService) SaveFromSession(ctx context.Context, userID, sessionID string, markers []domain.Marker) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	for i, m := range markers {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: marker %d: %v", domain.ErrValidation, i, err)
		}
	}

	doc := &domain.MarkerDocument{
		UserID:  userID,
		Markers: append(make([]domain.Marker, 0, len(markers)), markers...),
	}
	if err := s.repo.Put(ctx, doc); err != nil {
		return normalizeRepoError("save markers", err)
	}

	s.cacheMu.Lock()
	s.generations[userID]++
	if s.cache != nil {
		_ = s.cache.Delete(ctx, markerCacheKey(userID))
	}
	s.cacheMu.Unlock()

	if s.publisher != nil {
		event := &domain.MarkersSavedEvent{
			UserID:    userID,
			Count:     len(doc.Markers),
			SessionID: sessionID,
			UpdatedAt: doc.UpdatedAt,
		}
		if err := s.publisher.PublishMarkersSaved(ctx, event); err != nil {
			slog.Warn("publish markers saved", "user_id", userID, "error", err)
		}
	}

	return nil
}

func (s *MarkerService) generation(userID string) uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generations[userID]
}

// Near returns the saved markers of userID within radiusMeters of center,
// nearest first. Nothing saved yet yields an empty result.
func (s *MarkerService) Near(ctx context.Context, userID string, center domain.GeoPoint, radiusMeters float64) ([]domain.NearbyMarker, error) {
	if err := domain.ValidateLatLng(center.Lat, center.Lng); err != nil {
		return nil, fmt.Errorf("%w: center: %v", domain.ErrValidation, err)
	}
	if radiusMeters <= 0 || radiusMeters > maxNearRadiusMeters {
		return nil, fmt.Errorf("%w: radius must be in (0, %.0f] meters", domain.ErrValidation, maxNearRadiusMeters)
	}

	markers, err := s.Load(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return MarkersNear(markers, center, radiusMeters), nil
}

// MarkersNear filters markers to those within radiusMeters of center and
// sorts them by distance. Ties keep insertion order.
func MarkersNear(markers []domain.Marker, center domain.GeoPoint, radiusMeters float64) []domain.NearbyMarker {
	box := geospatial.BoxAround(center.Lat, center.Lng, radiusMeters)
	out := make([]domain.NearbyMarker, 0)
	for _, m := range markers {
		if !box.Contains(m.Lat, m.Lng) {
			continue
		}
		d := geospatial.DistanceMeters(center.Lat, center.Lng, m.Lat, m.Lng)
		if d <= radiusMeters {
			out = append(out, domain.NearbyMarker{Marker: m, DistanceMeters: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	return out
}

func markerCacheKey(userID string) string {
	return "markers:" + userID
}

func normalizeRepoError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrTransport, op, err)
}

func nonNil(markers []domain.Marker) []domain.Marker {
	if markers == nil {
		return []domain.Marker{}
	}
	return markers
}
