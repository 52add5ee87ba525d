package ports

import (
	"context"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishMarkersSaved(ctx context.Context, event *domain.MarkersSavedEvent) error
}

// EventSubscriber receives domain events from a message broker.
type EventSubscriber interface {
	SubscribeMarkersSaved(ctx context.Context, handler func(ctx context.Context, event *domain.MarkersSavedEvent)) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// Detector runs the remote obstruction-detection model on a base64 image.
type Detector interface {
	Detect(ctx context.Context, imageBase64 string) (*domain.RawDetectionResult, error)
}

// RenderSurface is the embedded map that draws markers. Implementations
// must not block for long; they are driven from the session event loop.
type RenderSurface interface {
	AddMarker(m domain.Marker) error
	RemoveMarker(key string) error
	Invalidate() error
}

// Notifier shows user-visible messages next to the map.
type Notifier interface {
	Notify(n domain.Notice)
	// MarkersChanged delivers the full marker list after each mutation.
	MarkersChanged(markers []domain.Marker)
	// FormCleared tells the client to reset the coordinate inputs.
	FormCleared()
}
