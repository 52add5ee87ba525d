// Package memory holds process-local repositories for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// MarkerRepo implements ports.MarkerRepository in memory.
type MarkerRepo struct {
	mu   sync.RWMutex
	docs map[string]domain.MarkerDocument
	now  func() time.Time
}

func NewMarkerRepo() *MarkerRepo {
	return &MarkerRepo{
		docs: make(map[string]domain.MarkerDocument),
		now:  time.Now,
	}
}

func (r *MarkerRepo) Get(_ context.Context, userID string) (*domain.MarkerDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc.Markers = cloneMarkers(doc.Markers)
	return &doc, nil
}

func (r *MarkerRepo) Put(_ context.Context, doc *domain.MarkerDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc.UpdatedAt = r.now().UTC()
	r.docs[doc.UserID] = domain.MarkerDocument{
		UserID:    doc.UserID,
		Markers:   cloneMarkers(doc.Markers),
		UpdatedAt: doc.UpdatedAt,
	}
	return nil
}

// Ping always succeeds; it lets the memory store back readiness probes.
func (r *MarkerRepo) Ping(context.Context) error { return nil }

// MessageRepo implements ports.MessageRepository in memory.
type MessageRepo struct {
	mu       sync.Mutex
	messages []domain.ContactMessage
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{}
}

func (r *MessageRepo) Create(_ context.Context, msg *domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()
	r.messages = append(r.messages, *msg)
	return nil
}

// List returns the stored messages, oldest first.
func (r *MessageRepo) List() []domain.ContactMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ContactMessage(nil), r.messages...)
}

func cloneMarkers(in []domain.Marker) []domain.Marker {
	return append(make([]domain.Marker, 0, len(in)), in...)
}
