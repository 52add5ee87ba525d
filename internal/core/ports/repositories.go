package ports

import (
	"context"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// MarkerRepository persists one marker document per user.
type MarkerRepository interface {
	// Get returns the stored document or domain.ErrNotFound.
	Get(ctx context.Context, userID string) (*domain.MarkerDocument, error)
	// Put overwrites the whole document. UpdatedAt is set by the store.
	Put(ctx context.Context, doc *domain.MarkerDocument) error
}

// MessageRepository persists contact-form messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
}
