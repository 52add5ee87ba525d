package postgres

import (
	"context"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// MessageRepo implements ports.MessageRepository.
type MessageRepo struct {
	db *DB
}

func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.ContactMessage) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO contact_messages (first_name, last_name, email, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, msg.FirstName, msg.LastName, msg.Email, msg.Message).Scan(&msg.ID, &msg.CreatedAt)
}
