package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

type contactMessageRow struct {
	ID        string    `gorm:"primaryKey"`
	FirstName string    `gorm:"not null"`
	LastName  string    `gorm:"not null"`
	Email     string    `gorm:"not null"`
	Message   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (contactMessageRow) TableName() string { return "contact_messages" }

// MessageRepo implements ports.MessageRepository on SQLite.
type MessageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.ContactMessage) error {
	row := contactMessageRow{
		ID:        uuid.NewString(),
		FirstName: msg.FirstName,
		LastName:  msg.LastName,
		Email:     msg.Email,
		Message:   msg.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	msg.ID = row.ID
	msg.CreatedAt = row.CreatedAt
	return nil
}

