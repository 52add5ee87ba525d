package sqlite

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

type markerDocumentRow struct {
	UserID    string                             `gorm:"primaryKey"`
	Markers   datatypes.JSONSlice[domain.Marker] `gorm:"not null"`
	UpdatedAt time.Time                          `gorm:"not null"`
}

func (markerDocumentRow) TableName() string { return "marker_documents" }

// MarkerRepo implements ports.MarkerRepository on SQLite.
type MarkerRepo struct {
	db *gorm.DB
}

func NewMarkerRepo(db *gorm.DB) *MarkerRepo {
	return &MarkerRepo{db: db}
}

func (r *MarkerRepo) Get(ctx context.Context, userID string) (*domain.MarkerDocument, error) {
	var row markerDocumentRow
	err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	markers := []domain.Marker(row.Markers)
	if markers == nil {
		markers = []domain.Marker{}
	}
	return &domain.MarkerDocument{
		UserID:    row.UserID,
		Markers:   markers,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *MarkerRepo) Put(ctx context.Context, doc *domain.MarkerDocument) error {
	markers := doc.Markers
	if markers == nil {
		markers = []domain.Marker{}
	}
	row := markerDocumentRow{
		UserID:    doc.UserID,
		Markers:   datatypes.JSONSlice[domain.Marker](markers),
		UpdatedAt: time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"markers", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}
	doc.UpdatedAt = row.UpdatedAt
	return nil
}
