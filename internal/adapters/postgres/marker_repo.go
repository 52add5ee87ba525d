package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// MarkerRepo implements ports.MarkerRepository on a JSONB column.
type MarkerRepo struct {
	db *DB
}

func NewMarkerRepo(db *DB) *MarkerRepo {
	return &MarkerRepo{db: db}
}

func (r *MarkerRepo) Get(ctx context.Context, userID string) (*domain.MarkerDocument, error) {
	doc := &domain.MarkerDocument{UserID: userID}
	var raw []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT markers, updated_at
		FROM marker_documents WHERE user_id = $1
	`, userID).Scan(&raw, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, &doc.Markers); err != nil {
		return nil, fmt.Errorf("decode markers of %s: %w", userID, err)
	}
	if doc.Markers == nil {
		doc.Markers = []domain.Marker{}
	}
	return doc, nil
}

// Put overwrites the document; the server clock stamps updated_at.
func (r *MarkerRepo) Put(ctx context.Context, doc *domain.MarkerDocument) error {
	markers := doc.Markers
	if markers == nil {
		markers = []domain.Marker{}
	}
	raw, err := json.Marshal(markers)
	if err != nil {
		return fmt.Errorf("encode markers: %w", err)
	}

	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO marker_documents (user_id, markers, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET markers = EXCLUDED.markers, updated_at = now()
		RETURNING updated_at
	`, doc.UserID, raw).Scan(&doc.UpdatedAt)
}
