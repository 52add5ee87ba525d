package http

import (
	"context"
	"errors"
	"time"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/usecases"
	"github.com/samirrijal/agrobot/internal/pkg/metrics"
)

// instrumentedGateway records persistence metrics around a MarkerService.
type instrumentedGateway struct {
	svc *usecases.MarkerService
}

func (g instrumentedGateway) Load(ctx context.Context, userID string) ([]domain.Marker, error) {
	start := time.Now()
	markers, err := g.svc.Load(ctx, userID)
	metrics.ObserveStoreOp("load", resultLabel(err), start)
	return markers, err
}

func (g instrumentedGateway) Document(ctx context.Context, userID string) (*domain.MarkerDocument, error) {
	start := time.Now()
	doc, err := g.svc.Document(ctx, userID)
	metrics.ObserveStoreOp("load", resultLabel(err), start)
	return doc, err
}

func (g instrumentedGateway) SaveFromSession(ctx context.Context, userID, sessionID string, markers []domain.Marker) error {
	start := time.Now()
	err := g.svc.SaveFromSession(ctx, userID, sessionID, markers)
	metrics.ObserveStoreOp("save", resultLabel(err), start)
	return err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
