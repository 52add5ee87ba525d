package usecases

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/ports"
)

// BridgeState is the lifecycle state of a MapBridge.
type BridgeState int

const (
	BridgeUninitialized BridgeState = iota
	BridgeReady
	BridgeReconciling
)

func (s BridgeState) String() string {
	switch s {
	case BridgeUninitialized:
		return "uninitialized"
	case BridgeReady:
		return "ready"
	case BridgeReconciling:
		return "reconciling"
	default:
		return fmt.Sprintf("BridgeState(%d)", int(s))
	}
}

// ReconcileResult lists the render-surface operations of one reconciliation.
type ReconcileResult struct {
	Added   []string
	Removed []string
}

// Changed reports whether the surface was touched.
func (r ReconcileResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// MapBridge keeps the markers drawn on a render surface in line with the
// marker store. Handles are keyed by domain.Marker.Key.
type MapBridge struct {
	surface ports.RenderSurface
	onTap   func(lat, lng float64)
	logger  *slog.Logger

	state   BridgeState
	handles map[string]struct{}

	// Latest sequence requested before the surface was ready.
	pending    []domain.Marker
	hasPending bool
}

// NewMapBridge creates a bridge in the Uninitialized state. onTap receives
// tap coordinates reported by the surface.
func NewMapBridge(surface ports.RenderSurface, onTap func(lat, lng float64), logger *slog.Logger) *MapBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &MapBridge{
		surface: surface,
		onTap:   onTap,
		logger:  logger,
		handles: make(map[string]struct{}),
	}
}

// State returns the current lifecycle state.
func (b *MapBridge) State() BridgeState {
	return b.state
}

// Rendered returns the keys currently drawn on the surface, sorted.
func (b *MapBridge) Rendered() []string {
	keys := make([]string, 0, len(b.handles))
	for k := range b.handles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarkReady handles the one-time readiness signal of the surface and
// replays the deferred reconciliation, if any. Later calls are no-ops.
func (b *MapBridge) MarkReady() (ReconcileResult, error) {
	if b.state != BridgeUninitialized {
		return ReconcileResult{}, nil
	}
	b.state = BridgeReady
	b.logger.Debug("map surface ready", "deferred", b.hasPending)

	if !b.hasPending {
		return ReconcileResult{}, nil
	}
	pending := b.pending
	b.pending, b.hasPending = nil, false
	return b.Reconcile(pending)
}

// Reconcile applies the difference between markers and the drawn handles.
// Before the surface is ready the request is kept and ErrBridgeNotReady is
// returned; the latest request is replayed by MarkReady.
func (b *MapBridge) Reconcile(markers []domain.Marker) (ReconcileResult, error) {
	if b.state == BridgeUninitialized {
		b.pending = append(make([]domain.Marker, 0, len(markers)), markers...)
		b.hasPending = true
		return ReconcileResult{}, domain.ErrBridgeNotReady
	}

	b.state = BridgeReconciling
	defer func() { b.state = BridgeReady }()

	want := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		want[m.Key()] = struct{}{}
	}

	var (
		res  ReconcileResult
		errs []error
	)

	for _, key := range b.Rendered() {
		if _, ok := want[key]; ok {
			continue
		}
		if err := b.surface.RemoveMarker(key); err != nil {
			errs = append(errs, fmt.Errorf("remove marker %s: %w", key, err))
			continue
		}
		delete(b.handles, key)
		res.Removed = append(res.Removed, key)
	}

	for _, m := range markers {
		key := m.Key()
		if _, ok := b.handles[key]; ok {
			continue
		}
		if err := b.surface.AddMarker(m); err != nil {
			errs = append(errs, fmt.Errorf("add marker %s: %w", key, err))
			continue
		}
		b.handles[key] = struct{}{}
		res.Added = append(res.Added, key)
	}

	if res.Changed() {
		if err := b.surface.Invalidate(); err != nil {
			errs = append(errs, fmt.Errorf("invalidate: %w", err))
		}
	}

	return res, errors.Join(errs...)
}

// HandleTap forwards tap coordinates from the surface. Surface coordinates
// are valid by construction and are not range-checked.
func (b *MapBridge) HandleTap(lat, lng float64) {
	if b.onTap != nil {
		b.onTap(lat, lng)
	}
}
