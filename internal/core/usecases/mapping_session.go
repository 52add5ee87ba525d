package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/ports"
)

var (
	// ErrSessionClosed is returned when posting to a closed session.
	ErrSessionClosed = errors.New("mapping session closed")
	// ErrSessionBusy is returned when a best-effort post finds the queue full.
	ErrSessionBusy = errors.New("mapping session busy")
)

const (
	sessionEventBuffer      = 64
	defaultSessionOpTimeout = 15 * time.Second
)

// MarkerGateway is the persistence gateway as seen by a mapping session.
type MarkerGateway interface {
	Load(ctx context.Context, userID string) ([]domain.Marker, error)
	SaveFromSession(ctx context.Context, userID, sessionID string, markers []domain.Marker) error
}

// SessionConfig configures a MappingSession.
type SessionConfig struct {
	UserID    string
	SessionID string // generated when empty
	Gateway   MarkerGateway
	Surface   ports.RenderSurface
	Notifier  ports.Notifier
	Logger    *slog.Logger
	OpTimeout time.Duration
}

// SessionSnapshot is a point-in-time view of a session, for diagnostics.
type SessionSnapshot struct {
	Markers     []domain.Marker
	Rendered    []string
	BridgeState BridgeState
}

// MappingSession owns the marker store and map bridge of one open map.
// All state changes run on the goroutine executing Run, in arrival order;
// persistence calls run in the background and resume on that goroutine.
type MappingSession struct {
	id        string
	userID    string
	gateway   MarkerGateway
	notifier  ports.Notifier
	logger    *slog.Logger
	opTimeout time.Duration

	store  *MarkerStore
	bridge *MapBridge
	form   CoordinateForm

	// loadSeq is only touched on the loop goroutine.
	loadSeq uint64
	// epoch changes when the session closes; results of background work
	// started under an older epoch are dropped.
	epoch atomic.Uint64

	events    chan func()
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	runOnce   sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewMappingSession wires a store and a bridge for one map screen.
func NewMappingSession(cfg SessionConfig) *MappingSession {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = defaultSessionOpTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &MappingSession{
		id:        cfg.SessionID,
		userID:    cfg.UserID,
		gateway:   cfg.Gateway,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger.With("session_id", cfg.SessionID),
		opTimeout: cfg.OpTimeout,
		events:    make(chan func(), sessionEventBuffer),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.store = NewMarkerStore(s.markersChanged)
	s.bridge = NewMapBridge(cfg.Surface, func(lat, lng float64) { s.store.Add(lat, lng) }, s.logger)
	return s
}

// ID returns the session id.
func (s *MappingSession) ID() string { return s.id }

// UserID returns the user the session belongs to ("" when anonymous).
func (s *MappingSession) UserID() string { return s.userID }

// Run processes events until ctx is done or the session is closed.
// Events still queued at that point are dropped. Only the first call runs
// the loop; later calls return immediately.
func (s *MappingSession) Run(ctx context.Context) {
	s.runOnce.Do(func() {
		defer close(s.stopped)
		defer s.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case fn := <-s.events:
				if s.closed() || ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	})
}

// Stopped is closed once Run has returned. After that the session never
// touches its surface or notifier again.
func (s *MappingSession) Stopped() <-chan struct{} { return s.stopped }

func (s *MappingSession) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close stops the session. Background results arriving later are discarded.
func (s *MappingSession) Close() {
	s.closeOnce.Do(func() {
		s.epoch.Add(1)
		s.cancel()
		close(s.done)
	})
}

// Start loads the saved markers, as on screen mount.
func (s *MappingSession) Start() error {
	return s.postErr(func() { s.load(false) })
}

// Reload loads the saved markers on explicit user request.
func (s *MappingSession) Reload() error {
	return s.postErr(func() { s.load(true) })
}

// Save persists the current markers.
func (s *MappingSession) Save() error {
	return s.postErr(s.save)
}

// ClearAll empties the store and persists the empty set.
func (s *MappingSession) ClearAll() error {
	return s.postErr(s.clearAll)
}

// SurfaceReady delivers the render surface's readiness signal.
func (s *MappingSession) SurfaceReady() error {
	return s.postErr(func() {
		if _, err := s.bridge.MarkReady(); err != nil {
			s.logger.Warn("replay deferred reconcile", "error", err)
		}
	})
}

// Tap delivers a tap on the render surface.
func (s *MappingSession) Tap(lat, lng float64) error {
	return s.postErr(func() { s.bridge.HandleTap(lat, lng) })
}

// SubmitCoordinates delivers manually typed coordinates.
func (s *MappingSession) SubmitCoordinates(latText, lngText string) error {
	return s.postErr(func() {
		s.form = CoordinateForm{Latitude: latText, Longitude: lngText}
		if _, err := s.form.Submit(s.store); err != nil {
			s.logger.Debug("coordinate input rejected", "error", err)
			s.notify(InputNotice(err))
			return
		}
		if s.notifier != nil {
			s.notifier.FormCleared()
		}
	})
}

// HandleMessage decodes an inbound bridge message and dispatches it.
// Malformed messages are rejected before they reach the loop.
func (s *MappingSession) HandleMessage(raw []byte) error {
	msg, err := domain.DecodeClientMessage(raw)
	if err != nil {
		return err
	}
	switch msg.Type {
	case domain.MsgMapReady:
		return s.SurfaceReady()
	case domain.MsgMapClick:
		return s.Tap(*msg.Lat, *msg.Lng)
	case domain.MsgSubmitCoordinates:
		return s.SubmitCoordinates(msg.LatText, msg.LngText)
	case domain.MsgSave:
		return s.Save()
	case domain.MsgClear:
		return s.ClearAll()
	case domain.MsgReload:
		return s.Reload()
	}
	return fmt.Errorf("%w: unhandled type %q", domain.ErrInvalidMessage, msg.Type)
}

// RemoteSaved tells the session that the user's document was overwritten
// elsewhere. Events caused by this session are ignored. It never blocks: a
// session whose queue is full drops the notice and gets ErrSessionBusy.
func (s *MappingSession) RemoteSaved(event *domain.MarkersSavedEvent) error {
	if event == nil || event.UserID != s.userID || event.SessionID == s.id {
		return nil
	}
	return s.tryPost(func() {
		s.notify(domain.Notice{
			Level:   domain.NoticeInfo,
			Title:   "Markers updated",
			Message: fmt.Sprintf("Markers updated on another device (%d saved). Reload to see them.", event.Count),
		})
	})
}

// Snapshot returns the current state as seen by the loop.
func (s *MappingSession) Snapshot(ctx context.Context) (SessionSnapshot, error) {
	ch := make(chan SessionSnapshot, 1)
	if !s.post(func() {
		ch <- SessionSnapshot{
			Markers:     s.store.Markers(),
			Rendered:    s.bridge.Rendered(),
			BridgeState: s.bridge.State(),
		}
	}) {
		return SessionSnapshot{}, ErrSessionClosed
	}
	select {
	case snap := <-ch:
		return snap, nil
	case <-ctx.Done():
		return SessionSnapshot{}, ctx.Err()
	case <-s.done:
		return SessionSnapshot{}, ErrSessionClosed
	}
}

func (s *MappingSession) markersChanged(markers []domain.Marker) {
	if _, err := s.bridge.Reconcile(markers); err != nil {
		if errors.Is(err, domain.ErrBridgeNotReady) {
			s.logger.Debug("reconcile deferred until map is ready", "markers", len(markers))
		} else {
			s.logger.Warn("reconcile markers", "error", err)
		}
	}
	if s.notifier != nil {
		s.notifier.MarkersChanged(markers)
	}
}

func (s *MappingSession) load(announce bool) {
	s.loadSeq++
	seq := s.loadSeq
	s.background("load", func(ctx context.Context) func() {
		markers, err := s.gateway.Load(ctx, s.userID)
		return func() {
			if seq != s.loadSeq {
				s.logger.Debug("discarding superseded load")
				return
			}
			s.applyLoad(markers, err, announce)
		}
	})
}

func (s *MappingSession) applyLoad(markers []domain.Marker, err error, announce bool) {
	switch {
	case err == nil:
		s.store.ReplaceAll(markers)
		if announce {
			s.notify(domain.Notice{
				Level:   domain.NoticeSuccess,
				Title:   "Markers loaded",
				Message: fmt.Sprintf("Loaded %d marker(s)", len(markers)),
			})
		}
	case errors.Is(err, domain.ErrNotFound):
		s.store.ReplaceAll(nil)
		if announce {
			s.notify(domain.Notice{Level: domain.NoticeInfo, Title: "Markers loaded", Message: "Loaded 0 marker(s)"})
		}
	case errors.Is(err, domain.ErrUnauthenticated):
		s.notify(domain.Notice{Level: domain.NoticeError, Title: "Error", Message: "You must be logged in to view markers"})
	default:
		s.logger.Error("load markers", "user_id", s.userID, "error", err)
		s.notify(domain.Notice{Level: domain.NoticeError, Title: "Error", Message: "Failed to load markers"})
	}
}

func (s *MappingSession) save() {
	markers := s.store.Markers()
	s.background("save", func(ctx context.Context) func() {
		err := s.gateway.SaveFromSession(ctx, s.userID, s.id, markers)
		return func() {
			switch {
			case err == nil:
				s.notify(domain.Notice{Level: domain.NoticeSuccess, Title: "Success", Message: "Markers saved successfully"})
			case errors.Is(err, domain.ErrUnauthenticated):
				s.notify(domain.Notice{Level: domain.NoticeError, Title: "Error", Message: "You must be logged in to save markers"})
			default:
				s.logger.Error("save markers", "user_id", s.userID, "error", err)
				s.notify(domain.Notice{Level: domain.NoticeError, Title: "Error", Message: "Failed to save markers"})
			}
		}
	})
}

func (s *MappingSession) clearAll() {
	s.store.Clear()
	if s.userID == "" {
		return
	}
	s.background("clear", func(ctx context.Context) func() {
		err := s.gateway.SaveFromSession(ctx, s.userID, s.id, []domain.Marker{})
		return func() {
			if err != nil {
				s.logger.Error("save cleared markers", "user_id", s.userID, "error", err)
				s.notify(domain.Notice{Level: domain.NoticeError, Title: "Error", Message: "Failed to save markers"})
			}
		}
	})
}

// background runs work off the loop and posts its continuation back.
func (s *MappingSession) background(op string, work func(ctx context.Context) func()) {
	epoch := s.epoch.Load()
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.opTimeout)
		defer cancel()

		resume := work(ctx)
		s.post(func() {
			if s.epoch.Load() != epoch {
				s.logger.Debug("discarding late result", "op", op)
				return
			}
			resume()
		})
	}()
}

func (s *MappingSession) notify(n domain.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(n)
	}
}

func (s *MappingSession) post(fn func()) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- fn:
		return true
	case <-s.done:
		return false
	}
}

func (s *MappingSession) tryPost(fn func()) error {
	if s.closed() {
		return ErrSessionClosed
	}
	select {
	case s.events <- fn:
		return nil
	default:
		return ErrSessionBusy
	}
}

func (s *MappingSession) postErr(fn func()) error {
	if !s.post(fn) {
		return ErrSessionClosed
	}
	return nil
}
