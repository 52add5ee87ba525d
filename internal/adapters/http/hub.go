package http

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/usecases"
	"github.com/samirrijal/agrobot/internal/pkg/metrics"
)

// SessionHub tracks the open mapping sessions of this instance by user, so
// save events can reach a user's other devices.
type SessionHub struct {
	mu     sync.RWMutex
	byUser map[string]map[*usecases.MappingSession]struct{}
	count  int
}

func NewSessionHub() *SessionHub {
	return &SessionHub{byUser: make(map[string]map[*usecases.MappingSession]struct{})}
}

// Add registers an open session.
func (h *SessionHub) Add(s *usecases.MappingSession) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.byUser[s.UserID()]
	if !ok {
		set = make(map[*usecases.MappingSession]struct{})
		h.byUser[s.UserID()] = set
	}
	if _, dup := set[s]; dup {
		return
	}
	set[s] = struct{}{}
	h.count++
	metrics.ActiveWebSockets.Inc()
}

// Remove unregisters a session. Unknown sessions are ignored.
func (h *SessionHub) Remove(s *usecases.MappingSession) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.byUser[s.UserID()]
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.byUser, s.UserID())
	}
	h.count--
	metrics.ActiveWebSockets.Dec()
}

// Count returns the number of open sessions.
func (h *SessionHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Relay hands a save event to every open session of the event's user.
// Sessions that are not keeping up miss the notice.
func (h *SessionHub) Relay(_ context.Context, event *domain.MarkersSavedEvent) {
	if event == nil || event.UserID == "" {
		return
	}
	h.mu.RLock()
	targets := make([]*usecases.MappingSession, 0, len(h.byUser[event.UserID]))
	for s := range h.byUser[event.UserID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if err := s.RemoteSaved(event); errors.Is(err, usecases.ErrSessionBusy) {
			slog.Debug("dropped markers saved notice", "session_id", s.ID(), "user_id", event.UserID)
		}
	}
}

// PublishMarkersSaved implements ports.EventPublisher for single-instance
// deployments without a broker.
func (h *SessionHub) PublishMarkersSaved(ctx context.Context, event *domain.MarkersSavedEvent) error {
	h.Relay(ctx, event)
	return nil
}
