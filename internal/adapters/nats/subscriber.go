package natsadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber. It uses core NATS so every
// API instance receives every event and can reach its own sessions.
type Subscriber struct {
	conn *nats.Conn
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber on an existing connection.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

func (s *Subscriber) SubscribeMarkersSaved(ctx context.Context, handler func(ctx context.Context, event *domain.MarkersSavedEvent)) error {
	sub, err := s.conn.Subscribe(markersSavedSubject+">", func(msg *nats.Msg) {
		var event domain.MarkersSavedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("malformed markers saved event", "subject", msg.Subject, "error", err)
			return
		}
		handler(ctx, &event)
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes. The connection is owned by the caller.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
}
