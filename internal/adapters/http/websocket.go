package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/usecases"
	"github.com/samirrijal/agrobot/internal/pkg/metrics"
)

const (
	defaultPingInterval = 30 * time.Second
	wsWriteTimeout      = 10 * time.Second
)

// frameWriter is the write side of a WebSocket connection.
type frameWriter interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

// wsSurface is the render surface and notifier of one map client. The
// client draws markers from the addMarker/removeMarker/invalidate frames.
type wsSurface struct {
	mu   sync.Mutex
	conn frameWriter
}

func (s *wsSurface) AddMarker(m domain.Marker) error {
	if err := s.writeJSON(domain.ServerMessage{Type: domain.MsgAddMarker, Marker: &m}); err != nil {
		return err
	}
	metrics.ReconcileOps.WithLabelValues("add").Inc()
	return nil
}

func (s *wsSurface) RemoveMarker(key string) error {
	if err := s.writeJSON(domain.ServerMessage{Type: domain.MsgRemoveMarker, ID: key}); err != nil {
		return err
	}
	metrics.ReconcileOps.WithLabelValues("remove").Inc()
	return nil
}

func (s *wsSurface) Invalidate() error {
	return s.writeJSON(domain.ServerMessage{Type: domain.MsgInvalidate})
}

func (s *wsSurface) Notify(n domain.Notice) {
	_ = s.writeJSON(domain.ServerMessage{Type: domain.MsgNotice, Level: n.Level, Title: n.Title, Message: n.Message})
}

func (s *wsSurface) MarkersChanged(markers []domain.Marker) {
	if markers == nil {
		markers = []domain.Marker{}
	}
	_ = s.writeJSON(domain.MarkersMessage{Type: domain.MsgMarkers, Markers: markers})
}

func (s *wsSurface) FormCleared() {
	metrics.MarkersAdded.WithLabelValues("manual").Inc()
	_ = s.writeJSON(domain.ServerMessage{Type: domain.MsgFormCleared})
}

func (s *wsSurface) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSurface) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// MapBridgeHandler serves one mapping session per connection. The client
// sends bridge messages ({"type":"mapReady"}, {"type":"mapClick","lat":..,"lng":..},
// submitCoordinates, save, clear, reload) and receives drawing operations,
// marker snapshots and notices.
func MapBridgeHandler(deps *Dependencies) func(*websocket.Conn) {
	pingInterval := deps.PingInterval
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}

	return func(c *websocket.Conn) {
		defer c.Close()

		userID, _ := c.Locals(string(userIDKey)).(string)
		surface := &wsSurface{conn: c}
		session := usecases.NewMappingSession(usecases.SessionConfig{
			UserID:    userID,
			Gateway:   instrumentedGateway{svc: deps.Markers},
			Surface:   surface,
			Notifier:  surface,
			Logger:    slog.Default().With("user_id", userID, "remote", c.RemoteAddr().String()),
			OpTimeout: deps.SessionOpTimeout,
		})
		logger := slog.Default().With("session_id", session.ID(), "user_id", userID)
		logger.Info("map session opened")

		// The connection is released when this handler returns, so the loop
		// and the pinger must be finished with it by then.
		ctx, cancel := context.WithCancel(context.Background())
		var pinger sync.WaitGroup
		go session.Run(ctx)
		defer func() {
			cancel()
			session.Close()
			<-session.Stopped()
			pinger.Wait()
		}()

		if deps.Sessions != nil {
			deps.Sessions.Add(session)
			defer deps.Sessions.Remove(session)
		}

		if err := session.Start(); err != nil {
			return
		}

		// Keep-alive ping
		pinger.Add(1)
		go func() {
			defer pinger.Done()
			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := surface.ping(); err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			err = session.HandleMessage(raw)
			switch {
			case err == nil:
				if isTap(raw) {
					metrics.MarkersAdded.WithLabelValues("tap").Inc()
				}
			case errors.Is(err, domain.ErrInvalidMessage):
				logger.Debug("rejected bridge message", "error", err)
				surface.Notify(domain.Notice{Level: domain.NoticeError, Title: "Invalid message", Message: userMessage(err)})
			case errors.Is(err, usecases.ErrSessionClosed):
				return
			default:
				logger.Warn("bridge message failed", "error", err)
			}
		}

		logger.Info("map session closed")
	}
}

func isTap(raw []byte) bool {
	var head struct {
		Type string `json:"type"`
	}
	return json.Unmarshal(raw, &head) == nil && head.Type == domain.MsgMapClick
}
