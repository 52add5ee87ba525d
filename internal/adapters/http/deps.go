package http

import (
	"context"
	"time"

	"github.com/samirrijal/agrobot/internal/core/usecases"
)

// Pinger is a backend that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Markers   *usecases.MarkerService
	Detection *usecases.DetectionService
	Contact   *usecases.ContactService
	Sessions  *SessionHub

	// Readiness probes. Storage is required; the others are optional.
	Storage Pinger
	Cache   Pinger
	Broker  interface{ IsConnected() bool }

	// DocsPath is the OpenAPI document served at /docs/openapi.yaml.
	DocsPath string

	SessionOpTimeout time.Duration
	PingInterval     time.Duration
	RateLimit        int
}
