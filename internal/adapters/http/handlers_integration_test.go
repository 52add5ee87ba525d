//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	handler "github.com/samirrijal/agrobot/internal/adapters/http"
	"github.com/samirrijal/agrobot/internal/adapters/postgres"
	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/usecases"
	"github.com/samirrijal/agrobot/internal/pkg/config"
)

// setupTestDB connects to the test database. The schema in migrations/
// must already be applied (go run ./cmd/migrate).
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("agrobot-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

// setupTestDeps creates dependencies with the real marker and message repos, no cache.
func setupTestDeps(db *postgres.DB) *handler.Dependencies {
	hub := handler.NewSessionHub()
	return &handler.Dependencies{
		Markers:   usecases.NewMarkerService(postgres.NewMarkerRepo(db), nil, hub),
		Detection: usecases.NewDetectionService(&mockDetector{}, false),
		Contact:   usecases.NewContactService(postgres.NewMessageRepo(db)),
		Sessions:  hub,
		Storage:   db,
	}
}

func testUserID() string {
	return fmt.Sprintf("integ-%d", time.Now().UnixNano())
}

// TestMarkers_Integration_RoundTrip saves, loads and clears against a real database.
func TestMarkers_Integration_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	app := setupApp(setupTestDeps(db))
	uid := testUserID()

	status, body, _ := doRequest(t, app, request("GET", "/v1/markers", uid, ""))
	if status != 404 {
		t.Fatalf("expected 404 before the first save, got %d: %s", status, body)
	}

	status, body, _ = doRequest(t, app, request("PUT", "/v1/markers", uid, manilaBody))
	if status != 200 {
		t.Fatalf("PUT: expected 200, got %d: %s", status, body)
	}

	status, body, _ = doRequest(t, app, request("GET", "/v1/markers", uid, ""))
	if status != 200 {
		t.Fatalf("GET: expected 200, got %d", status)
	}
	var doc domain.MarkerDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(doc.Markers) != 1 || doc.Markers[0].ID != "m1" || doc.Markers[0].Lng != 120.9842 {
		t.Errorf("unexpected markers %+v", doc.Markers)
	}
	if doc.UpdatedAt.IsZero() {
		t.Error("expected updated_at from the database")
	}

	status, _, _ = doRequest(t, app, request("DELETE", "/v1/markers", uid, ""))
	if status != 204 {
		t.Fatalf("DELETE: expected 204, got %d", status)
	}

	status, body, _ = doRequest(t, app, request("GET", "/v1/markers", uid, ""))
	if status != 200 {
		t.Fatalf("expected 200 after clear, got %d", status)
	}
	doc = domain.MarkerDocument{}
	json.Unmarshal(body, &doc)
	if doc.Markers == nil || len(doc.Markers) != 0 {
		t.Errorf("expected an explicit empty list, got %+v", doc.Markers)
	}
}

// TestContact_Integration stores a contact message.
func TestContact_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	app := setupApp(setupTestDeps(db))
	body := `{"firstName":"Integration","lastName":"Test","email":"it@example.com","message":"hello"}`
	status, resp, _ := doRequest(t, app, request("POST", "/v1/messages", "", body))
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, resp)
	}
}

// TestReady_Integration checks the readiness probe against the database.
func TestReady_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	status, body, _ := doRequest(t, setupApp(setupTestDeps(db)), request("GET", "/v1/ready", "", ""))
	if status != 200 {
		t.Errorf("expected 200, got %d: %s", status, body)
	}
}
