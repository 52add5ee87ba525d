package http_test

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/agrobot/internal/adapters/http"
)

// findOpenAPISpec locates the openapi.yaml file by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	// Start from the current working directory or test file location
	dir, _ := os.Getwd()

	// Look for api/openapi.yaml by going up directories
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

// TestOpenAPISpec validates the OpenAPI specification is valid.
func TestOpenAPISpec(t *testing.T) {
	// Load the spec file
	specPath := findOpenAPISpec(t)
	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	// Parse YAML spec
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}

	// Validate the spec
	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	// Check that key paths exist
	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/markers",
		"/v1/detections",
		"/v1/messages",
		"/graphql",
		"/ws/map",
	}

	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in spec", path)
		}
	}

	markers := spec.Paths.Find("/v1/markers")
	if markers != nil && (markers.Get == nil || markers.Put == nil || markers.Delete == nil) {
		t.Error("expected GET, PUT and DELETE on /v1/markers")
	}

	// Verify key schemas exist
	expectedSchemas := []string{
		"Marker",
		"MarkerDocument",
		"Detection",
		"DetectionResult",
		"ContactMessage",
		"Readiness",
		"APIError",
	}

	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI spec valid: %d paths, %d schemas", len(spec.Paths.Map()), len(spec.Components.Schemas))
}

// TestOpenAPIInfo verifies spec metadata.
func TestOpenAPIInfo(t *testing.T) {
	specPath := findOpenAPISpec(t)
	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}

	if spec.Info.Title != "Agrobot Field Mapping API" {
		t.Errorf("expected title 'Agrobot Field Mapping API', got %q", spec.Info.Title)
	}

	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}

	if spec.Info.Description == "" {
		t.Error("expected non-empty description")
	}

	if len(spec.Servers) == 0 {
		t.Error("expected at least one server")
	}

	t.Logf("OpenAPI Info: %s v%s @ %s", spec.Info.Title, spec.Info.Version, spec.Servers[0].URL)
}

// TestDocsRoutes serves the validated document and the Swagger UI page.
func TestDocsRoutes(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupDocs(app, findOpenAPISpec(t))

	for path, wantType := range map[string]string{
		"/docs":              "text/html",
		"/docs/openapi.yaml": "application/yaml",
		"/docs/openapi.json": "application/json",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, wantType) {
			t.Errorf("%s: expected content type %s, got %q", path, wantType, ct)
		}
		if path == "/docs" && !strings.Contains(string(body), "Agrobot Field Mapping API") {
			t.Errorf("expected the document title on the UI page")
		}
		if path == "/docs/openapi.json" && !strings.Contains(string(body), `"/v1/markers"`) {
			t.Errorf("expected the markers path in the JSON document")
		}
	}
}

// TestDocsRoutes_MissingDocument answers 404 instead of failing startup.
func TestDocsRoutes_MissingDocument(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupDocs(app, filepath.Join(t.TempDir(), "missing.yaml"))

	for _, path := range []string{"/docs", "/docs/openapi.yaml", "/docs/openapi.json"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 404 {
			t.Errorf("%s: expected 404, got %d", path, resp.StatusCode)
		}
	}
}
