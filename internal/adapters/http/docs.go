package http

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

const defaultDocsPath = "api/openapi.yaml"

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>%s</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '/docs/openapi.json', dom_id: '#swagger-ui', deepLinking: true});
  </script>
</body>
</html>`

// apiDocs is the OpenAPI document of the field mapping API, checked once
// when the routes are built.
type apiDocs struct {
	raw   []byte
	json  []byte
	title string
}

func loadAPIDocs(path string) (*apiDocs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	asJSON, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	title := "Agrobot API"
	if doc.Info != nil && doc.Info.Title != "" {
		title = doc.Info.Title
	}
	return &apiDocs{raw: raw, json: asJSON, title: title}, nil
}

// SetupDocs registers Swagger UI at /docs and the OpenAPI document at
// /docs/openapi.yaml and /docs/openapi.json. A missing or invalid document
// is logged and its routes answer 404.
func SetupDocs(app *fiber.App, path string) {
	if path == "" {
		path = defaultDocsPath
	}
	docs, err := loadAPIDocs(path)
	if err != nil {
		slog.Warn("api docs disabled", "path", path, "error", err)
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		if docs == nil {
			return errNotFound(c, "api docs unavailable")
		}
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(fmt.Sprintf(swaggerUIPage, html.EscapeString(docs.title)))
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		if docs == nil {
			return errNotFound(c, "openapi.yaml not found")
		}
		c.Set("Content-Type", "application/yaml")
		return c.Send(docs.raw)
	})

	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		if docs == nil {
			return errNotFound(c, "openapi.json not found")
		}
		c.Set("Content-Type", fiber.MIMEApplicationJSON)
		return c.Send(docs.json)
	})
}
