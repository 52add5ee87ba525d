package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/pkg/metrics"
)

const noMarkersMsg = "no markers saved yet"

// markersRequest is the body of PUT /v1/markers. Markers is a pointer so an
// explicit empty list can be told apart from a missing field.
type markersRequest struct {
	Markers *[]domain.Marker `json:"markers"`
}

// GetMarkersHandler returns the caller's saved marker document.
func GetMarkersHandler(deps *Dependencies) fiber.Handler {
	gw := instrumentedGateway{svc: deps.Markers}
	return func(c *fiber.Ctx) error {
		doc, err := gw.Document(c.UserContext(), UserIDFromCtx(c.UserContext()))
		if err != nil {
			return errFromDomain(c, err, noMarkersMsg)
		}

		if notModified(c, markerDocumentETag(doc)) {
			return c.SendStatus(fiber.StatusNotModified)
		}
		return c.JSON(doc)
	}
}

// PutMarkersHandler overwrites the caller's marker document.
func PutMarkersHandler(deps *Dependencies) fiber.Handler {
	gw := instrumentedGateway{svc: deps.Markers}
	return func(c *fiber.Ctx) error {
		var req markersRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Markers == nil {
			return errBadRequest(c, "markers is required")
		}

		if err := gw.SaveFromSession(c.UserContext(), UserIDFromCtx(c.UserContext()), "", *req.Markers); err != nil {
			return errFromDomain(c, err, noMarkersMsg)
		}
		return c.JSON(fiber.Map{"status": "saved", "count": len(*req.Markers)})
	}
}

// DeleteMarkersHandler clears the caller's markers by saving an empty set.
func DeleteMarkersHandler(deps *Dependencies) fiber.Handler {
	gw := instrumentedGateway{svc: deps.Markers}
	return func(c *fiber.Ctx) error {
		if err := gw.SaveFromSession(c.UserContext(), UserIDFromCtx(c.UserContext()), "", []domain.Marker{}); err != nil {
			return errFromDomain(c, err, noMarkersMsg)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DetectHandler runs obstruction detection on a base64 image.
func DetectHandler(deps *Dependencies) fiber.Handler {
	type detectRequest struct {
		Image string `json:"image"`
	}

	return func(c *fiber.Ctx) error {
		var req detectRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		res, err := deps.Detection.Analyze(c.UserContext(), req.Image)
		if err != nil {
			if errors.Is(err, domain.ErrTransport) {
				return errUpstream(c, "detection service unavailable")
			}
			return errFromDomain(c, err, "")
		}

		demo := "false"
		if res.Demo {
			demo = "true"
		}
		metrics.Detections.WithLabelValues(res.ObstructionAnalysis.Severity, demo).Inc()

		c.Set("Cache-Control", "no-store")
		return c.JSON(res)
	}
}

// ContactHandler stores a contact-form message.
func ContactHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var msg domain.ContactMessage
		if err := c.BodyParser(&msg); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		msg.ID = ""

		if err := deps.Contact.Submit(c.UserContext(), &msg); err != nil {
			return errFromDomain(c, err, "")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":        msg.ID,
			"createdAt": msg.CreatedAt,
			"message":   "Your message has been sent successfully!",
		})
	}
}
