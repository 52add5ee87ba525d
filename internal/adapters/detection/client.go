// Package detection is the HTTP client of the remote obstruction-detection model.
package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

const detectPath = "/detect_base64"

// Client implements ports.Detector.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *fasthttp.Client
}

// NewClient creates a client for the detector at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + detectPath,
		timeout:  timeout,
		http: &fasthttp.Client{
			Name:                "agrobot-detection",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: 32 << 20,
		},
	}
}

type detectRequest struct {
	Image string `json:"image"`
}

// Detect posts the image and decodes the model output. Network failures
// and non-2xx answers wrap domain.ErrTransport.
func (c *Client) Detect(ctx context.Context, imageBase64 string) (*domain.RawDetectionResult, error) {
	body, err := json.Marshal(detectRequest{Image: imageBase64})
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("%w: detector request: %v", domain.ErrTransport, err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, fmt.Errorf("%w: detector returned HTTP %d", domain.ErrTransport, code)
	}

	var raw domain.RawDetectionResult
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode detector response: %w", err)
	}
	return &raw, nil
}
