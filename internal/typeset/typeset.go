package typeset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tiletex/tiletex/pkg/raster"
)

// Request carries everything the typesetting engine needs to rasterize a
// formula. Color is a structured styling parameter understood by the
// engine; strokes and fills come back in that color instead of being
// rewritten after the fact.
type Request struct {
	Markup   string  `json:"markup"`
	Scale    float64 `json:"scale"`
	FontSize float64 `json:"font_size"`
	Color    string  `json:"color,omitempty"`
}

// Rasterizer turns typeset markup into an RGBA raster.
type Rasterizer interface {
	Rasterize(ctx context.Context, req Request) (*raster.Image, error)
}

// Error reports that the engine rejected the markup itself, typically a
// syntax error in the expression language. The message is the engine's
// own diagnostic, passed through verbatim.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// UpstreamError reports a transport or service failure unrelated to the
// markup content.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("typesetting service %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("typesetting service %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Service rasterizes markup through a remote typesetting endpoint. The
// endpoint accepts the Request as a JSON body and answers with a PNG (or
// JPEG) raster; markup rejections come back as 4xx with a JSON error
// body. One Service instance is shared by all requests.
type Service struct {
	url       string
	client    *http.Client
	userAgent string
}

// NewService creates a typesetting client for the given endpoint URL.
func NewService(url string) *Service {
	return &Service{
		url: url,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "tiletex/1.0.0",
	}
}

// Rasterize submits the markup and decodes the returned raster into RGBA.
func (s *Service) Rasterize(ctx context.Context, req Request) (*raster.Image, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{URL: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		// Markup problems come back as {"error": "..."}.
		var svcErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(data, &svcErr) == nil && svcErr.Error != "" {
			return nil, &Error{Message: svcErr.Error}
		}
		return nil, &UpstreamError{URL: s.url, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{URL: s.url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{URL: s.url, Err: err}
	}

	img, err := raster.DecodeImage(data)
	if err != nil {
		return nil, &UpstreamError{URL: s.url, Err: err}
	}

	return img, nil
}
