// Package api defines the JSON types of the HTTP interface.
package api

import (
	"time"

	"github.com/tiletex/tiletex/internal/pipeline"
)

// RenderRequest is the body of POST /api/v1/render. Optional fields are
// pointers so absent and zero values stay distinguishable.
type RenderRequest struct {
	Markup         string   `json:"markup"`
	Scale          *float64 `json:"scale,omitempty"`
	FontSize       *float64 `json:"font_size,omitempty"`
	Color          *string  `json:"color,omitempty"`
	Margin         *int     `json:"margin,omitempty"`
	AlphaThreshold *int     `json:"alpha_threshold,omitempty"`
	TileHeight     *int     `json:"tile_height,omitempty"`
	TargetWidth    *int     `json:"target_width,omitempty"`
	TargetHeight   *int     `json:"target_height,omitempty"`
	Fit            *string  `json:"fit,omitempty"`
}

// CropInfo locates the delivered pixels inside the original raster.
type CropInfo struct {
	Left           int `json:"left"`
	Top            int `json:"top"`
	Width          int `json:"width"`
	Height         int `json:"height"`
	OriginalWidth  int `json:"original_width"`
	OriginalHeight int `json:"original_height"`
}

// RenderResponse carries the reassemblable tile payload. Tiles are raw
// RGBA row bands; encoding/json emits them base64-encoded.
type RenderResponse struct {
	Tiles      [][]byte `json:"tiles"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Channels   int      `json:"channels"`
	TileHeight int      `json:"tile_height"`
	Crop       CropInfo `json:"crop"`
}

// NewRenderResponse converts a pipeline payload into its wire shape.
func NewRenderResponse(p *pipeline.Payload) RenderResponse {
	return RenderResponse{
		Tiles:      p.Tiles,
		Width:      p.Width,
		Height:     p.Height,
		Channels:   p.Channels,
		TileHeight: p.TileHeight,
		Crop: CropInfo{
			Left:           p.Crop.Left,
			Top:            p.Crop.Top,
			Width:          p.Crop.Width,
			Height:         p.Crop.Height,
			OriginalWidth:  p.Crop.OriginalWidth,
			OriginalHeight: p.Crop.OriginalHeight,
		},
	}
}

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	Error     string  `json:"error"`
	Message   string  `json:"message"`
	RequestId *string `json:"request_id,omitempty"`
}

// HealthStatus enumerates health states.
type HealthStatus string

// Healthy is the only state this service reports.
const Healthy HealthStatus = "healthy"

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Uptime    *int         `json:"uptime,omitempty"`
	Version   *string      `json:"version,omitempty"`
}
