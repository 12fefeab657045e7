package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tiletex/tiletex/internal/api"
	"github.com/tiletex/tiletex/internal/pipeline"
	"github.com/tiletex/tiletex/internal/typeset"
	"github.com/tiletex/tiletex/pkg/raster"
)

// Server exposes the render pipeline over HTTP.
type Server struct {
	pipeline  *pipeline.Pipeline
	startTime time.Time
	version   string
}

// NewServer creates a new server instance around a shared pipeline.
func NewServer(pl *pipeline.Pipeline, version string) *Server {
	return &Server{
		pipeline:  pl,
		startTime: time.Now(),
		version:   version,
	}
}

// Routes mounts the API endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.GetHealth)
	r.Post("/render", s.CreateRender)
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// CreateRender implements the main rendering endpoint
func (s *Server) CreateRender(w http.ResponseWriter, r *http.Request) {
	// Generate request ID for tracking
	requestID := generateRequestID()

	// Parse request body
	var req api.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON",
			"Invalid JSON in request body", &requestID)
		return
	}

	// Convert API request to pipeline parameters
	params, err := s.convertToParams(&req)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR",
			err.Error(), &requestID)
		return
	}

	// Perform the render
	payload, err := s.pipeline.Render(r.Context(), params)
	if err != nil {
		s.handleRenderError(w, err, &requestID)
		return
	}

	response := api.NewRenderResponse(payload)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding render response: %v", err)
	}
}

// convertToParams converts an API request to pipeline parameters, filling
// documented defaults for absent optional fields.
func (s *Server) convertToParams(req *api.RenderRequest) (pipeline.Params, error) {
	params := pipeline.Params{
		Markup:         req.Markup,
		Scale:          pipeline.DefaultScale,
		FontSize:       pipeline.DefaultFontSize,
		Margin:         pipeline.DefaultMargin,
		AlphaThreshold: raster.DefaultAlphaThreshold,
		TileHeight:     pipeline.DefaultTileHeight,
	}

	if req.Scale != nil {
		params.Scale = *req.Scale
	}
	if req.FontSize != nil {
		params.FontSize = *req.FontSize
	}
	if req.Color != nil {
		params.Color = *req.Color
	}
	if req.Margin != nil {
		params.Margin = *req.Margin
	}
	if req.AlphaThreshold != nil {
		params.AlphaThreshold = *req.AlphaThreshold
	}
	if req.TileHeight != nil {
		params.TileHeight = *req.TileHeight
	}
	if req.TargetWidth != nil {
		if *req.TargetWidth <= 0 {
			return pipeline.Params{}, fmt.Errorf("target_width must be positive")
		}
		params.TargetWidth = *req.TargetWidth
	}
	if req.TargetHeight != nil {
		if *req.TargetHeight <= 0 {
			return pipeline.Params{}, fmt.Errorf("target_height must be positive")
		}
		params.TargetHeight = *req.TargetHeight
	}
	if req.Fit != nil {
		fit, err := raster.ParseFit(*req.Fit)
		if err != nil {
			return pipeline.Params{}, err
		}
		params.Fit = fit
	}

	return params, nil
}

// handleRenderError maps pipeline errors onto HTTP error responses
func (s *Server) handleRenderError(w http.ResponseWriter, err error, requestID *string) {
	var inputErr *pipeline.InputError
	if errors.As(err, &inputErr) {
		s.writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR",
			inputErr.Error(), requestID)
		return
	}

	var typesetErr *typeset.Error
	if errors.As(err, &typesetErr) {
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, "TYPESET_ERROR",
			typesetErr.Message, requestID)
		return
	}

	var upstreamErr *typeset.UpstreamError
	if errors.As(err, &upstreamErr) {
		s.writeErrorResponse(w, http.StatusBadGateway, "TYPESET_SERVER_ERROR",
			upstreamErr.Error(), requestID)
		return
	}

	var degenerateErr *pipeline.DegenerateImageError
	if errors.As(err, &degenerateErr) {
		log.Printf("degenerate raster: %v", degenerateErr)
		s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			degenerateErr.Error(), requestID)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "RENDER_TIMEOUT",
			"Rendering timed out", requestID)
		return
	}

	log.Printf("render error: %v", err)
	s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR",
		"Internal server error", requestID)
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}
