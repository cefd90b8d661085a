package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/ljmurray/squircle/internal/engine"
	"github.com/ljmurray/squircle/internal/geom"
)

const maxBodySize = 64 << 10 // 64 KB

// generatePathRequest is the JSON body for POST /v1/paths. Pointer fields
// distinguish an absent parameter from a legitimate zero.
type generatePathRequest struct {
	Width    *float64 `json:"width"`
	Height   *float64 `json:"height"`
	Exponent *float64 `json:"exponent"`
}

// generateCornersRequest is the JSON body for POST /v1/paths/corners.
type generateCornersRequest struct {
	Width   *float64    `json:"width"`
	Height  *float64    `json:"height"`
	Corners *cornersReq `json:"corners"`
}

type cornersReq struct {
	TopLeft     *float64 `json:"top_left"`
	TopRight    *float64 `json:"top_right"`
	BottomRight *float64 `json:"bottom_right"`
	BottomLeft  *float64 `json:"bottom_left"`
}

// pathResponse is the JSON response for both generation endpoints.
type pathResponse struct {
	PathData   string `json:"path_data"`
	Strategy   string `json:"strategy"`
	DurationMS int64  `json:"duration_ms"`
}

func (s *Server) handleGeneratePath(w http.ResponseWriter, r *http.Request) {
	var req generatePathRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Width == nil || req.Height == nil || req.Exponent == nil {
		s.writeError(w, http.StatusBadRequest, "width, height and exponent are required")
		return
	}
	if !finite(*req.Width, *req.Height, *req.Exponent) {
		s.writeError(w, http.StatusBadRequest, "parameters must be finite numbers")
		return
	}

	start := time.Now()
	res, err := s.engine.GeneratePath(r.Context(), *req.Width, *req.Height, *req.Exponent)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, pathResponse{
		PathData:   res.PathData,
		Strategy:   res.Strategy,
		DurationMS: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleGeneratePerCornerPath(w http.ResponseWriter, r *http.Request) {
	var req generateCornersRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Width == nil || req.Height == nil || req.Corners == nil {
		s.writeError(w, http.StatusBadRequest, "width, height and corners are required")
		return
	}
	c := req.Corners
	if c.TopLeft == nil || c.TopRight == nil || c.BottomRight == nil || c.BottomLeft == nil {
		s.writeError(w, http.StatusBadRequest, "all four corner exponents are required")
		return
	}
	if !finite(*req.Width, *req.Height, *c.TopLeft, *c.TopRight, *c.BottomRight, *c.BottomLeft) {
		s.writeError(w, http.StatusBadRequest, "parameters must be finite numbers")
		return
	}

	corners := geom.CornerExponents{
		TopLeft:     *c.TopLeft,
		TopRight:    *c.TopRight,
		BottomRight: *c.BottomRight,
		BottomLeft:  *c.BottomLeft,
	}

	start := time.Now()
	res, err := s.engine.GeneratePerCornerPath(r.Context(), *req.Width, *req.Height, corners)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, pathResponse{
		PathData:   res.PathData,
		Strategy:   res.Strategy,
		DurationMS: time.Since(start).Milliseconds(),
	})
}

// writeEngineError maps engine failures onto HTTP status codes.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrTimeout):
		s.writeError(w, http.StatusGatewayTimeout, "path generation timed out")
	case errors.Is(err, engine.ErrWorkerFailed):
		s.writeError(w, http.StatusBadGateway, "worker failed during generation")
	default:
		s.logger.Error("generate path", "error", err)
		s.writeError(w, http.StatusInternalServerError, "path generation failed")
	}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
