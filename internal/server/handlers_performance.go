package server

import (
	"net/http"

	"github.com/folioworks/folio/internal/models"
)

// handlePerformanceCompute handles POST /api/performance. The body is a
// compute request envelope; the response always echoes the request id, with
// a nil payload when the request was invalid or the computation failed.
func (s *Server) handlePerformanceCompute(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ComputeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	resp := s.app.Pool.Do(r.Context(), &req)
	WriteJSON(w, http.StatusOK, resp)
}

// handlePerformanceChart handles POST /api/performance/chart: runs the same
// computation and renders the combined value and net-deposit series as PNG.
func (s *Server) handlePerformanceChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ComputeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	resp := s.app.Pool.Do(r.Context(), &req)
	if resp.Payload == nil {
		WriteError(w, http.StatusUnprocessableEntity, "Computation produced no result")
		return
	}

	png, err := s.app.Performance.RenderChart(resp.Payload)
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", resp.ID).Msg("Chart rendering failed")
		WriteError(w, http.StatusInternalServerError, "Chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
