package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/folioworks/folio/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Performance engine
	mux.HandleFunc("/api/performance", s.handlePerformanceCompute)
	mux.HandleFunc("/api/performance/chart", s.handlePerformanceChart)

	// Market data cache
	mux.HandleFunc("/api/market/tickers", s.handleMarketTickers)
	mux.HandleFunc("/api/market/", s.handleMarketData)
	mux.HandleFunc("/api/market", s.handleMarketUpsert)

	// Compute completion events
	mux.HandleFunc("/ws/events", s.app.Hub.ServeWS)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":   cfg.Environment,
		"base_currency": cfg.BaseCurrency,
		"benchmark":     cfg.Benchmark,
		"workers":       cfg.Engine.GetWorkers(),
		"strict_rates":  cfg.Engine.StrictRates,
		"outlier_guard": cfg.Engine.OutlierGuard,
		"goroutines":    runtime.NumGoroutine(),
		"uptime":        time.Since(s.app.StartupTime).String(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
