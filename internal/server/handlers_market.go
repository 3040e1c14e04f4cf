package server

import (
	"net/http"

	"github.com/folioworks/folio/internal/models"
)

// handleMarketUpsert handles POST /api/market: upserts one ticker's cached
// record (reference info, price history, live quote).
func (s *Server) handleMarketUpsert(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var data models.MarketData
	if !DecodeJSON(w, r, &data) {
		return
	}
	if data.Ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	if err := s.app.Store.PutMarketData(r.Context(), &data); err != nil {
		s.logger.Error().Err(err).Str("ticker", data.Ticker).Msg("Market data upsert failed")
		WriteError(w, http.StatusInternalServerError, "Failed to save market data")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"ticker": data.Ticker, "status": "saved"})
}

// handleMarketData handles GET /api/market/{ticker}.
func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := PathParam(r, "/api/market/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	data, err := s.app.Store.GetMarketData(r.Context(), ticker)
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("Market data lookup failed")
		WriteError(w, http.StatusInternalServerError, "Failed to load market data")
		return
	}
	if data == nil {
		WriteError(w, http.StatusNotFound, "Ticker not cached")
		return
	}

	WriteJSON(w, http.StatusOK, data)
}

// handleMarketTickers handles GET /api/market/tickers.
func (s *Server) handleMarketTickers(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	tickers, err := s.app.Store.ListTickers(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Ticker listing failed")
		WriteError(w, http.StatusInternalServerError, "Failed to list tickers")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"tickers": tickers, "count": len(tickers)})
}
