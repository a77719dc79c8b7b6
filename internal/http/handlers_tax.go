package http

import (
	"net/http"
	"strconv"
	"strings"

	"gagyebu/internal/services"
)

func (s *Server) handleStockTax(w http.ResponseWriter, r *http.Request) {
	var req services.StockTaxRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.deps.Tax.StockTax(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleYearEnd(w http.ResponseWriter, r *http.Request) {
	var req services.YearEndRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.deps.Tax.YearEnd(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type cardSpendingResponse struct {
	Year       int    `json:"year"`
	Credit     string `json:"credit"`
	Check      string `json:"check"`
	Unassigned string `json:"unassigned"`
}

// handleCardSpending reports ?year= (required) card expenses by card type.
func (s *Server) handleCardSpending(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		writeError(w, r, badRequest("invalid year %q", raw))
		return
	}
	spent, err := s.deps.Tax.CardSpending(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cardSpendingResponse{
		Year:       year,
		Credit:     spent.Credit.String(),
		Check:      spent.Check.String(),
		Unassigned: spent.Unassigned.String(),
	})
}
