package http

import (
	"net/http"
	"strconv"

	"gagyebu/internal/services"
)

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req services.BudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.deps.Budgets.Set(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleListBudgets answers ?year=&month= for one month or ?startDate=&endDate=
// for every month the range touches.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		list []services.BudgetStatus
		err  error
	)
	switch {
	case q.Has("startDate") || q.Has("endDate"):
		from, ferr := queryDate(r, "startDate")
		to, terr := queryDate(r, "endDate")
		if ferr != nil || terr != nil {
			writeError(w, r, badRequest("startDate and endDate must be YYYY-MM-DD"))
			return
		}
		list, err = s.deps.Budgets.Period(r.Context(), from, to)
	case q.Has("year") && q.Has("month"):
		year, yerr := strconv.Atoi(q.Get("year"))
		month, merr := strconv.Atoi(q.Get("month"))
		if yerr != nil || merr != nil {
			writeError(w, r, badRequest("year and month must be integers"))
			return
		}
		list, err = s.deps.Budgets.Month(r.Context(), year, month)
	default:
		writeError(w, r, badRequest("either year and month or startDate and endDate are required"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Budgets.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
