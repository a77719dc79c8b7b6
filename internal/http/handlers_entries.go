package http

import (
	"net/http"
	"strings"

	"gagyebu/internal/core"
	"gagyebu/internal/services"
)

func decodeEntry(w http.ResponseWriter, r *http.Request) (services.EntryRequest, error) {
	var req services.EntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return req, err
	}
	req.Memo = sanitizeInput(req.Memo)
	return req, nil
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEntry(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.deps.Entries.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// handleListEntries serves ?from=&to= with an optional ?paymentMethod= filter.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var entries []core.Entry
	if pm := strings.TrimSpace(r.URL.Query().Get("paymentMethod")); pm != "" {
		entries, err = s.deps.Entries.ListByPaymentMethod(r.Context(), core.PaymentMethod(strings.ToUpper(pm)), from, to)
	} else {
		entries, err = s.deps.Entries.List(r.Context(), from, to)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

func (s *Server) handlePlannedEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Entries.ListPlanned(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.deps.Entries.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeEntry(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.deps.Entries.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleConfirmEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.deps.Entries.Confirm(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Entries.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCardEntries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, to, err := queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := s.deps.Entries.ListByCard(r.Context(), id, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
