package http

import (
	"errors"
	"net/http"

	"gagyebu/internal/core"
	"gagyebu/internal/services"
)

func (s *Server) decodeTemplate(w http.ResponseWriter, r *http.Request) (services.TemplateRequest, error) {
	var req services.TemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return req, err
	}
	req.Name = sanitizeInput(req.Name)
	return req, nil
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeTemplate(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := s.deps.Recurring.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Recurring.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := s.deps.Recurring.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := s.decodeTemplate(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := s.deps.Recurring.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Recurring.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApplyAll answers 200 with the summary even when some templates
// failed; the failures are in the server log.
func (s *Server) handleApplyAll(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Recurring.ApplyAll(r.Context())
	if err != nil && summary == (core.ApplySummary{}) {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleApplyOne reports an expired template as 409 with the {0,1} summary,
// since the template was deleted.
func (s *Server) handleApplyOne(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.deps.Recurring.ApplyOne(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrTemplateExpired) {
			writeErrorWithSummary(w, r, err, &summary)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
