package adapthttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"journal/internal/app"
)

func (s *Server) handleEntrySave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date    string          `json:"date"`
		Content json.RawMessage `json:"content"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := s.entries.Save(r.Context(), userFrom(r).ID, req.Date, req.Content)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleEntryGet(w http.ResponseWriter, r *http.Request) {
	entry, err := s.entries.Get(r.Context(), userFrom(r).ID, r.PathValue("date"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleEntryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.Delete(r.Context(), userFrom(r).ID, r.PathValue("date")); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleEntryRange(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.Range(r.Context(), userFrom(r).ID, r.PathValue("start"), r.PathValue("end"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleEntryOnThisDay(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: month must be a number", app.ErrValidation))
		return
	}
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: day must be a number", app.ErrValidation))
		return
	}

	entries, err := s.entries.OnThisDay(r.Context(), userFrom(r).ID, month, day)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
