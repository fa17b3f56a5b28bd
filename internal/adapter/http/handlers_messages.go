package adapthttp

import (
	"net/http"

	"journal/internal/app"
	"journal/internal/domain"
)

type randomMessageResponse struct {
	ID        *int64  `json:"id"`
	Text      string  `json:"messageText"`
	Context   string  `json:"context"`
	Tone      *string `json:"tone"`
	Length    *string `json:"length"`
	SessionID string  `json:"sessionId"`
}

func (s *Server) handleRandomMessage(w http.ResponseWriter, r *http.Request) {
	m, err := s.messages.RandomMessage(r.Context(), r.URL.Query().Get("context"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	resp := randomMessageResponse{
		Text:      m.Text,
		Context:   m.Context,
		Tone:      m.Tone,
		Length:    m.Length,
		SessionID: s.messages.NewSessionID(),
	}
	if m.ID != 0 {
		resp.ID = &m.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrackMessage(w http.ResponseWriter, r *http.Request) {
	var req app.TrackRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := s.messages.Track(r.Context(), req)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "interactionId": id})
}

func (s *Server) handleUserState(w http.ResponseWriter, r *http.Request) {
	state, count, err := s.messages.UserState(r.Context(), userFrom(r).ID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userState": state, "entryCount": count})
}

func (s *Server) handleAdminListMessages(w http.ResponseWriter, r *http.Request) {
	list, err := s.messages.ListMessages(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAdminCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text    string  `json:"messageText"`
		Context string  `json:"context"`
		Tone    *string `json:"tone"`
		Length  *string `json:"length"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m, err := s.messages.CreateMessage(r.Context(), req.Text, req.Context, req.Tone, req.Length)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleAdminUpdateMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Text     *string `json:"messageText"`
		Context  *string `json:"context"`
		Tone     *string `json:"tone"`
		Length   *string `json:"length"`
		IsActive *bool   `json:"isActive"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m, err := s.messages.UpdateMessage(r.Context(), id, domain.MessagePatch{
		Text:     req.Text,
		Context:  req.Context,
		Tone:     req.Tone,
		Length:   req.Length,
		IsActive: req.IsActive,
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleAdminDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.messages.DeleteMessage(r.Context(), id); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleAdminMessageStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, err := s.messages.MessageStats(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAdminSiteStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.messages.SiteStats(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
