package server

import (
	"net/http"

	"github.com/akshayks13/genai-frontend-sub000/internal/server/middleware"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
)

// chatSession returns the session holding the transcript. Bearer-only
// callers get a session cookie on first use.
func (s *Server) chatSession(w http.ResponseWriter, r *http.Request) string {
	if sid := middleware.GetSessionID(r); sid != "" {
		return sid
	}
	return middleware.EnsureSessionID(w, r, s.cfg.SessionTTL, s.cfg.CookieSecure)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.deps.Explore.History(r.Context(), s.chatSession(w, r))
	if err != nil {
		s.failure(w, r, err, "Error loading messages")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"messages": messages})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req types.SendMessageRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}
	token, _ := middleware.GetAccessToken(r)

	out, err := s.deps.Explore.Send(r.Context(), s.chatSession(w, r), token, req.Text)
	if err != nil {
		s.failure(w, r, err, "Error processing request")
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleResetMessages(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Explore.Reset(r.Context(), s.chatSession(w, r)); err != nil {
		s.failure(w, r, err, "Error processing request")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
