package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/akshayks13/genai-frontend-sub000/internal/server/middleware"
	"github.com/akshayks13/genai-frontend-sub000/internal/session"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
	"go.uber.org/zap"
)

// handleSignup registers an account. When the backend answers with a token
// the caller is logged in straight away.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}
	req.Normalize()

	resp, err := s.deps.Auth.Register(r.Context(), req)
	if err != nil {
		s.failure(w, r, err, "Signup failed")
		return
	}

	var tr types.TokenResponse
	if resp.Decode(&tr) == nil && tr.AccessToken != "" {
		info, err := s.startSession(w, r, &tr)
		if err != nil {
			s.failure(w, r, err, "Signup failed")
			return
		}
		s.jsonResponse(w, http.StatusCreated, info)
		return
	}
	s.rawResponse(w, resp.Status, resp.Body)
}

// handleLogin exchanges credentials for a session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}
	req.Normalize()

	resp, err := s.deps.Auth.Login(r.Context(), req)
	if err != nil {
		s.failure(w, r, err, "Login failed")
		return
	}

	var tr types.TokenResponse
	if err := resp.Decode(&tr); err != nil || tr.AccessToken == "" {
		s.logger.Error("login response carried no token", zap.Error(err))
		s.errorResponse(w, http.StatusBadGateway, "Login failed")
		return
	}

	info, err := s.startSession(w, r, &tr)
	if err != nil {
		s.failure(w, r, err, "Login failed")
		return
	}
	s.jsonResponse(w, http.StatusOK, info)
}

// startSession stores the token and cached identity under a freshly minted
// session ID. A cookie the browser already held is never promoted to an
// authenticated session; its transcript moves to the new ID and the old
// record is dropped.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, tr *types.TokenResponse) (types.SessionInfo, error) {
	ctx := r.Context()
	name, email := middleware.Identity(tr.AccessToken, tr.User)

	var carried []types.Message
	old := middleware.SessionID(r)
	if old != "" {
		if prev, err := s.deps.Sessions.Get(ctx, old); err == nil {
			carried = prev.Messages
		}
	}

	sid := session.NewID()
	rec, err := s.deps.Sessions.Update(ctx, sid, func(rec *session.Record) error {
		rec.Messages = carried
		rec.AccessToken = tr.AccessToken
		rec.UserName = name
		rec.UserEmail = email
		return nil
	})
	if err != nil {
		return types.SessionInfo{}, fmt.Errorf("failed to store session: %w", err)
	}
	middleware.SetSessionCookie(w, sid, s.cfg.SessionTTL, s.cfg.CookieSecure)

	if old != "" {
		if err := s.deps.Sessions.Delete(ctx, old); err != nil {
			s.logger.Warn("failed to drop pre-login session", zap.Error(err))
		}
	}
	return rec.Info(), nil
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req types.ForgotPasswordRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}

	resp, err := s.deps.Auth.ForgotPassword(r.Context(), req)
	if err != nil {
		s.failure(w, r, err, "Could not send reset email")
		return
	}
	s.rawResponse(w, resp.Status, resp.Body)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req types.ResetPasswordRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}

	resp, err := s.deps.Auth.ResetPassword(r.Context(), req)
	if err != nil {
		s.failure(w, r, err, "Password reset failed")
		return
	}
	s.rawResponse(w, resp.Status, resp.Body)
}

// handleLogout drops the session and its cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sid := middleware.SessionID(r); sid != "" {
		if err := s.deps.Sessions.Delete(r.Context(), sid); err != nil {
			s.logger.Warn("failed to delete session", zap.Error(err))
		}
	}
	middleware.ClearSessionCookie(w, s.cfg.CookieSecure)
	s.jsonResponse(w, http.StatusOK, types.SessionInfo{Authenticated: false})
}

// handleSession reports the cached identity without calling the backend.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionID(r)
	if sid == "" {
		s.jsonResponse(w, http.StatusOK, types.SessionInfo{})
		return
	}

	rec, err := s.deps.Sessions.Get(r.Context(), sid)
	switch {
	case errors.Is(err, session.ErrNotFound):
		s.jsonResponse(w, http.StatusOK, types.SessionInfo{})
	case err != nil:
		s.failure(w, r, err, "Error processing request")
	default:
		s.jsonResponse(w, http.StatusOK, rec.Info())
	}
}
