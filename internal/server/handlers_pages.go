package server

import (
	"net/http"

	"github.com/akshayks13/genai-frontend-sub000/internal/listings"
	"github.com/akshayks13/genai-frontend-sub000/internal/server/middleware"
	"github.com/akshayks13/genai-frontend-sub000/internal/session"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
	"go.uber.org/zap"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAccessToken(r)

	page, err := s.deps.Dashboard.Page(r.Context(), token, googleToken(r))
	if err != nil {
		s.failure(w, r, err, "Error loading dashboard")
		return
	}
	s.jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAccessToken(r)

	resp, err := s.deps.Profile.User(r.Context(), token)
	if err != nil {
		s.failure(w, r, err, "Error loading profile")
		return
	}
	s.rawResponse(w, resp.Status, resp.Body)
}

// handleUpdateProfile saves profile edits and refreshes the cached name.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateProfileRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}
	token, _ := middleware.GetAccessToken(r)

	resp, err := s.deps.Profile.UpdateUser(r.Context(), token, req)
	if err != nil {
		s.failure(w, r, err, "Error updating profile")
		return
	}

	if sid := middleware.GetSessionID(r); sid != "" && req.Name != "" {
		_, err := s.deps.Sessions.Update(r.Context(), sid, func(rec *session.Record) error {
			rec.UserName = req.Name
			return nil
		})
		if err != nil {
			s.logger.Warn("failed to update cached name", zap.Error(err))
		}
	}
	s.rawResponse(w, resp.Status, resp.Body)
}

func (s *Server) handleCareers(w http.ResponseWriter, r *http.Request) {
	filter, err := listings.ParseJobFilter(r.URL.Query())
	if err != nil {
		s.failure(w, r, err, "")
		return
	}
	token, _ := middleware.GetAccessToken(r)

	out, err := s.deps.Listings.Careers(r.Context(), token, filter)
	if err != nil {
		s.failure(w, r, err, "Error loading careers")
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	filter, err := listings.ParseTrendFilter(r.URL.Query())
	if err != nil {
		s.failure(w, r, err, "")
		return
	}
	token, _ := middleware.GetAccessToken(r)

	out, err := s.deps.Listings.Trends(r.Context(), token, filter)
	if err != nil {
		s.failure(w, r, err, "Error loading trends")
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAccessToken(r)

	out, err := s.deps.Roadmaps.List(r.Context(), token)
	if err != nil {
		s.failure(w, r, err, "Error loading roadmaps")
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleCreateRoadmap(w http.ResponseWriter, r *http.Request) {
	var req types.CreateRoadmapRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}
	token, _ := middleware.GetAccessToken(r)

	resp, err := s.deps.Roadmaps.Create(r.Context(), token, req)
	if err != nil {
		s.failure(w, r, err, "Error creating roadmap")
		return
	}
	s.rawResponse(w, resp.Status, resp.Body)
}

// handleSyncRoadmap copies a roadmap's steps to Google Tasks. A partial sync
// reports the tasks that were created before the failure.
func (s *Server) handleSyncRoadmap(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAccessToken(r)

	result, err := s.deps.Roadmaps.Sync(r.Context(), token, googleToken(r), r.PathValue("id"))
	if err != nil {
		if result != nil && len(result.Created) > 0 {
			s.logger.Warn("roadmap sync incomplete", zap.Error(err))
			s.jsonResponse(w, http.StatusBadGateway, map[string]any{
				"error":   "Sync incomplete",
				"created": result.Created,
			})
			return
		}
		s.failure(w, r, err, "Sync failed")
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
