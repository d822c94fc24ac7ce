package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/akshayks13/genai-frontend-sub000/internal/compile"
	"github.com/akshayks13/genai-frontend-sub000/internal/resume"
	"github.com/akshayks13/genai-frontend-sub000/internal/server/middleware"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
	"go.uber.org/zap"
)

// CompileSourceHeader names the stage that produced a PDF.
const CompileSourceHeader = "X-Compile-Source"

// maxCompileBody bounds raw compile requests.
const maxCompileBody = 5 << 20

// handleCompile turns a raw text body into a PDF. Forwarding failures are
// absorbed by the fallback; only a failed fallback is an error.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	source, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCompileBody))
	if err != nil {
		s.logger.Warn("failed to read compile body", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to read request body")
		return
	}

	result, err := s.deps.Compiler.Compile(r.Context(), source)
	if err != nil {
		s.logger.Error("compile failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Compilation failed")
		return
	}
	s.writePDF(w, result, "")
}

// writePDF sends result. A non-empty filename makes it a download.
func (s *Server) writePDF(w http.ResponseWriter, result *compile.Result, filename string) {
	if m := s.deps.Metrics; m != nil {
		m.Compiles.WithLabelValues(string(result.Stage)).Inc()
	}

	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Length", strconv.Itoa(len(result.PDF)))
	h.Set(CompileSourceHeader, string(result.Stage))
	if filename != "" {
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	} else {
		h.Set("Content-Disposition", "inline")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.PDF)
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAccessToken(r)

	src, err := s.deps.Resume.Source(r.Context(), token)
	if err != nil {
		s.failure(w, r, err, "Error loading resume")
		return
	}
	s.jsonResponse(w, http.StatusOK, src)
}

func (s *Server) handleSaveResume(w http.ResponseWriter, r *http.Request) {
	var req types.SaveResumeSourceRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}
	token, _ := middleware.GetAccessToken(r)

	resp, err := s.deps.Resume.SaveSource(r.Context(), token, req.Source)
	if err != nil {
		s.failure(w, r, err, "Save failed")
		return
	}
	s.rawResponse(w, resp.Status, resp.Body)
}

func (s *Server) handleCompileResume(w http.ResponseWriter, r *http.Request) {
	var req types.CompileRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}

	result, err := s.deps.Resume.Compile(r.Context(), req.Source)
	if err != nil {
		s.failure(w, r, err, "Compilation failed")
		return
	}
	s.writePDF(w, result, "")
}

func (s *Server) handleDownloadResume(w http.ResponseWriter, r *http.Request) {
	var req types.CompileRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}

	result, err := s.deps.Resume.Download(r.Context(), req.Source)
	if err != nil {
		s.failure(w, r, err, "Download failed")
		return
	}
	s.writePDF(w, result, resume.DownloadFilename)
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	var req types.CompileRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}
	token, _ := middleware.GetAccessToken(r)

	out, err := s.deps.Resume.Upload(r.Context(), token, req.Source)
	if err != nil {
		s.failure(w, r, err, "Upload failed")
		return
	}
	if m := s.deps.Metrics; m != nil {
		m.Compiles.WithLabelValues(out.Stage).Inc()
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleEnhanceResume(w http.ResponseWriter, r *http.Request) {
	var req types.EnhanceResumeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}
	token, _ := middleware.GetAccessToken(r)

	resp, err := s.deps.Resume.Enhance(r.Context(), token, req)
	if err != nil {
		s.failure(w, r, err, "Enhance failed")
		return
	}
	s.rawResponse(w, resp.Status, resp.Body)
}
