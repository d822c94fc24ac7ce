// Package resume implements the resume editor flows: loading and saving LaTeX
// source, compiling it, and uploading the compiled PDF to the profile.
package resume

import (
	"context"
	"fmt"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/compile"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
)

// DownloadFilename is offered to browsers saving a compiled resume.
const DownloadFilename = "resume.pdf"

// ProfileAPI is the subset of the profile service the editor needs.
type ProfileAPI interface {
	ResumeSource(ctx context.Context, token string) (*apiclient.Response, error)
	SaveResumeSource(ctx context.Context, token string, req types.SaveResumeSourceRequest) (*apiclient.Response, error)
	UploadResume(ctx context.Context, token string, pdf []byte) (*apiclient.Response, error)
	EnhanceResume(ctx context.Context, token string, req types.EnhanceResumeRequest) (*apiclient.Response, error)
}

// Compiler turns source into a PDF.
type Compiler interface {
	Compile(ctx context.Context, source []byte) (*compile.Result, error)
}

// Service runs editor flows for one backend.
type Service struct {
	profile  ProfileAPI
	compiler Compiler
}

// New creates a Service.
func New(profile ProfileAPI, compiler Compiler) *Service {
	return &Service{profile: profile, compiler: compiler}
}

// Source loads the stored LaTeX source.
func (s *Service) Source(ctx context.Context, token string) (*types.ResumeSource, error) {
	resp, err := s.profile.ResumeSource(ctx, token)
	if err != nil {
		return nil, err
	}
	var src types.ResumeSource
	if err := resp.Decode(&src); err != nil {
		return nil, fmt.Errorf("failed to decode resume source: %w", err)
	}
	return &src, nil
}

// SaveSource replaces the stored LaTeX source and returns the backend reply.
func (s *Service) SaveSource(ctx context.Context, token, source string) (*apiclient.Response, error) {
	return s.profile.SaveResumeSource(ctx, token, types.SaveResumeSourceRequest{Source: source})
}

// Compile renders the editor content for preview.
func (s *Service) Compile(ctx context.Context, source string) (*compile.Result, error) {
	return s.compiler.Compile(ctx, editorBytes(source))
}

// Download renders the editor content for saving. It sends the compiler
// exactly what Compile sends for the same content.
func (s *Service) Download(ctx context.Context, source string) (*compile.Result, error) {
	return s.compiler.Compile(ctx, editorBytes(source))
}

// Upload compiles source and stores the PDF on the user's profile.
func (s *Service) Upload(ctx context.Context, token, source string) (*types.UploadResult, error) {
	result, err := s.Compile(ctx, source)
	if err != nil {
		return nil, err
	}

	resp, err := s.profile.UploadResume(ctx, token, result.PDF)
	if err != nil {
		return nil, err
	}

	var out types.UploadResult
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	out.Stage = string(result.Stage)
	return &out, nil
}

// Enhance asks the profile service to improve source.
func (s *Service) Enhance(ctx context.Context, token string, req types.EnhanceResumeRequest) (*apiclient.Response, error) {
	return s.profile.EnhanceResume(ctx, token, req)
}

// editorBytes is the single place editor text becomes a compile body.
func editorBytes(source string) []byte {
	return []byte(source)
}
