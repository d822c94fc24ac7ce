// Package compile turns resume source into PDF bytes. It prefers an external
// LaTeX service, optionally tries a local pdflatex, and otherwise lays the
// input out as plain text.
package compile

import (
	"context"

	"go.uber.org/zap"
)

// Stage names where a PDF came from.
type Stage string

const (
	// StageRemote is the external compile service.
	StageRemote Stage = "remote"
	// StageLocal is a local pdflatex run.
	StageLocal Stage = "local"
	// StageFallback is the plain-text layout.
	StageFallback Stage = "fallback"
)

// Result is a compiled document.
type Result struct {
	PDF   []byte
	Stage Stage
	Pages int    // Known only for fallback output
	Lines []Line // Fallback layout, for previews
}

// Backend is one way of producing a PDF from LaTeX source.
type Backend interface {
	Compile(ctx context.Context, source []byte) ([]byte, error)
}

// Compiler runs the remote, local and fallback stages in order.
type Compiler struct {
	remote Backend
	local  Backend
	page   PageSpec
	logger *zap.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithRemote enables forwarding to an external compile service.
func WithRemote(b Backend) Option {
	return func(c *Compiler) { c.remote = b }
}

// WithLocal enables a local LaTeX toolchain.
func WithLocal(b Backend) Option {
	return func(c *Compiler) { c.local = b }
}

// WithPage overrides the fallback page geometry.
func WithPage(p PageSpec) Option {
	return func(c *Compiler) { c.page = p }
}

// WithLogger sets the logger used to report stage failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// New creates a Compiler. With no options it only has the fallback stage.
func New(opts ...Option) *Compiler {
	c := &Compiler{page: DefaultPage(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile produces a PDF. Remote and local failures are logged and skipped;
// only a failure of the fallback itself is returned.
func (c *Compiler) Compile(ctx context.Context, source []byte) (*Result, error) {
	if c.remote != nil {
		pdf, err := c.remote.Compile(ctx, source)
		if err == nil {
			return &Result{PDF: pdf, Stage: StageRemote}, nil
		}
		c.logger.Warn("remote compile failed", zap.Error(err))
	}

	if c.local != nil {
		pdf, err := c.local.Compile(ctx, source)
		if err == nil {
			return &Result{PDF: pdf, Stage: StageLocal}, nil
		}
		c.logger.Warn("local compile failed", zap.Error(err))
	}

	doc, err := RenderText(string(source), c.page)
	if err != nil {
		return nil, err
	}
	return &Result{PDF: doc.PDF, Stage: StageFallback, Pages: doc.Pages, Lines: doc.Lines}, nil
}
