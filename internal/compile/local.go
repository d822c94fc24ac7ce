package compile

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLocalTimeout is the maximum time to wait for pdflatex.
const DefaultLocalTimeout = 30 * time.Second

// paranoidTeXEnv confines \input and \openout to the working directory tree.
// kpathsea's paranoid mode refuses absolute and parent-relative paths.
var paranoidTeXEnv = []string{
	"openin_any=p",
	"openout_any=p",
	"shell_escape=f",
}

// LocalCompiler runs pdflatex in a scratch directory.
type LocalCompiler struct {
	Binary  string
	Timeout time.Duration
}

// NewLocalCompiler returns a LocalCompiler using pdflatex from PATH.
func NewLocalCompiler(timeout time.Duration) *LocalCompiler {
	if timeout <= 0 {
		timeout = DefaultLocalTimeout
	}
	return &LocalCompiler{Binary: "pdflatex", Timeout: timeout}
}

// Available reports whether the binary is on PATH.
func (l *LocalCompiler) Available() bool {
	_, err := exec.LookPath(l.Binary)
	return err == nil
}

// Compile writes source to main.tex, runs pdflatex once, and returns main.pdf.
// A PDF produced alongside a non-zero exit is still returned, since LaTeX
// often emits usable output with errors.
func (l *LocalCompiler) Compile(ctx context.Context, source []byte) ([]byte, error) {
	if _, err := exec.LookPath(l.Binary); err != nil {
		return nil, &Error{
			Stage:   StageLocal,
			Message: l.Binary + " not found in PATH",
			Cause:   err,
		}
	}

	workDir, err := os.MkdirTemp("", "latex-compile-*")
	if err != nil {
		return nil, &Error{Stage: StageLocal, Message: "failed to create temporary working directory", Cause: err}
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	texPath := filepath.Join(workDir, "main.tex")
	if err := os.WriteFile(texPath, source, 0644); err != nil {
		return nil, &Error{Stage: StageLocal, Message: "failed to write LaTeX source", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, l.Binary,
		"-interaction=nonstopmode", "-halt-on-error", "-no-shell-escape",
		"-output-directory", workDir, texPath)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), paranoidTeXEnv...)

	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output
	runErr := cmd.Run()

	pdf, err := os.ReadFile(filepath.Join(workDir, "main.pdf"))
	if err != nil {
		return nil, &Error{
			Stage:     StageLocal,
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: output.String(),
			Cause:     runErr,
		}
	}
	return pdf, nil
}
