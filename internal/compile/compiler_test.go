package compile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var fakePDF = []byte("%PDF-1.4\nremote bytes\n%%EOF")

func TestForwarder_PassesPDFThrough(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(fakePDF)
	}))
	defer srv.Close()

	source := []byte("\\documentclass{article}\\begin{document}Hi\\end{document}")
	c := New(WithRemote(NewForwarder(srv.URL, 5*time.Second)))

	result, err := c.Compile(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, StageRemote, result.Stage)
	assert.Equal(t, fakePDF, result.PDF)
	assert.Equal(t, source, received)
}

func TestForwarder_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
	}{
		{name: "server error", status: http.StatusInternalServerError, contentType: "application/pdf"},
		{name: "html body", status: http.StatusOK, contentType: "text/html"},
		{name: "json body", status: http.StatusOK, contentType: "application/json"},
		{name: "accepted but not ok", status: http.StatusAccepted, contentType: "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("not a pdf"))
			}))
			defer srv.Close()

			_, err := NewForwarder(srv.URL, time.Second).Compile(context.Background(), []byte("x"))
			require.Error(t, err)

			var compileErr *Error
			require.True(t, errors.As(err, &compileErr))
			assert.Equal(t, StageRemote, compileErr.Stage)
		})
	}
}

func TestForwarder_ContentTypeWithParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "Application/PDF; name=resume.pdf")
		_, _ = w.Write(fakePDF)
	}))
	defer srv.Close()

	pdf, err := NewForwarder(srv.URL, time.Second).Compile(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, fakePDF, pdf)
}

func TestCompiler_FallsBackWhenRemoteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(WithRemote(NewForwarder(url, time.Second)), WithLogger(zaptest.NewLogger(t)))
	result, err := c.Compile(context.Background(), []byte("Plain resume text"))
	require.NoError(t, err)

	assert.Equal(t, StageFallback, result.Stage)
	assert.True(t, bytes.HasPrefix(result.PDF, []byte("%PDF-")))
	assert.Equal(t, 1, result.Pages)
}

func TestCompiler_FallsBackOnNonPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	c := New(WithRemote(NewForwarder(srv.URL, time.Second)), WithLogger(zaptest.NewLogger(t)))
	result, err := c.Compile(context.Background(), []byte("text"))
	require.NoError(t, err)
	assert.Equal(t, StageFallback, result.Stage)
}

type stubBackend struct {
	pdf   []byte
	err   error
	calls int
}

func (s *stubBackend) Compile(context.Context, []byte) ([]byte, error) {
	s.calls++
	return s.pdf, s.err
}

func TestCompiler_StageOrder(t *testing.T) {
	remote := &stubBackend{err: errors.New("down")}
	local := &stubBackend{pdf: []byte("%PDF-local")}

	result, err := New(WithRemote(remote), WithLocal(local)).Compile(context.Background(), []byte("x"))
	require.NoError(t, err)

	assert.Equal(t, StageLocal, result.Stage)
	assert.Equal(t, []byte("%PDF-local"), result.PDF)
	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, 1, local.calls)
}

func TestCompiler_RemoteSuccessSkipsLocal(t *testing.T) {
	remote := &stubBackend{pdf: fakePDF}
	local := &stubBackend{pdf: []byte("%PDF-local")}

	result, err := New(WithRemote(remote), WithLocal(local)).Compile(context.Background(), []byte("x"))
	require.NoError(t, err)

	assert.Equal(t, StageRemote, result.Stage)
	assert.Zero(t, local.calls)
}

func TestLocalCompiler_MissingBinary(t *testing.T) {
	l := &LocalCompiler{Binary: "definitely-not-a-latex-binary", Timeout: time.Second}

	assert.False(t, l.Available())
	_, err := l.Compile(context.Background(), []byte("x"))

	var compileErr *Error
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, StageLocal, compileErr.Stage)
	assert.Contains(t, compileErr.Error(), "not found in PATH")
}

func TestLocalCompiler_RunsWithParanoidFileAccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	t.Setenv("openin_any", "a")

	// Stand-in for pdflatex that dumps its environment as the "PDF".
	stub := filepath.Join(t.TempDir(), "fake-pdflatex")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\nenv > main.pdf\n"), 0o755))

	l := &LocalCompiler{Binary: stub, Timeout: 5 * time.Second}
	out, err := l.Compile(context.Background(), []byte(`\input{/etc/passwd}`))
	require.NoError(t, err)

	env := strings.Split(string(out), "\n")
	assert.Equal(t, "p", lastValue(env, "openin_any"), "caller environment must not loosen input paths")
	assert.Equal(t, "p", lastValue(env, "openout_any"))
	assert.Equal(t, "f", lastValue(env, "shell_escape"))
}

// lastValue returns the value of the last KEY=VALUE entry for key.
func lastValue(env []string, key string) string {
	val := ""
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			val = v
		}
	}
	return val
}
