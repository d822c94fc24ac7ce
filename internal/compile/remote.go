package compile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxPDFBytes caps how much a compile service may send back.
const maxPDFBytes = 20 << 20

// Forwarder posts source to an external LaTeX compile service.
type Forwarder struct {
	url    string
	client *http.Client
}

// NewForwarder creates a Forwarder for url.
func NewForwarder(url string, timeout time.Duration) *Forwarder {
	return &Forwarder{url: url, client: &http.Client{Timeout: timeout}}
}

// Compile sends source verbatim and returns the response bytes verbatim. Only
// a 200 with a PDF content type counts as success.
func (f *Forwarder) Compile(ctx context.Context, source []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(source))
	if err != nil {
		return nil, &Error{Stage: StageRemote, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Stage: StageRemote, Message: "compile service unreachable", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Stage: StageRemote, Message: fmt.Sprintf("compile service returned HTTP %d", resp.StatusCode)}
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "application/pdf") {
		return nil, &Error{Stage: StageRemote, Message: fmt.Sprintf("compile service returned %q, not a PDF", ct)}
	}

	pdf, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes))
	if err != nil {
		return nil, &Error{Stage: StageRemote, Message: "failed to read compiled PDF", Cause: err}
	}
	return pdf, nil
}
