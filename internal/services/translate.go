package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"
)

// English is the language the prompt backend speaks.
const English = "en"

// Translator detects and translates text.
type Translator interface {
	Detect(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// GoogleTranslator calls the Cloud Translation v2 API.
type GoogleTranslator struct {
	svc *translate.Service
}

// NewGoogleTranslator creates a translator keyed by apiKey. Extra options are
// appended, which is how tests point it at a fake endpoint.
func NewGoogleTranslator(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GoogleTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("translate API key is required")
	}

	svc, err := translate.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}
	return &GoogleTranslator{svc: svc}, nil
}

// Detect returns the most likely language code for text, e.g. "en" or "hi".
func (g *GoogleTranslator) Detect(ctx context.Context, text string) (string, error) {
	resp, err := g.svc.Detections.List([]string{text}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("language detection failed: %w", err)
	}
	if len(resp.Detections) == 0 || len(resp.Detections[0]) == 0 {
		return "", fmt.Errorf("language detection returned no result")
	}
	return normalizeLang(resp.Detections[0][0].Language), nil
}

// Translate converts text from source to target. An empty source lets the
// API detect it.
func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	call := g.svc.Translations.List([]string{text}, target).Format("text").Context(ctx)
	if source != "" {
		call = call.Source(source)
	}

	resp, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("translation to %s failed: %w", target, err)
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("translation to %s returned no result", target)
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}

// IsEnglish reports whether a detected language code is some form of English.
func IsEnglish(lang string) bool {
	lang = normalizeLang(lang)
	return lang == English || lang == "" || lang == "und"
}

// normalizeLang maps "en-US" and "EN" to "en".
func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
