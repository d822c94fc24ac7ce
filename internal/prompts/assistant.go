// Package prompts holds the explore assistant's persona. The persona is an
// embedded JSON document rendered into the model's system instruction.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/go-playground/validator/v10"
)

//go:embed assistant.json
var assistantJSON []byte

// Assistant describes who the explore chat speaks as.
type Assistant struct {
	Role          string   `json:"role" validate:"required"`
	Topics        []string `json:"topics" validate:"required,min=1,dive,required"`
	Style         string   `json:"style" validate:"required"`
	ReplyLanguage string   `json:"replyLanguage" validate:"required"`
}

var instructionTmpl = template.Must(template.New("assistant").
	Funcs(template.FuncMap{"list": joinList}).
	Parse(`You are a {{.Role}}. Answer questions about {{list .Topics}} {{.Style}}. Reply in {{.ReplyLanguage}}.`))

var (
	loadOnce sync.Once
	loaded   *Assistant
	loadErr  error
)

// LoadAssistant returns the embedded persona, parsed once.
func LoadAssistant() (*Assistant, error) {
	loadOnce.Do(func() {
		loaded, loadErr = ParseAssistant(assistantJSON)
	})
	return loaded, loadErr
}

// ParseAssistant decodes and validates a persona document.
func ParseAssistant(data []byte) (*Assistant, error) {
	var a Assistant
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse assistant persona: %w", err)
	}
	if err := validator.New().Struct(&a); err != nil {
		return nil, fmt.Errorf("invalid assistant persona: %w", err)
	}
	return &a, nil
}

// SystemInstruction renders the persona as a model instruction.
func (a *Assistant) SystemInstruction() (string, error) {
	var b strings.Builder
	if err := instructionTmpl.Execute(&b, a); err != nil {
		return "", fmt.Errorf("failed to render assistant instruction: %w", err)
	}
	return b.String(), nil
}

// MustSystemInstruction renders the embedded persona. It panics when the
// embedded document is broken, which only a bad build can cause.
func MustSystemInstruction() string {
	a, err := LoadAssistant()
	if err != nil {
		panic(err)
	}
	s, err := a.SystemInstruction()
	if err != nil {
		panic(err)
	}
	return s
}

// joinList writes "a, b and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
