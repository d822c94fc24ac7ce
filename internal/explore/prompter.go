package explore

import (
	"context"
	"fmt"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
)

// Prompter answers an English prompt on behalf of the token's user.
type Prompter interface {
	Prompt(ctx context.Context, token, prompt string) (string, error)
}

// PromptAPI is the backend's prompt endpoint.
type PromptAPI interface {
	Prompt(ctx context.Context, token, prompt string) (*apiclient.Response, error)
}

// APIPrompter adapts the backend's /prompt endpoint to Prompter.
type APIPrompter struct {
	api PromptAPI
}

// NewAPIPrompter creates an APIPrompter.
func NewAPIPrompter(api PromptAPI) *APIPrompter {
	return &APIPrompter{api: api}
}

// Prompt sends prompt and returns the "response" field.
func (p *APIPrompter) Prompt(ctx context.Context, token, prompt string) (string, error) {
	resp, err := p.api.Prompt(ctx, token, prompt)
	if err != nil {
		return "", err
	}
	var body struct {
		Response string `json:"response"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode prompt response: %w", err)
	}
	return body.Response, nil
}
