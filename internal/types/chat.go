package types

import (
	"time"

	"github.com/google/uuid"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in an explore chat transcript. TranslatedText is only
// set when the conversation is not in English.
type Message struct {
	ID             uuid.UUID `json:"id"`
	Role           string    `json:"role"`
	Text           string    `json:"text"`
	TranslatedText string    `json:"translatedText,omitempty"`
	Language       string    `json:"language,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SendMessageRequest is a new chat message from the user.
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=4000"`
}

// SendMessageResponse carries both sides of a chat exchange.
type SendMessageResponse struct {
	Message *Message `json:"message"`
	Reply   *Message `json:"reply"`
}
