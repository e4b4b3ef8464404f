package models

import "encoding/json"

// Roles accepted in a conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. Messages is kept raw
// so the handler can tell an absent field apart from a malformed one.
type ChatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

// ChatResponse is the reply returned on success.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse is the shape of every error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
