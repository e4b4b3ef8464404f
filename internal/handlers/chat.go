package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/services"
)

const noReplyPlaceholder = "No reply generated"

type completer interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// ChatHandler relays a conversation to the Groq completion API and returns
// the generated reply.
type ChatHandler struct {
	apiKey string
	llm    completer
}

func NewChatHandler(apiKey string, llm completer) *ChatHandler {
	return &ChatHandler{
		apiKey: apiKey,
		llm:    llm,
	}
}

func (h *ChatHandler) Relay(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Messages array missing", ""))
		return
	}

	messages, ok := parseMessages(req.Messages)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("Messages array missing", ""))
		return
	}

	if h.apiKey == "" {
		writeJSON(w, http.StatusInternalServerError, errorResp("Missing GROQ_API_KEY in environment", ""))
		return
	}

	reply, err := h.llm.Complete(r.Context(), messages)
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			log.Printf("chat: groq API error %d: %s", upstream.StatusCode, upstream.Body)
			writeJSON(w, http.StatusBadGateway, errorResp("Groq API error", upstream.Body))
			return
		}
		log.Printf("chat: relay failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Server error", err.Error()))
		return
	}

	if reply == "" {
		reply = noReplyPlaceholder
	}
	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

// parseMessages requires messages to be a JSON array of message objects, each
// with a non-empty role and a content field. Content may be an empty string
// but the key must be there. An empty array is a valid (empty) conversation.
func parseMessages(raw json.RawMessage) ([]models.ChatMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}
	if trimmed[0] != '[' {
		return nil, false
	}

	var elems []struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, false
	}

	messages := make([]models.ChatMessage, 0, len(elems))
	for _, e := range elems {
		if e.Role == "" || e.Content == nil {
			return nil, false
		}
		messages = append(messages, models.ChatMessage{Role: e.Role, Content: *e.Content})
	}
	return messages, true
}
