package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chatrelay-backend/internal/models"
)

// UpstreamError is returned when the Groq API answers with a non-success
// status. Body carries the raw response text for diagnostics.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("groq API returned %d: %s", e.StatusCode, e.Body)
}

type groqRequest struct {
	Model     string               `json:"model"`
	Messages  []models.ChatMessage `json:"messages"`
	MaxTokens int                  `json:"max_tokens"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GroqService is a client for the Groq OpenAI-compatible chat completion API.
// Safe for concurrent use.
type GroqService struct {
	apiKey    string
	apiURL    string
	model     string
	maxTokens int
	http      *http.Client
}

func NewGroqService(apiKey, apiURL, model string, maxTokens int) *GroqService {
	return &GroqService{
		apiKey:    apiKey,
		apiURL:    apiURL,
		model:     model,
		maxTokens: maxTokens,
		// No client timeout: the upstream call is bounded only by the
		// inbound request's context.
		http: &http.Client{},
	}
}

// Configured reports whether an API key is available.
func (s *GroqService) Configured() bool {
	return s.apiKey != ""
}

// Complete forwards the conversation upstream and returns the first choice's
// content. An empty string with a nil error means the upstream produced no
// usable reply; callers decide what to substitute.
func (s *GroqService) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	body, err := json.Marshal(groqRequest{
		Model:     s.model,
		Messages:  messages,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode groq request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build groq request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read groq response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed groqResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode groq response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}
