package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/services"
)

type stubCompleter struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, messages []models.ChatMessage) (string, error)
}

func (s *stubCompleter) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.fn == nil {
		return "stub reply", nil
	}
	return s.fn(ctx, messages)
}

func (s *stubCompleter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Relay(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

func TestRelay_Success(t *testing.T) {
	stub := &stubCompleter{fn: func(_ context.Context, messages []models.ChatMessage) (string, error) {
		if len(messages) != 2 {
			t.Errorf("Expected 2 messages forwarded, got %d", len(messages))
		}
		return "hello there", nil
	}}
	h := NewChatHandler("test-key", stub)

	rr := postChat(t, h, `{"messages":[{"role":"system","content":"be nice"},{"role":"user","content":"hi"}]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Reply != "hello there" {
		t.Errorf("Expected reply 'hello there', got %q", resp.Reply)
	}
}

func TestRelay_InvalidMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"messages absent", `{}`},
		{"messages null", `{"messages":null}`},
		{"messages is a string", `{"messages":"hello"}`},
		{"messages is a number", `{"messages":5}`},
		{"messages is an object", `{"messages":{"role":"user"}}`},
		{"element not an object", `{"messages":["hi"]}`},
		{"element missing role", `{"messages":[{"content":"hi"}]}`},
		{"element missing content", `{"messages":[{"role":"user"}]}`},
		{"element with null content", `{"messages":[{"role":"user","content":null}]}`},
		{"not JSON at all", `not json`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubCompleter{}
			h := NewChatHandler("test-key", stub)

			rr := postChat(t, h, tc.body)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rr.Code)
			}
			if resp := decodeError(t, rr); resp.Error != "Messages array missing" {
				t.Errorf("Expected 'Messages array missing', got %q", resp.Error)
			}
			if stub.callCount() != 0 {
				t.Errorf("Expected no upstream call, got %d", stub.callCount())
			}
		})
	}
}

func TestRelay_EmptyConversationIsForwarded(t *testing.T) {
	stub := &stubCompleter{fn: func(_ context.Context, messages []models.ChatMessage) (string, error) {
		if len(messages) != 0 {
			t.Errorf("Expected empty conversation, got %d messages", len(messages))
		}
		return "ok", nil
	}}
	h := NewChatHandler("test-key", stub)

	rr := postChat(t, h, `{"messages":[]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if stub.callCount() != 1 {
		t.Errorf("Expected one upstream call, got %d", stub.callCount())
	}
}

func TestRelay_EmptyContentStringIsValid(t *testing.T) {
	stub := &stubCompleter{fn: func(_ context.Context, messages []models.ChatMessage) (string, error) {
		if len(messages) != 1 || messages[0].Content != "" {
			t.Errorf("Expected one message with empty content, got %+v", messages)
		}
		return "ok", nil
	}}
	h := NewChatHandler("test-key", stub)

	rr := postChat(t, h, `{"messages":[{"role":"user","content":""}]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if stub.callCount() != 1 {
		t.Errorf("Expected one upstream call, got %d", stub.callCount())
	}
}

func TestRelay_MissingAPIKey(t *testing.T) {
	stub := &stubCompleter{}
	h := NewChatHandler("", stub)

	rr := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Error != "Missing GROQ_API_KEY in environment" {
		t.Errorf("Expected missing key error, got %q", resp.Error)
	}
	if stub.callCount() != 0 {
		t.Errorf("Expected no upstream call, got %d", stub.callCount())
	}
}

func TestRelay_UpstreamError(t *testing.T) {
	stub := &stubCompleter{fn: func(context.Context, []models.ChatMessage) (string, error) {
		return "", &services.UpstreamError{StatusCode: http.StatusTooManyRequests, Body: "rate limited"}
	}}
	h := NewChatHandler("test-key", stub)

	rr := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Error != "Groq API error" {
		t.Errorf("Expected 'Groq API error', got %q", resp.Error)
	}
	if resp.Details != "rate limited" {
		t.Errorf("Expected details 'rate limited', got %q", resp.Details)
	}
}

func TestRelay_UnexpectedError(t *testing.T) {
	stub := &stubCompleter{fn: func(context.Context, []models.ChatMessage) (string, error) {
		return "", errors.New("connection refused")
	}}
	h := NewChatHandler("test-key", stub)

	rr := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Error != "Server error" {
		t.Errorf("Expected 'Server error', got %q", resp.Error)
	}
	if resp.Details != "connection refused" {
		t.Errorf("Expected details 'connection refused', got %q", resp.Details)
	}
}

func TestRelay_EmptyReplyPlaceholder(t *testing.T) {
	stub := &stubCompleter{fn: func(context.Context, []models.ChatMessage) (string, error) {
		return "", nil
	}}
	h := NewChatHandler("test-key", stub)

	rr := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var resp models.ChatResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Reply != "No reply generated" {
		t.Errorf("Expected placeholder reply, got %q", resp.Reply)
	}
}

func TestRelay_ConcurrentRequestsStayIsolated(t *testing.T) {
	// Echo the last user message so each response is tied to its request.
	stub := &stubCompleter{fn: func(_ context.Context, messages []models.ChatMessage) (string, error) {
		return "echo: " + messages[len(messages)-1].Content, nil
	}}
	h := NewChatHandler("test-key", stub)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			content := fmt.Sprintf("question-%d", i)
			rr := postChat(t, h, fmt.Sprintf(`{"messages":[{"role":"user","content":"%s"}]}`, content))

			if rr.Code != http.StatusOK {
				t.Errorf("Request %d: expected 200, got %d", i, rr.Code)
				return
			}
			var resp models.ChatResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Errorf("Request %d: decode failed: %v", i, err)
				return
			}
			if resp.Reply != "echo: "+content {
				t.Errorf("Request %d: got reply for another conversation: %q", i, resp.Reply)
			}
		}(i)
	}
	wg.Wait()

	if stub.callCount() != n {
		t.Errorf("Expected %d upstream calls, got %d", n, stub.callCount())
	}
}
