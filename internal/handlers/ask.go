package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"chatrelay-backend/internal/models"
)

type asker interface {
	Answer(ctx context.Context, question string) models.AskResponse
}

// AskHandler serves the knowledge assistant: pricing rule, FAQ matching and
// retrieval-grounded completion, in that order.
type AskHandler struct {
	assist asker
}

func NewAskHandler(assist asker) *AskHandler {
	return &AskHandler{assist: assist}
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Question is required", ""))
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Question is required", ""))
		return
	}

	writeJSON(w, http.StatusOK, h.assist.Answer(r.Context(), question))
}
