package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faqdesk/supportbot/internal/core"
	"github.com/faqdesk/supportbot/internal/services"
)

type ChatHandler struct {
	dbclient  core.DbClient
	chat      *services.ChatService
	summaries *services.SummaryService
}

func NewChatHandler(dbclient core.DbClient, chat *services.ChatService, summaries *services.SummaryService) *ChatHandler {
	return &ChatHandler{dbclient: dbclient, chat: chat, summaries: summaries}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response         string   `json:"response"`
	SuggestedActions []string `json:"suggested_actions"`
}

type sessionSummaryResponse struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary"`
}

// Chat runs one turn of the retrieval-and-response pipeline for the caller's
// bot. Model faults come back as fixed apologetic messages, never a 5xx.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	botID := chi.URLParam(r, "botID")
	if tokenBot, _ := ctx.Value("bot_id").(string); tokenBot != botID {
		http.Error(w, "you do not have permission to access this bot", http.StatusForbidden)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" || req.Message == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	bot, err := h.dbclient.GetBotByID(ctx, botID)
	if err != nil {
		http.Error(w, "failed to look up bot", http.StatusInternalServerError)
		return
	}
	if bot == nil {
		http.Error(w, "bot not found", http.StatusNotFound)
		return
	}

	outcome, err := h.chat.Respond(ctx, bot, userID, req.SessionID, req.Message)
	if err != nil {
		http.Error(w, "failed to process chat turn", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatResponse{
		Response:         outcome.Answer,
		SuggestedActions: outcome.Suggestions,
	})
}

// GetSessions lists the caller's chat sessions with a bot.
func (h *ChatHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	botID := chi.URLParam(r, "botID")
	if tokenBot, _ := ctx.Value("bot_id").(string); tokenBot != botID {
		http.Error(w, "permission denied", http.StatusForbidden)
		return
	}

	sessions, err := h.dbclient.ListUserSessions(ctx, userID, botID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

// GetHistory returns the full chronological transcript of one session.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	history, err := h.dbclient.GetSessionHistory(ctx, sessionID, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(history) == 0 {
		http.Error(w, "chat session not found or you do not have permission to view it", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

// GetSummary generates an on-demand second-person recap of one session.
func (h *ChatHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	history, err := h.dbclient.GetSessionHistory(ctx, sessionID, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(history) == 0 {
		http.Error(w, "chat session not found or you do not have permission", http.StatusNotFound)
		return
	}

	summary := h.summaries.SummarizeForUser(ctx, history)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessionSummaryResponse{SessionID: sessionID, Summary: summary})
}
