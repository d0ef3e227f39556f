package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faqdesk/supportbot/internal/core"
	"github.com/faqdesk/supportbot/internal/models"
	"github.com/faqdesk/supportbot/internal/services"
)

type AdminHandler struct {
	dbclient  core.DbClient
	summaries *services.SummaryService
}

func NewAdminHandler(dbclient core.DbClient, summaries *services.SummaryService) *AdminHandler {
	return &AdminHandler{dbclient: dbclient, summaries: summaries}
}

// GetSummaries lists every stored session summary for a bot the caller owns.
func (h *AdminHandler) GetSummaries(w http.ResponseWriter, r *http.Request) {
	bot, ok := h.requireOwnedBot(w, r)
	if !ok {
		return
	}

	summaries, err := h.summaries.ListSummaries(r.Context(), bot.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []models.ChatSummary{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

// ProcessSummaries regenerates summaries for every session with new activity.
func (h *AdminHandler) ProcessSummaries(w http.ResponseWriter, r *http.Request) {
	bot, ok := h.requireOwnedBot(w, r)
	if !ok {
		return
	}

	processed, err := h.summaries.ProcessNewSummaries(r.Context(), bot.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	message := "No new chat sessions to process."
	if processed > 0 {
		message = fmt.Sprintf("Successfully processed and stored %d new chat summaries.", processed)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetAnalytics builds the aggregate report over all stored summaries.
func (h *AdminHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	bot, ok := h.requireOwnedBot(w, r)
	if !ok {
		return
	}

	report, err := h.summaries.Analytics(r.Context(), bot)
	if err != nil {
		if errors.Is(err, services.ErrNoSummaries) {
			http.Error(w, "no summary data available for this bot, run processing first", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// requireOwnedBot resolves the path bot and enforces that the caller is an
// admin who owns it. Writes the error response itself when the check fails.
func (h *AdminHandler) requireOwnedBot(w http.ResponseWriter, r *http.Request) (*models.Bot, bool) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	if _, isEndUser := ctx.Value("bot_id").(string); isEndUser {
		http.Error(w, "permission denied", http.StatusForbidden)
		return nil, false
	}

	bot, err := h.dbclient.GetBotByID(ctx, chi.URLParam(r, "botID"))
	if err != nil {
		http.Error(w, "failed to look up bot", http.StatusInternalServerError)
		return nil, false
	}
	if bot == nil {
		http.Error(w, "bot not found", http.StatusNotFound)
		return nil, false
	}
	if bot.OwnerID != userID {
		http.Error(w, "permission denied", http.StatusForbidden)
		return nil, false
	}
	return bot, true
}
