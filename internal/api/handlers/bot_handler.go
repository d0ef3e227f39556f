package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/faqdesk/supportbot/internal/core/faqfile"
	"github.com/faqdesk/supportbot/internal/services"
)

type BotHandler struct {
	bots *services.BotService
}

func NewBotHandler(bots *services.BotService) *BotHandler {
	return &BotHandler{bots: bots}
}

// CreateBot handles the multipart bot-creation upload: a "name" field plus a
// JSON or CSV FAQ file. Admin only.
func (h *BotHandler) CreateBot(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if _, isEndUser := r.Context().Value("bot_id").(string); isEndUser {
		http.Error(w, "only admin users can create bots", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		http.Error(w, "bot name is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	bot, err := h.bots.CreateFromUpload(r.Context(), userID, name, filepath.Base(header.Filename), contentType, data)
	if err != nil {
		if errors.Is(err, faqfile.ErrUnsupportedFormat) || errors.Is(err, faqfile.ErrNoFAQs) || errors.Is(err, faqfile.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to create bot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(bot)
}

// GetBots lists the caller's bots. Admin only.
func (h *BotHandler) GetBots(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if _, isEndUser := r.Context().Value("bot_id").(string); isEndUser {
		http.Error(w, "only admin users can view bots", http.StatusForbidden)
		return
	}

	bots, err := h.bots.ListByOwner(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bots)
}
