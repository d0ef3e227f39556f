package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/faqdesk/supportbot/internal/core"
	"github.com/faqdesk/supportbot/internal/core/rag"
	"github.com/faqdesk/supportbot/internal/models"
)

// Fixed user-safe replies. Model faults never surface as errors to the HTTP
// layer; they become one of these messages with no suggestions.
const (
	BlockedMessage   = "I'm sorry, my response was blocked. Please rephrase."
	TechIssueMessage = "I'm sorry, I encountered a technical issue."
)

// GenerationTimeout bounds every remote model call. A timeout is treated the
// same as any other model failure.
const GenerationTimeout = 30 * time.Second

// ChatService runs the retrieval-and-response pipeline for one chat turn:
// rank FAQs, compose the prompt, generate, parse, persist both turns.
type ChatService struct {
	db           core.DbClient
	ranker       *rag.Ranker
	llm          core.LLMProvider
	historyLimit int
}

func NewChatService(db core.DbClient, ranker *rag.Ranker, llm core.LLMProvider, historyLimit int) *ChatService {
	if historyLimit <= 0 {
		historyLimit = 6
	}
	return &ChatService{db: db, ranker: ranker, llm: llm, historyLimit: historyLimit}
}

// Respond answers one user message in a session. The returned outcome is
// always well-formed; only persistence faults produce an error.
func (s *ChatService) Respond(ctx context.Context, bot *models.Bot, userID, sessionID, message string) (*rag.Outcome, error) {
	history, err := s.db.GetRecentHistory(ctx, sessionID, bot.ID, userID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	outcome := s.generate(ctx, bot, history, message)

	now := time.Now().UTC()
	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		BotID:     bot.ID,
		UserID:    userID,
		Role:      models.RoleUser,
		Message:   message,
		Timestamp: now,
	}
	if err := s.db.CreateChatMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	// The reply must sort after the user message when both land in the
	// same clock tick.
	botMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		BotID:     bot.ID,
		UserID:    userID,
		Role:      models.RoleBot,
		Message:   outcome.Answer,
		Timestamp: now.Add(time.Millisecond),
	}
	if err := s.db.CreateChatMessage(ctx, botMsg); err != nil {
		return nil, fmt.Errorf("persist bot message: %w", err)
	}

	return outcome, nil
}

func (s *ChatService) generate(ctx context.Context, bot *models.Bot, history []models.ChatMessage, message string) *rag.Outcome {
	relevant, err := s.ranker.Rank(ctx, message, bot.FAQs, rag.DefaultTopK)
	if err != nil {
		log.WithError(err).WithField("bot_id", bot.ID).Error("faq ranking failed")
		return &rag.Outcome{Answer: TechIssueMessage, Suggestions: []string{}}
	}

	prompt := rag.ComposeChatPrompt(message, history, relevant, bot.Name)

	genCtx, cancel := context.WithTimeout(ctx, GenerationTimeout)
	defer cancel()

	raw, err := s.llm.Generate(genCtx, "", prompt)
	if err != nil {
		log.WithError(err).WithField("bot_id", bot.ID).Error("generation failed")
		return &rag.Outcome{Answer: TechIssueMessage, Suggestions: []string{}}
	}
	if raw == "" {
		return &rag.Outcome{Answer: BlockedMessage, Suggestions: []string{}}
	}

	outcome := rag.ParseGeneration(raw)
	return &outcome
}
