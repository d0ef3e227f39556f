package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/faqdesk/supportbot/internal/core"
	"github.com/faqdesk/supportbot/internal/core/rag"
	"github.com/faqdesk/supportbot/internal/models"
)

const (
	EmptySessionUserMessage  = "This chat session is empty."
	EmptySessionAdminMessage = "This chat session has no messages."
	SummaryFailureMessage    = "Could not generate a summary."

	// Surfaced inside a degraded analytics report instead of an error.
	AnalyticsErrorMarker = "Error generating report due to an internal issue."
)

// ErrNoSummaries is returned when analytics is requested for a bot that has
// no stored summaries yet.
var ErrNoSummaries = errors.New("no summary data available for this bot")

// summaryWorkers bounds concurrent model calls during batch summarization.
const summaryWorkers = 4

// AnalyticsReport is derived from all stored summaries of a bot at request
// time and never persisted.
type AnalyticsReport struct {
	BotName                string           `json:"bot_name"`
	TotalSummariesAnalyzed int              `json:"total_summaries_analyzed"`
	TrendingTopics         []string         `json:"trending_topics"`
	UnansweredQuestions    []string         `json:"unanswered_questions"`
	SuggestedNewFAQs       []models.FAQItem `json:"suggested_new_faqs"`
}

// SummaryService owns the two summarization flows and the aggregate
// analytics flow.
type SummaryService struct {
	db  core.DbClient
	llm core.LLMProvider
}

func NewSummaryService(db core.DbClient, llm core.LLMProvider) *SummaryService {
	return &SummaryService{db: db, llm: llm}
}

// SummarizeForUser produces a second-person recap of a session. Empty history
// short-circuits without a model call; model faults degrade to a fixed
// message, never an error.
func (s *SummaryService) SummarizeForUser(ctx context.Context, history []models.ChatMessage) string {
	if len(history) == 0 {
		return EmptySessionUserMessage
	}
	return s.summarize(ctx, rag.ComposeUserSummaryPrompt(history))
}

// SummarizeForAdmin produces an objective problem/solution/resolution summary.
func (s *SummaryService) SummarizeForAdmin(ctx context.Context, history []models.ChatMessage) string {
	if len(history) == 0 {
		return EmptySessionAdminMessage
	}
	return s.summarize(ctx, rag.ComposeAdminSummaryPrompt(history))
}

func (s *SummaryService) summarize(ctx context.Context, prompt string) string {
	genCtx, cancel := context.WithTimeout(ctx, GenerationTimeout)
	defer cancel()

	text, err := s.llm.Generate(genCtx, "", prompt)
	if err != nil {
		log.WithError(err).Error("summary generation failed")
		return SummaryFailureMessage
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SummaryFailureMessage
	}
	return text
}

// ProcessNewSummaries regenerates the summary of every session that is new or
// has turns younger than its stored summary. Sessions are processed with
// bounded concurrency; one failed session does not abort the batch. Returns
// how many summaries were written.
func (s *SummaryService) ProcessNewSummaries(ctx context.Context, botID string) (int, error) {
	stale, err := s.db.ListStaleSessions(ctx, botID)
	if err != nil {
		return 0, fmt.Errorf("list stale sessions: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	var (
		mu        sync.Mutex
		processed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryWorkers)
	for _, ref := range stale {
		g.Go(func() error {
			history, err := s.db.GetSessionHistory(gctx, ref.SessionID, ref.UserID)
			if err != nil {
				log.WithError(err).WithField("session_id", ref.SessionID).Warn("skipping session: history load failed")
				return nil
			}
			if len(history) == 0 {
				return nil
			}

			text := s.SummarizeForAdmin(gctx, history)
			summary := &models.ChatSummary{
				ID:          uuid.NewString(),
				BotID:       botID,
				SessionID:   ref.SessionID,
				SummaryText: text,
				CreatedAt:   time.Now().UTC(),
			}
			if err := s.db.UpsertChatSummary(gctx, summary); err != nil {
				log.WithError(err).WithField("session_id", ref.SessionID).Warn("skipping session: summary store failed")
				return nil
			}

			mu.Lock()
			processed++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return processed, nil
}

// ListSummaries returns every stored summary for a bot.
func (s *SummaryService) ListSummaries(ctx context.Context, botID string) ([]models.ChatSummary, error) {
	return s.db.ListSummariesByBot(ctx, botID)
}

// Analytics aggregates all stored summaries of a bot into a report.
func (s *SummaryService) Analytics(ctx context.Context, bot *models.Bot) (*AnalyticsReport, error) {
	summaries, err := s.db.ListSummariesByBot(ctx, bot.ID)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	if len(summaries) == 0 {
		return nil, ErrNoSummaries
	}

	texts := make([]string, len(summaries))
	for i, sum := range summaries {
		texts[i] = sum.SummaryText
	}

	report := s.AnalyzeSummaries(ctx, texts)
	report.BotName = bot.Name
	report.TotalSummariesAnalyzed = len(texts)
	return report, nil
}

// AnalyzeSummaries runs the strict-JSON aggregate analysis. It never fails:
// empty input yields an all-empty report without a model call, and a model or
// parse fault yields a report marked with AnalyticsErrorMarker.
func (s *SummaryService) AnalyzeSummaries(ctx context.Context, summaries []string) *AnalyticsReport {
	report := &AnalyticsReport{
		TrendingTopics:      []string{},
		UnansweredQuestions: []string{},
		SuggestedNewFAQs:    []models.FAQItem{},
	}
	if len(summaries) == 0 {
		return report
	}

	genCtx, cancel := context.WithTimeout(ctx, GenerationTimeout)
	defer cancel()

	raw, err := s.llm.GenerateJSON(genCtx, rag.ComposeAnalyticsPrompt(summaries))
	if err != nil {
		log.WithError(err).Error("analytics generation failed")
		report.TrendingTopics = []string{AnalyticsErrorMarker}
		return report
	}
	if raw == "" {
		return report
	}

	var parsed struct {
		TrendingTopics      []string         `json:"trending_topics"`
		UnansweredQuestions []string         `json:"unanswered_questions"`
		SuggestedNewFAQs    []models.FAQItem `json:"suggested_new_faqs"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.WithError(err).Error("analytics response was not valid JSON")
		report.TrendingTopics = []string{AnalyticsErrorMarker}
		return report
	}

	if parsed.TrendingTopics != nil {
		report.TrendingTopics = parsed.TrendingTopics
	}
	if parsed.UnansweredQuestions != nil {
		report.UnansweredQuestions = parsed.UnansweredQuestions
	}
	if parsed.SuggestedNewFAQs != nil {
		report.SuggestedNewFAQs = parsed.SuggestedNewFAQs
	}
	return report
}
