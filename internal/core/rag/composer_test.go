package rag

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faqdesk/supportbot/internal/models"
)

func TestComposeChatPromptWithContext(t *testing.T) {
	history := []models.ChatMessage{
		{Role: models.RoleUser, Message: "hi", Timestamp: time.Now()},
		{Role: models.RoleBot, Message: "Hello! How can I help?", Timestamp: time.Now()},
	}
	faqs := []models.FAQItem{
		{Question: "What is your return policy?", Answer: "30 days."},
	}

	prompt := ComposeChatPrompt("what's your return policy", history, faqs, "Acme Helper")

	assert.Contains(t, prompt, "You are 'Acme Helper'")
	assert.Contains(t, prompt, "Q: What is your return policy?\nA: 30 days.")
	assert.Contains(t, prompt, "user: hi\nbot: Hello! How can I help?")
	assert.Contains(t, prompt, "User Query: what's your return policy")
	assert.NotContains(t, prompt, NoContextMarker)
}

func TestComposeChatPromptNoContext(t *testing.T) {
	prompt := ComposeChatPrompt("hello there", nil, nil, "Acme Helper")
	assert.Contains(t, prompt, NoContextMarker)
	assert.Contains(t, prompt, "CONVERSATION HISTORY:\n\n---")
}

func TestComposeChatPromptDirectiveOrder(t *testing.T) {
	prompt := ComposeChatPrompt("q", nil, nil, "Bot")
	ctxIdx := indexOf(t, prompt, "Use Context for Factual Queries")
	reasonIdx := indexOf(t, prompt, "Reason About Context")
	feedbackIdx := indexOf(t, prompt, "Acknowledge User Feedback")
	smallTalkIdx := indexOf(t, prompt, "Handle Small Talk")
	escalateIdx := indexOf(t, prompt, "Intelligent Escalation")

	assert.Less(t, ctxIdx, reasonIdx)
	assert.Less(t, reasonIdx, feedbackIdx)
	assert.Less(t, feedbackIdx, smallTalkIdx)
	assert.Less(t, smallTalkIdx, escalateIdx)
}

func TestTranscript(t *testing.T) {
	assert.Equal(t, "", Transcript(nil))

	history := []models.ChatMessage{
		{Role: models.RoleUser, Message: "first"},
		{Role: models.RoleBot, Message: "second"},
	}
	assert.Equal(t, "user: first\nbot: second", Transcript(history))
}

func TestComposeAnalyticsPrompt(t *testing.T) {
	prompt := ComposeAnalyticsPrompt([]string{"summary one", "summary two"})
	assert.Contains(t, prompt, "- summary one\n- summary two")
	assert.Contains(t, prompt, `"trending_topics"`)
	assert.Contains(t, prompt, `"unanswered_questions"`)
	assert.Contains(t, prompt, `"suggested_new_faqs"`)
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	idx := strings.Index(s, sub)
	require.NotEqual(t, -1, idx, "prompt missing %q", sub)
	return idx
}
