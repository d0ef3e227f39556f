package rag

import (
	"fmt"
	"strings"

	"github.com/faqdesk/supportbot/internal/models"
)

// NoContextMarker is inserted when no FAQ entry cleared the relevance
// threshold. Its presence steers the model toward the small-talk and
// escalation directives instead of answering from context.
const NoContextMarker = "No relevant information found."

const chatDirectives = `**Your Core Directives (Follow in this order):**
1.  **Use Context for Factual Queries:** If "CONTEXT" is available, answer the user's question based strictly on it.
2.  **Reason About Context:** If the user asks a follow-up question related to the context (e.g., "What does 'original condition' mean?"), provide a helpful, general explanation based on common understanding, but explicitly state that the policy details are not specified in your knowledge base.
3.  **Acknowledge User Feedback:** If the user provides feedback or suggests an improvement (e.g., "You should add this to your FAQs", "Tell your admin"), you MUST acknowledge their feedback positively. Example: "Thank you for that suggestion. I will pass it along to the team to improve our knowledge base." Do not re-state that you cannot answer.
4.  **Handle Small Talk:** If no context is found and the query is a simple greeting or question about you, respond conversationally.
5.  **Intelligent Escalation:** If the query fits none of the above, escalate by politely stating you cannot help and recommending contact with a human agent.

**Output Format:** After your response, you MUST include a markdown-fenced JSON object with one key: "suggestions". This should be an array of 2-3 relevant follow-up questions. For feedback, small talk, or escalations, this array should be empty.`

// ComposeChatPrompt builds the full instruction prompt for one chat turn.
// Pure string assembly; every behavior knob lives in the directive text above.
func ComposeChatPrompt(query string, history []models.ChatMessage, relevantFAQs []models.FAQItem, botName string) string {
	contextStr := NoContextMarker
	if len(relevantFAQs) > 0 {
		blocks := make([]string, 0, len(relevantFAQs))
		for _, f := range relevantFAQs {
			blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", f.Question, f.Answer))
		}
		contextStr = strings.Join(blocks, "\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are '%s', an advanced AI assistant.\n", botName)
	b.WriteString("Your Persona: You are empathetic, professional, and concise.\n\n")
	b.WriteString(chatDirectives)
	b.WriteString("\n\n---\nCONTEXT FROM KNOWLEDGE BASE:\n")
	b.WriteString(contextStr)
	b.WriteString("\n---\nCONVERSATION HISTORY:\n")
	b.WriteString(Transcript(history))
	b.WriteString("\n---\nUser Query: ")
	b.WriteString(query)
	b.WriteString("\n\nResponse:\n")
	return b.String()
}

// ComposeUserSummaryPrompt asks for a second-person recap of a session.
func ComposeUserSummaryPrompt(history []models.ChatMessage) string {
	var b strings.Builder
	b.WriteString(`Summarize the following conversation from the user's perspective. Use the second person ("You asked...", "The bot told you..."). The tone should be a helpful reminder of the conversation's key points. Avoid mentioning technical difficulties.`)
	b.WriteString("\n\nCONVERSATION TRANSCRIPT:\n---\n")
	b.WriteString(Transcript(history))
	b.WriteString("\n---\nSUMMARY FOR USER:\n")
	return b.String()
}

// ComposeAdminSummaryPrompt asks for an objective third-person summary
// structured as problem / solution / resolution.
func ComposeAdminSummaryPrompt(history []models.ChatMessage) string {
	var b strings.Builder
	b.WriteString(`As a support manager, summarize the following conversation objectively.
1. Identify the user's primary problem.
2. State the bot's solution.
3. Note if the issue was resolved or required escalation.`)
	b.WriteString("\n\nCONVERSATION TRANSCRIPT:\n---\n")
	b.WriteString(Transcript(history))
	b.WriteString("\n---\nOBJECTIVE SUMMARY:\n")
	return b.String()
}

// ComposeAnalyticsPrompt asks for a strict-JSON aggregate analysis of many
// session summaries. The caller must request JSON-mode generation.
func ComposeAnalyticsPrompt(summaries []string) string {
	var b strings.Builder
	b.WriteString(`You are a data analyst. Analyze these chat summaries to identify key insights.
Respond with a single JSON object with three keys: "trending_topics", "unanswered_questions", and "suggested_new_faqs".

1.  **trending_topics**: List the top 3-5 most frequently discussed topics.
2.  **unanswered_questions**: List specific questions users asked that the bot could not answer.
3.  **suggested_new_faqs**: Suggest 2-3 new question-and-answer pairs (objects with "question" and "answer") for the knowledge base.`)
	b.WriteString("\n\nCHAT SUMMARIES:\n- ")
	b.WriteString(strings.Join(summaries, "\n- "))
	b.WriteString("\n---\nJSON ANALYSIS:\n")
	return b.String()
}

// Transcript renders chat turns as "role: message" lines, oldest first.
// Empty history yields an empty string.
func Transcript(history []models.ChatMessage) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Message))
	}
	return strings.Join(lines, "\n")
}
