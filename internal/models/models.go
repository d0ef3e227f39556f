package models

import (
	"time"
)

// Message roles stored on chat history rows.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// User represents an authenticated principal. Admins have a nil BotID and may
// own bots; end-users are scoped to exactly one bot.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	BotID        *string   `db:"bot_id" json:"bot_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FAQItem is one question/answer pair of a bot's knowledge base.
// Immutable once stored on a bot.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Bot is a tenant: a named assistant backed by an FAQ set.
type Bot struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	FAQs      []FAQItem `db:"faqs" json:"-"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	SourceURL string    `db:"source_url" json:"-"` // archived FAQ upload in object storage
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ChatMessage is one turn in a conversation. Append-only.
type ChatMessage struct {
	ID        string    `db:"id" json:"-"`
	SessionID string    `db:"session_id" json:"session_id"`
	BotID     string    `db:"bot_id" json:"-"`
	UserID    string    `db:"user_id" json:"-"`
	Role      string    `db:"role" json:"role"` // "user" or "bot"
	Message   string    `db:"message" json:"message"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// ChatSession is a listing row derived from chat history, not a table of its own.
type ChatSession struct {
	SessionID    string    `db:"session_id" json:"session_id"`
	FirstMessage string    `db:"first_message" json:"first_message"`
	LastUpdated  time.Time `db:"last_updated" json:"last_updated"`
}

// ChatSummary is the persisted digest of one session. One row per session;
// overwritten when the session gains turns newer than CreatedAt.
type ChatSummary struct {
	ID          string    `db:"id" json:"-"`
	BotID       string    `db:"bot_id" json:"-"`
	SessionID   string    `db:"session_id" json:"session_id"`
	SummaryText string    `db:"summary_text" json:"summary"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SessionRef identifies a session (and the user it belongs to) that needs a
// fresh summary.
type SessionRef struct {
	SessionID string `db:"session_id"`
	UserID    string `db:"user_id"`
}
