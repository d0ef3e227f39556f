package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/faqdesk/supportbot/internal/config"
	"github.com/faqdesk/supportbot/internal/core"
	"github.com/faqdesk/supportbot/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, password_hash, bot_id, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Email, user.PasswordHash, user.BotID, user.CreatedAt)
	return err
}

// GetUserByEmailAndBot looks a user up within one tenant. A nil botID selects
// admin accounts (bot_id IS NULL).
func (c *DatabaseClient) GetUserByEmailAndBot(ctx context.Context, email string, botID *string) (*models.User, error) {
	const q = `
		SELECT id, email, password_hash, bot_id, created_at
		FROM users
		WHERE email = $1 AND bot_id IS NOT DISTINCT FROM $2
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email, botID).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.BotID, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const q = `
		SELECT id, email, password_hash, bot_id, created_at
		FROM users WHERE id = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.BotID, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for bots

func (c *DatabaseClient) CreateBot(ctx context.Context, bot *models.Bot) error {
	if bot == nil {
		return errors.New("nil bot")
	}
	faqs, err := json.Marshal(bot.FAQs)
	if err != nil {
		return fmt.Errorf("marshal faqs: %w", err)
	}
	const q = `
		INSERT INTO bots (id, name, faqs, owner_id, source_url, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	_, err = c.db.ExecContext(ctx, q,
		bot.ID, bot.Name, faqs, bot.OwnerID, bot.SourceURL, bot.CreatedAt)
	return err
}

func (c *DatabaseClient) GetBotByID(ctx context.Context, id string) (*models.Bot, error) {
	const q = `
		SELECT id, name, faqs, owner_id, source_url, created_at
		FROM bots WHERE id = $1
	`
	var (
		b    models.Bot
		faqs []byte
	)
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Name, &faqs, &b.OwnerID, &b.SourceURL, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(faqs, &b.FAQs); err != nil {
		return nil, fmt.Errorf("unmarshal faqs for bot %s: %w", id, err)
	}
	return &b, nil
}

func (c *DatabaseClient) ListBotsByOwner(ctx context.Context, ownerID string) ([]models.Bot, error) {
	const q = `
		SELECT id, name, faqs, owner_id, source_url, created_at
		FROM bots
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Bot
	for rows.Next() {
		var (
			b    models.Bot
			faqs []byte
		)
		if err := rows.Scan(&b.ID, &b.Name, &faqs, &b.OwnerID, &b.SourceURL, &b.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(faqs, &b.FAQs); err != nil {
			return nil, fmt.Errorf("unmarshal faqs for bot %s: %w", b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Implementing the db interface for chat history

func (c *DatabaseClient) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil message")
	}
	const q = `
		INSERT INTO chat_history (id, session_id, bot_id, user_id, role, message, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		msg.ID, msg.SessionID, msg.BotID, msg.UserID, msg.Role, msg.Message, msg.Timestamp)
	return err
}

// GetRecentHistory returns up to limit most recent turns of a session in
// chronological order (the query walks newest-first, the result is reversed).
func (c *DatabaseClient) GetRecentHistory(ctx context.Context, sessionID, botID, userID string, limit int) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, session_id, bot_id, user_id, role, message, timestamp
		FROM chat_history
		WHERE session_id = $1 AND bot_id = $2 AND user_id = $3
		ORDER BY timestamp DESC
		LIMIT $4
	`
	rows, err := c.db.QueryContext(ctx, q, sessionID, botID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (c *DatabaseClient) GetSessionHistory(ctx context.Context, sessionID, userID string) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, session_id, bot_id, user_id, role, message, timestamp
		FROM chat_history
		WHERE session_id = $1 AND user_id = $2
		ORDER BY timestamp ASC
	`
	rows, err := c.db.QueryContext(ctx, q, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (c *DatabaseClient) ListUserSessions(ctx context.Context, userID, botID string) ([]models.ChatSession, error) {
	const q = `
		SELECT session_id, min(message) AS first_message, max(timestamp) AS last_updated
		FROM chat_history
		WHERE user_id = $1 AND bot_id = $2
		GROUP BY session_id
		ORDER BY last_updated DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatSession
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(&s.SessionID, &s.FirstMessage, &s.LastUpdated); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Implementing the db interface for summaries

// UpsertChatSummary creates or replaces the single summary row of a session.
func (c *DatabaseClient) UpsertChatSummary(ctx context.Context, summary *models.ChatSummary) error {
	if summary == nil {
		return errors.New("nil summary")
	}
	const q = `
		INSERT INTO chat_summaries (id, bot_id, session_id, summary_text, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (session_id)
		DO UPDATE SET summary_text = EXCLUDED.summary_text, created_at = now()
	`
	_, err := c.db.ExecContext(ctx, q,
		summary.ID, summary.BotID, summary.SessionID, summary.SummaryText)
	return err
}

func (c *DatabaseClient) ListSummariesByBot(ctx context.Context, botID string) ([]models.ChatSummary, error) {
	const q = `
		SELECT id, bot_id, session_id, summary_text, created_at
		FROM chat_summaries
		WHERE bot_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatSummary
	for rows.Next() {
		var s models.ChatSummary
		if err := rows.Scan(&s.ID, &s.BotID, &s.SessionID, &s.SummaryText, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListStaleSessions finds sessions that were never summarized or gained turns
// after their summary was written.
func (c *DatabaseClient) ListStaleSessions(ctx context.Context, botID string) ([]models.SessionRef, error) {
	const q = `
		SELECT h.session_id, h.user_id
		FROM (
			SELECT session_id, user_id, max(timestamp) AS last_message_time
			FROM chat_history
			WHERE bot_id = $1
			GROUP BY session_id, user_id
		) h
		LEFT JOIN chat_summaries s
			ON s.session_id = h.session_id AND s.bot_id = $1
		WHERE s.session_id IS NULL OR h.last_message_time > s.created_at
	`
	rows, err := c.db.QueryContext(ctx, q, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SessionRef
	for rows.Next() {
		var ref models.SessionRef
		if err := rows.Scan(&ref.SessionID, &ref.UserID); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func scanMessages(rows *sql.Rows) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.BotID, &m.UserID, &m.Role, &m.Message, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var _ core.DbClient = (*DatabaseClient)(nil)
