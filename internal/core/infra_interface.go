package core

import (
	"context"
	"io"

	"github.com/faqdesk/supportbot/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmailAndBot(ctx context.Context, email string, botID *string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateBot(ctx context.Context, bot *models.Bot) error
	GetBotByID(ctx context.Context, id string) (*models.Bot, error)
	ListBotsByOwner(ctx context.Context, ownerID string) ([]models.Bot, error)

	CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error
	GetRecentHistory(ctx context.Context, sessionID, botID, userID string, limit int) ([]models.ChatMessage, error)
	GetSessionHistory(ctx context.Context, sessionID, userID string) ([]models.ChatMessage, error)
	ListUserSessions(ctx context.Context, userID, botID string) ([]models.ChatSession, error)

	UpsertChatSummary(ctx context.Context, summary *models.ChatSummary) error
	ListSummariesByBot(ctx context.Context, botID string) ([]models.ChatSummary, error)
	ListStaleSessions(ctx context.Context, botID string) ([]models.SessionRef, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// EmbeddingProvider turns texts into fixed-dimension dense vectors.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider invokes the generative model. Generate returns the raw text of
// the first candidate, or "" when the model returned no content parts (e.g.
// safety-filtered). GenerateJSON requests strictly-valid-JSON output.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}
