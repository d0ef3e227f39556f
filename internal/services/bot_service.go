package services

import (
	"bytes"
	"context"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faqdesk/supportbot/internal/core"
	"github.com/faqdesk/supportbot/internal/core/faqfile"
	"github.com/faqdesk/supportbot/internal/models"
)

// BotService creates and lists bots. The raw FAQ upload is archived in object
// storage; the parsed entries live on the bot row.
type BotService struct {
	db      core.DbClient
	storage core.ObjectClient
	bucket  string
}

func NewBotService(db core.DbClient, storage core.ObjectClient, bucket string) *BotService {
	return &BotService{db: db, storage: storage, bucket: bucket}
}

// CreateFromUpload parses the uploaded FAQ file, archives the original, and
// persists the bot.
func (s *BotService) CreateFromUpload(ctx context.Context, ownerID, name, filename, contentType string, data []byte) (*models.Bot, error) {
	faqs, err := faqfile.Decode(filename, data)
	if err != nil {
		return nil, err
	}

	botID := uuid.NewString()
	key := s.objectKey(ownerID, botID, filename)
	url, err := s.storage.UploadFile(ctx, s.bucket, key, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, err
	}

	bot := &models.Bot{
		ID:        botID,
		Name:      name,
		FAQs:      faqs,
		OwnerID:   ownerID,
		SourceURL: url,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.CreateBot(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

func (s *BotService) Get(ctx context.Context, id string) (*models.Bot, error) {
	return s.db.GetBotByID(ctx, id)
}

func (s *BotService) ListByOwner(ctx context.Context, ownerID string) ([]models.Bot, error) {
	return s.db.ListBotsByOwner(ctx, ownerID)
}

// objectKey creates a consistent S3 key layout.
func (s *BotService) objectKey(ownerID, botID, filename string) string {
	filename = strings.TrimSpace(filepath.Base(filename))
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("owners", ownerID, "bots", botID, filename)
}
