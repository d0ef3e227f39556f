package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/faqdesk/supportbot/internal/config"
	"github.com/faqdesk/supportbot/internal/core"
	db "github.com/faqdesk/supportbot/internal/core/database"
	"github.com/faqdesk/supportbot/internal/core/llm"
	objectclient "github.com/faqdesk/supportbot/internal/core/object-client"
	"github.com/faqdesk/supportbot/internal/core/rag"
	"github.com/faqdesk/supportbot/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Embedder     *llm.GeminiEmbedder
	LLM          *llm.GeminiLLM
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Object client initialized and ready.")

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the generator: %w", err)
	}

	ranker := rag.NewRanker(geminiEmbedder)
	botSvc := services.NewBotService(dbClient, objClient, cfg.BucketName)
	chatSvc := services.NewChatService(dbClient, ranker, llmProvider, cfg.HistoryLimit)
	summarySvc := services.NewSummaryService(dbClient, llmProvider)

	server := NewServer(cfg, dbClient, botSvc, chatSvc, summarySvc)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Embedder:     geminiEmbedder,
		LLM:          llmProvider,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
}
