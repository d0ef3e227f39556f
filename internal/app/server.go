package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/faqdesk/supportbot/internal/api/handlers"
	appMiddleware "github.com/faqdesk/supportbot/internal/api/middlewares"
	"github.com/faqdesk/supportbot/internal/config"
	"github.com/faqdesk/supportbot/internal/core"
	"github.com/faqdesk/supportbot/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, bots *services.BotService, chat *services.ChatService, summaries *services.SummaryService) *Server {
	authHandler := handlers.NewAuthHandler(db)
	botHandler := handlers.NewBotHandler(bots)
	chatHandler := handlers.NewChatHandler(db, chat, summaries)
	adminHandler := handlers.NewAdminHandler(db, summaries)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:5174"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/auth/admin/register", authHandler.AdminRegister)
		api.Post("/auth/admin/login", authHandler.AdminLogin)
		api.Post("/auth/bots/{botID}/register", authHandler.BotRegister)
		api.Post("/auth/bots/{botID}/login", authHandler.BotLogin)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware)

			protected.Post("/bots", botHandler.CreateBot)
			protected.Get("/bots", botHandler.GetBots)

			protected.Post("/chat/{botID}", chatHandler.Chat)
			protected.Get("/chat/{botID}/sessions", chatHandler.GetSessions)
			protected.Get("/chat/history/{sessionID}", chatHandler.GetHistory)
			protected.Get("/chat/summary/{sessionID}", chatHandler.GetSummary)

			protected.Get("/admin/bots/{botID}/summaries", adminHandler.GetSummaries)
			protected.Post("/admin/bots/{botID}/process-summaries", adminHandler.ProcessSummaries)
			protected.Get("/admin/bots/{botID}/analytics", adminHandler.GetAnalytics)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
