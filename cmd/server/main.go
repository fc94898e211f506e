package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"notable/internal/auth"
	"notable/internal/config"
	"notable/internal/handler"
	"notable/internal/httputil"
	"notable/internal/llm"
	"notable/internal/middleware"
	"notable/internal/notify"
	"notable/internal/repository/postgres"
	"notable/internal/service"
	"notable/internal/service/compose"
	"notable/internal/service/ingest"
	"notable/internal/storage"
	"notable/internal/transcribe"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting server", "environment", cfg.Environment, "port", cfg.Port)

	prompts, err := config.LoadPrompts()
	if err != nil {
		logger.Error("failed to load prompts", "error", err)
		os.Exit(1)
	}

	verifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		logger.Error("failed to initialize JWT verifier", "error", err)
		os.Exit(1)
	}
	defer verifier.Close()

	ctx := context.Background()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	noteRepo := postgres.NewNoteRepository(repoConfig)
	mediaRepo := postgres.NewMediaRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)
	chatRepo := postgres.NewChatRepository(repoConfig)

	store, err := storage.NewGCSStore(ctx, cfg.StorageBucket, logger)
	if err != nil {
		logger.Error("failed to initialize object store", "error", err)
		os.Exit(1)
	}

	completion, err := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.CompletionModel, logger)
	if err != nil {
		logger.Error("failed to initialize completion client", "error", err)
		os.Exit(1)
	}

	transcriber, err := transcribe.NewAssemblyAIClient(cfg.AssemblyAIAPIKey, logger)
	if err != nil {
		logger.Error("failed to initialize transcriber", "error", err)
		os.Exit(1)
	}

	hub := notify.NewHub()

	folderService := service.NewFolderService(folderRepo, noteRepo, logger)
	noteService := service.NewNoteService(noteRepo, folderRepo, mediaRepo, logger)
	userService := service.NewUserService(userRepo, cfg.StartingTokenGrant, logger)
	chatService := service.NewChatService(chatRepo, noteRepo, completion, prompts, logger)
	ledger := service.NewLedger(userRepo, logger)

	pipeline := ingest.NewPipeline(
		noteRepo, mediaRepo, store,
		ingest.DefaultRegistry(transcriber),
		completion, prompts, hub,
		cfg.IngestWorkers, cfg.IngestQueueSize,
		logger,
	)
	pipeline.Run()

	composer := compose.NewComposer(noteRepo, mediaRepo, ledger, completion, prompts, hub, logger)

	folderHandler := handler.NewFolderHandler(folderService, logger)
	noteHandler := handler.NewNoteHandler(noteService, composer, logger)
	mediaHandler := handler.NewMediaHandler(pipeline, logger)
	transcriptHandler := handler.NewTranscriptHandler(pipeline, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	eventsHandler := handler.NewEventsHandler(noteService, hub, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/folders", folderHandler.List)
	mux.HandleFunc("POST /api/folders", folderHandler.Create)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.Rename)
	mux.HandleFunc("PUT /api/folders/{id}", folderHandler.SetOpened)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.Delete)

	mux.HandleFunc("GET /api/notes", noteHandler.List)
	mux.HandleFunc("POST /api/notes", noteHandler.Create)
	mux.HandleFunc("GET /api/notes/{id}", noteHandler.Get)
	mux.HandleFunc("PATCH /api/notes/{id}", noteHandler.Update)
	mux.HandleFunc("DELETE /api/notes/{id}", noteHandler.Delete)
	mux.HandleFunc("POST /api/notes/{id}/summary", noteHandler.ComposeSummary)

	mux.HandleFunc("POST /api/notes/{id}/media", mediaHandler.Upload)
	mux.HandleFunc("GET /api/notes/{id}/media/{mediaId}", mediaHandler.Get)
	mux.HandleFunc("DELETE /api/notes/{id}/media/{mediaId}", mediaHandler.Delete)

	mux.HandleFunc("GET /api/notes/{id}/chat", chatHandler.History)
	mux.HandleFunc("POST /api/notes/{id}/chat", chatHandler.Send)
	mux.HandleFunc("GET /api/notes/{id}/events", eventsHandler.Stream)

	mux.HandleFunc("POST /api/getTranscript", transcriptHandler.GetTranscript)
	mux.HandleFunc("POST /api/getAudioTranscription", transcriptHandler.GetAudioTranscription)

	mux.HandleFunc("GET /api/user", userHandler.Get)
	mux.HandleFunc("PATCH /api/user", userHandler.Update)
	mux.HandleFunc("POST /api/tokens", userHandler.CreditTokens)

	// /health stays open; everything under /api requires a verified identity
	authed := middleware.Auth(verifier)
	protected := http.NewServeMux()
	protected.Handle("/api/", authed(mux))
	protected.Handle("/health", mux)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	root := corsHandler.Handler(middleware.Recovery(logger)(protected))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // SSE connections stay open
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server failed", "error", err)
		os.Exit(1)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	// drain queued ingestion work before exiting
	pipeline.Shutdown()

	logger.Info("server stopped")
}
