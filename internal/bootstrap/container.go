package bootstrap

import (
	"context"
	"log"
	"time"

	"agentic-rag-be/internal/config"
	"agentic-rag-be/internal/controller"
	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/internal/repository/implementation"
	"agentic-rag-be/internal/repository/memory"
	"agentic-rag-be/internal/service"
	"agentic-rag-be/pkg/embedding"
	"agentic-rag-be/pkg/feedback"
	"agentic-rag-be/pkg/llm/factory"
	"agentic-rag-be/pkg/rag"
	"agentic-rag-be/pkg/rag/fallback"
	"agentic-rag-be/pkg/search/pgvector"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RagController controller.IRagController

	// Background infrastructure (exposed so main.go can shut it down)
	FeedbackBus *feedback.Bus
	Logger      logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Embedding provider, optionally fronted by a Redis cache
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis, embedding cache disabled: %v", err)
		} else {
			embeddingProvider = embedding.NewCachedProvider(embeddingProvider, rdb, 24*time.Hour)
			log.Printf("[INFO] Embedding cache enabled (Redis)")
		}
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Storage and retrieval
	documentRepo := implementation.NewDocumentRepository(db)
	searchClient := pgvector.NewClient(documentRepo, embeddingProvider, sysLogger)

	// Workflow engine
	workflowCfg := rag.DefaultConfig()
	workflowCfg.QualityThreshold = cfg.Workflow.QualityThreshold
	workflowCfg.MaxIterations = cfg.Workflow.MaxIterations
	workflowCfg.MaxRetrievalAttempts = cfg.Workflow.MaxRetrievalAttempts
	workflowCfg.MinRelevantDocuments = cfg.Workflow.MinRelevantDocuments
	workflowCfg.TopK = cfg.Workflow.TopK
	workflowCfg.MinScore = cfg.Workflow.MinScore
	workflowCfg.GraderWorkers = cfg.Workflow.GraderWorkers
	workflowCfg.CallTimeout = time.Duration(cfg.Workflow.CallTimeoutSeconds) * time.Second

	orchestrator := rag.NewOrchestrator(
		workflowCfg,
		llmProvider,
		searchClient,
		fallback.NoopSearcher{},
		sysLogger,
	)

	// Feedback pipeline: in-process bus drained into a durable recorder.
	// NATS when configured, the log otherwise.
	feedbackBus := feedback.NewBus()
	var recorder feedback.Recorder = feedback.NewLogRecorder(sysLogger)
	if cfg.App.NatsURL != "" {
		natsRecorder, err := feedback.NewNatsRecorder(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS, feedback falls back to log: %v", err)
		} else {
			recorder = natsRecorder
			log.Printf("[INFO] Feedback recorder: NATS JetStream")
		}
	}
	if err := feedbackBus.Forward(context.Background(), recorder, sysLogger); err != nil {
		log.Printf("[WARN] Failed to start feedback forwarder: %v", err)
	}

	resultRepo := memory.NewResultRepository()

	ragService := service.NewRagService(orchestrator, resultRepo, feedbackBus, sysLogger)
	ragController := controller.NewRagController(ragService)

	return &Container{
		RagController: ragController,
		FeedbackBus:   feedbackBus,
		Logger:        sysLogger,
	}
}
