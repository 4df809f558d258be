package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Workflow WorkflowConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider          string // "ollama" or "gemini"
	LLMModel             string // e.g. "llama3", "gemini-1.5-flash"
	OllamaBaseURL        string
	GeminiAPIKey         string
	EmbeddingProvider    string // "gemini" or "ollama"
	OllamaEmbeddingModel string
}

type WorkflowConfig struct {
	QualityThreshold     float64
	MaxIterations        int
	MaxRetrievalAttempts int
	MinRelevantDocuments int
	TopK                 int
	MinScore             float64
	GraderWorkers        int
	CallTimeoutSeconds   int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiAPIKey:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Workflow: WorkflowConfig{
			QualityThreshold:     getEnvAsFloat("WORKFLOW_QUALITY_THRESHOLD", 0.7),
			MaxIterations:        getEnvAsInt("WORKFLOW_MAX_ITERATIONS", 3),
			MaxRetrievalAttempts: getEnvAsInt("WORKFLOW_MAX_RETRIEVAL_ATTEMPTS", 3),
			MinRelevantDocuments: getEnvAsInt("WORKFLOW_MIN_RELEVANT_DOCUMENTS", 2),
			TopK:                 getEnvAsInt("WORKFLOW_TOP_K", 10),
			MinScore:             getEnvAsFloat("WORKFLOW_MIN_SCORE", 0.5),
			GraderWorkers:        getEnvAsInt("WORKFLOW_GRADER_WORKERS", 4),
			CallTimeoutSeconds:   getEnvAsInt("WORKFLOW_CALL_TIMEOUT_SECONDS", 30),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
