package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"docintel-be/pkg/embedding"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LogLevel           string
	CorsAllowedOrigins string
	UploadsDir         string
	NatsURL            string
	NatsEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	HuggingFace  string
	Jina         string
	GoogleGemini string
	JwtSecret    string
}

type AIConfig struct {
	EmbeddingProvider string // "huggingface", "jina", "gemini" or "ollama"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	EmbeddingTimeout  time.Duration
	RequestsPerSecond float64
	RequestBurst      int
	OllamaBaseURL     string
	OllamaModel       string
}

type RagConfig struct {
	ChunkSize         int
	ChunkOverlap      int
	DefaultTopK       int
	MaxTopK           int
	ExtractionWorkers int
	IndexCacheTTL     time.Duration
	HistoryTopic      string
	HistoryLimit      int
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			LogLevel:           getEnv("LOG_LEVEL", "debug"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			UploadsDir:         getEnv("UPLOADS_DIR", "./uploads"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:        getEnvAsBool("NATS_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			HuggingFace:  firstNonEmpty(getEnv("HF_API_KEY", ""), getEnv("HUGGINGFACEHUB_API_KEY", "")),
			Jina:         getEnv("JINA_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JwtSecret:    getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: strings.ToLower(getEnv("EMBEDDING_PROVIDER", "huggingface")),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			EmbeddingTimeout:  time.Duration(getEnvAsInt("EMBEDDING_TIMEOUT_SECONDS", 60)) * time.Second,
			RequestsPerSecond: getEnvAsFloat("EMBEDDING_REQUESTS_PER_SECOND", 0),
			RequestBurst:      getEnvAsInt("EMBEDDING_REQUEST_BURST", 1),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Rag: RagConfig{
			ChunkSize:         getEnvAsInt("RAG_CHUNK_SIZE", 500),
			ChunkOverlap:      getEnvAsInt("RAG_CHUNK_OVERLAP", 100),
			DefaultTopK:       getEnvAsInt("RAG_DEFAULT_TOP_K", 5),
			MaxTopK:           getEnvAsInt("RAG_MAX_TOP_K", 20),
			ExtractionWorkers: getEnvAsInt("RAG_EXTRACTION_WORKERS", 4),
			IndexCacheTTL:     time.Duration(getEnvAsInt("RAG_INDEX_CACHE_TTL_SECONDS", 0)) * time.Second,
			HistoryTopic:      getEnv("RAG_HISTORY_TOPIC", "QUERY_ANSWERED"),
			HistoryLimit:      getEnvAsInt("RAG_HISTORY_LIMIT", 50),
		},
	}
}

// Validate reports settings the process cannot start without. A missing
// embedding credential is returned as *embedding.ConfigurationError.
func (c *Config) Validate() error {
	var errs []error

	switch c.Ai.EmbeddingProvider {
	case "huggingface":
		if c.Keys.HuggingFace == "" {
			errs = append(errs, &embedding.ConfigurationError{Provider: "huggingface", Setting: "HF_API_KEY", Err: embedding.ErrMissingCredential})
		}
	case "jina":
		if c.Keys.Jina == "" {
			errs = append(errs, &embedding.ConfigurationError{Provider: "jina", Setting: "JINA_API_KEY", Err: embedding.ErrMissingCredential})
		}
	case "gemini":
		if c.Keys.GoogleGemini == "" {
			errs = append(errs, &embedding.ConfigurationError{Provider: "gemini", Setting: "GOOGLE_GEMINI_API_KEY", Err: embedding.ErrMissingCredential})
		}
	case "ollama":
	default:
		errs = append(errs, fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.Ai.EmbeddingProvider))
	}

	if c.Rag.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("RAG_CHUNK_SIZE must be positive, got %d", c.Rag.ChunkSize))
	}
	if c.Rag.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("RAG_CHUNK_OVERLAP must not be negative, got %d", c.Rag.ChunkOverlap))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
