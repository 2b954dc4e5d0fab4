// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

type EmbeddingConfig struct {
	Provider  string
	Model     string
	Dimension int
}

type LLMConfig struct {
	Provider string
	Model    string
	Timeout  time.Duration
}

type TallyConfig struct {
	Host    string
	Port    int
	Timeout time.Duration
	Company string
}

func (c TallyConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

type ChunkingConfig struct {
	Size                 int
	Overlap              int
	MaxChunksPerDocument int
}

type Config struct {
	PostgresDSN string
	Neo4jURI    string
	Neo4jUser   string
	Neo4jPass   string
	Neo4jEnable bool

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	Embeddings EmbeddingConfig
	LLM        LLMConfig
	Tally      TallyConfig
	Chunking   ChunkingConfig

	ListenAddr string
}

func Load() Config {
	return Config{
		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost:5432/rag-chatbot?sslmode=disable"),
		Neo4jURI:    getEnv("NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUser:   getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPass:   getEnv("NEO4J_PASSWORD", "password"),
		Neo4jEnable: getEnvBool("NEO4J_ENABLE", false),

		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		Embeddings: EmbeddingConfig{
			Provider:  getEnv("EMBEDDINGS_PROVIDER", ProviderOllama),
			Model:     getEnv("EMBEDDINGS_MODEL", "nomic-embed-text"),
			Dimension: getEnvInt("EMBEDDINGS_DIMENSION", 768),
		},
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", ProviderOllama),
			Model:    getEnv("LLM_MODEL", "phi4:14b"),
			Timeout:  getEnvDuration("LLM_TIMEOUT", 2*time.Minute),
		},
		Tally: TallyConfig{
			Host:    getEnv("TALLY_HOST", "localhost"),
			Port:    getEnvInt("TALLY_PORT", 9000),
			Timeout: getEnvDuration("TALLY_TIMEOUT", 10*time.Second),
			Company: getEnv("TALLY_COMPANY_NAME", ""),
		},
		Chunking: ChunkingConfig{
			Size:                 getEnvInt("CHUNK_SIZE", 1000),
			Overlap:              getEnvInt("CHUNK_OVERLAP", 200),
			MaxChunksPerDocument: getEnvInt("MAX_CHUNKS_PER_DOCUMENT", 1000),
		},

		ListenAddr: getEnv("LISTEN_ADDR", ":8000"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
