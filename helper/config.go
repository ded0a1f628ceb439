package helper

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "HERBRAG_"

// DatabaseConfiguration holds the postgres connection settings.
type DatabaseConfiguration struct {
	Host         string
	Port         string
	Database     string
	Username     string
	Password     string
	Schema       string
	SSLMode      string
	MaxOpenConns int
}

// NewDatabaseConfiguration reads the database configuration from the environment.
// A .env file in the working directory is loaded first if present.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	loadDotEnv()

	config := &DatabaseConfiguration{
		Host:         getEnv("DB_HOST", ""),
		Port:         getEnv("DB_PORT", "5432"),
		Database:     getEnv("DB_DATABASE", ""),
		Username:     getEnv("DB_USERNAME", ""),
		Password:     getEnv("DB_PASSWORD", ""),
		Schema:       getEnv("DB_SCHEMA", "public"),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
	}

	var missing []string
	if config.Host == "" {
		missing = append(missing, envPrefix+"DB_HOST")
	}
	if config.Database == "" {
		missing = append(missing, envPrefix+"DB_DATABASE")
	}
	if config.Username == "" {
		missing = append(missing, envPrefix+"DB_USERNAME")
	}
	if len(missing) > 0 {
		return nil, NewError("database configuration", fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", ")))
	}

	return config, nil
}

// LLMConfiguration selects and authenticates the text completion provider.
type LLMConfiguration struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// NewLLMConfiguration reads the LLM configuration from the environment.
func NewLLMConfiguration() (*LLMConfiguration, error) {
	loadDotEnv()

	config := &LLMConfiguration{
		Provider: strings.ToLower(getEnv("LLM_PROVIDER", "mistral")),
		Model:    getEnv("LLM_MODEL", "mistral-small-latest"),
		APIKey:   getEnv("LLM_API_KEY", ""),
		BaseURL:  getEnv("LLM_BASE_URL", ""),
		Timeout:  getEnvDuration("LLM_TIMEOUT", 60*time.Second),
	}

	switch config.Provider {
	case "mistral", "openai":
	default:
		return nil, NewError("llm configuration", fmt.Errorf("unsupported provider %q (use mistral or openai)", config.Provider))
	}
	if config.APIKey == "" {
		return nil, NewError("llm configuration", fmt.Errorf("missing environment variable %sLLM_API_KEY", envPrefix))
	}

	return config, nil
}

func loadDotEnv() {
	// Missing .env files are fine, the environment may already be set.
	_ = godotenv.Load()
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(envPrefix + key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
