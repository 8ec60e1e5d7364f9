package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Analyzer  AnalyzerConfig
	PageSpeed PageSpeedConfig
	Report    ReportConfig
	LLM       LLMConfig
	Auth      AuthConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// MongoDBConfig holds the report archive connection configuration.
// An empty URI selects the in-memory archive instead.
type MongoDBConfig struct {
	URI            string
	Database       string
	CollectionName string
	Timeout        time.Duration
}

// AnalyzerConfig holds basic page fetcher configuration
type AnalyzerConfig struct {
	RequestTimeout time.Duration
	UserAgent      string
}

// PageSpeedConfig holds the performance audit API configuration
type PageSpeedConfig struct {
	APIKey            string
	Endpoint          string
	Strategy          string
	Locale            string
	Timeout           time.Duration
	SimulationEnabled bool
}

// ReportConfig holds report orchestration configuration
type ReportConfig struct {
	Timeout                time.Duration
	GreenHostsFile         string
	MaxBatchURLs           int
	BatchWorkers           int64
	BatchRequestsPerSecond float64
}

// LLMConfig holds the chat-completion annotation API configuration
type LLMConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// AuthConfig holds API token authentication configuration.
// An empty token leaves the protected endpoints open.
type AuthConfig struct {
	Token string
}

// New creates a new Config with values from environment variables
func New() (*Config, error) {
	port := getEnv("PORT", "9090")
	readTimeout, err := strconv.Atoi(getEnv("READ_TIMEOUT", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := strconv.Atoi(getEnv("WRITE_TIMEOUT", "90"))
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := strconv.Atoi(getEnv("SHUTDOWN_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	requestTimeout, err := strconv.Atoi(getEnv("REQUEST_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	mongoTimeout, err := strconv.Atoi(getEnv("MONGO_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONGO_TIMEOUT: %w", err)
	}

	pageSpeedTimeout, err := strconv.Atoi(getEnv("PAGESPEED_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAGESPEED_TIMEOUT: %w", err)
	}

	auditSimulation, err := strconv.ParseBool(getEnv("AUDIT_SIMULATION", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIT_SIMULATION: %w", err)
	}

	reportTimeout, err := strconv.Atoi(getEnv("REPORT_TIMEOUT", "55"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEOUT: %w", err)
	}

	maxBatchURLs, err := strconv.Atoi(getEnv("MAX_BATCH_URLS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_BATCH_URLS: %w", err)
	}

	batchWorkers, err := strconv.Atoi(getEnv("BATCH_WORKERS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_WORKERS: %w", err)
	}

	batchRPS, err := strconv.ParseFloat(getEnv("BATCH_REQUESTS_PER_SECOND", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_REQUESTS_PER_SECOND: %w", err)
	}

	llmTimeout, err := strconv.Atoi(getEnv("LLM_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     time.Duration(readTimeout) * time.Second,
			WriteTimeout:    time.Duration(writeTimeout) * time.Second,
			ShutdownTimeout: time.Duration(shutdownTimeout) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:            getEnv("MONGO_URI", ""),
			Database:       getEnv("MONGO_DB", "ecograde"),
			CollectionName: getEnv("MONGO_COLLECTION", "reports"),
			Timeout:        time.Duration(mongoTimeout) * time.Second,
		},
		Analyzer: AnalyzerConfig{
			RequestTimeout: time.Duration(requestTimeout) * time.Second,
			UserAgent:      getEnv("USER_AGENT", "EcoGrade/1.0 (sustainability audit)"),
		},
		PageSpeed: PageSpeedConfig{
			APIKey:            getEnv("PAGESPEED_API_KEY", ""),
			Endpoint:          getEnv("PAGESPEED_ENDPOINT", "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"),
			Strategy:          getEnv("PAGESPEED_STRATEGY", "mobile"),
			Locale:            getEnv("PAGESPEED_LOCALE", "en"),
			Timeout:           time.Duration(pageSpeedTimeout) * time.Second,
			SimulationEnabled: auditSimulation,
		},
		Report: ReportConfig{
			Timeout:                time.Duration(reportTimeout) * time.Second,
			GreenHostsFile:         getEnv("GREEN_HOSTS_FILE", ""),
			MaxBatchURLs:           maxBatchURLs,
			BatchWorkers:           int64(batchWorkers),
			BatchRequestsPerSecond: batchRPS,
		},
		LLM: LLMConfig{
			APIKey:   getEnv("LLM_API_KEY", ""),
			Endpoint: getEnv("LLM_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
			Model:    getEnv("LLM_MODEL", "gpt-4o-mini"),
			Timeout:  time.Duration(llmTimeout) * time.Second,
		},
		Auth: AuthConfig{
			Token: getEnv("AUTH_TOKEN", ""),
		},
	}, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
