package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	BatchCacheTTL time.Duration

	// Kafka
	KafkaBrokers  []string
	PipelineTopic string

	// Clinical records system (OpenMRS-compatible)
	ClinicalBaseURL      string
	ClinicalTokenURL     string
	ClinicalClientID     string
	ClinicalClientSecret string
	ClinicalTimeout      time.Duration
	ClinicalRetryCount   int

	// Terminology
	TerminologyCatalogPath string

	// Processing history
	HistoryTTL time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 60*time.Second),
		MaxUploadBytes: int64(getIntEnv("MAX_UPLOAD_BYTES", 16*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "ayushbridge"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "ayushbridge123"),
		PostgresDB:       getEnv("POSTGRES_DB", "ayushbridge"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		BatchCacheTTL: getDuration("BATCH_CACHE_TTL", 24*time.Hour),

		KafkaBrokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		PipelineTopic: getEnv("PIPELINE_EVENTS_TOPIC", "pipeline-events"),

		ClinicalBaseURL:      getEnv("CLINICAL_BASE_URL", ""),
		ClinicalTokenURL:     getEnv("CLINICAL_TOKEN_URL", ""),
		ClinicalClientID:     getEnv("CLINICAL_CLIENT_ID", ""),
		ClinicalClientSecret: getEnv("CLINICAL_CLIENT_SECRET", ""),
		ClinicalTimeout:      getDuration("CLINICAL_TIMEOUT", 30*time.Second),
		ClinicalRetryCount:   getIntEnv("CLINICAL_RETRY_COUNT", 2),

		TerminologyCatalogPath: getEnv("TERMINOLOGY_CATALOG_PATH", ""),

		HistoryTTL: getDuration("HISTORY_TTL", 30*24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
