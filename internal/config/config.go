package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	BlobBasePath string // report artifacts land here

	// Quiz engine
	TotalQuestions   int
	SessionTimeout   time.Duration // idle time before the reaper expires a session
	ReaperInterval   time.Duration
	ArchiveRetention time.Duration // how long terminal sessions stay readable

	// Content oracle
	OracleProvider string // gemini|openai|static
	OracleModel    string
	OracleTimeout  time.Duration
	GeminiAPIKey   string
	OpenAIAPIKey   string
	OpenAIBaseURL  string

	CORSOrigins []string
}

// FromEnv loads configuration from the environment. A .env file in the
// working directory is merged in first, without overriding real env vars.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:  envOr("HTTP_ADDR", ":8080"),
		PublicURL: os.Getenv("PUBLIC_URL"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		TotalQuestions:   envInt("TOTAL_QUESTIONS", 10),
		SessionTimeout:   envDur("SESSION_TIMEOUT", 30*time.Minute),
		ReaperInterval:   envDur("REAPER_INTERVAL", time.Minute),
		ArchiveRetention: envDur("ARCHIVE_RETENTION", 24*time.Hour),

		OracleProvider: envOr("ORACLE_PROVIDER", "gemini"),
		OracleModel:    envOr("ORACLE_MODEL", ""),
		OracleTimeout:  envDur("ORACLE_TIMEOUT", 20*time.Second),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
