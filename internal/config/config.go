package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port                 int
	APIKey               string
	LogLevel             string
	GroqAPIKey           string
	GroqBaseURL          string
	ClassifyModel        string
	ComposeModel         string
	GroqTimeoutSeconds   int
	ReportURL            string
	ReportToken          string
	ReportTimeoutSeconds int
	SessionStore         string
	RedisURL             string
	SessionTTLHours      int
	DatabaseURL          string
	NatsURL              string
	NatsToken            string
	HistoryWindow        int
}

func Load() Config {
	return Config{
		Port:                 envInt("LYREBIRD_PORT", 8080),
		APIKey:               envStr("LYREBIRD_API_KEY", ""),
		LogLevel:             envStr("LOG_LEVEL", "info"),
		GroqAPIKey:           envStr("GROQ_API_KEY", ""),
		GroqBaseURL:          envStr("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		ClassifyModel:        envStr("LYREBIRD_CLASSIFY_MODEL", "llama-3.3-70b-versatile"),
		ComposeModel:         envStr("LYREBIRD_COMPOSE_MODEL", "llama-3.3-70b-versatile"),
		GroqTimeoutSeconds:   envInt("GROQ_TIMEOUT_SECONDS", 30),
		ReportURL:            envStr("REPORT_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		ReportToken:          envStr("REPORT_TOKEN", ""),
		ReportTimeoutSeconds: envInt("REPORT_TIMEOUT_SECONDS", 10),
		SessionStore:         envStr("SESSION_STORE", "memory"),
		RedisURL:             envStr("REDIS_URL", "redis://localhost:6379"),
		SessionTTLHours:      envInt("SESSION_TTL_HOURS", 24),
		DatabaseURL:          envStr("DATABASE_URL", ""),
		NatsURL:              envStr("NATS_URL", ""),
		NatsToken:            envStr("NATS_TOKEN", ""),
		HistoryWindow:        envInt("LYREBIRD_HISTORY_WINDOW", 6),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
