package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Generation providers accepted in GENERATION_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Config holds the configuration for the application.
type Config struct {
	GenerationProvider string
	GeminiAPIKey       string
	GeminiModel        string
	GroqAPIKey         string
	GroqModel          string
	OpenAIAPIKey       string
	OpenAIModel        string

	GoogleMapsAPIKey string
	RedisURL         string

	DatabasePath string
	LogMode      string

	S3BucketName string
	AWSRegion    string

	GhostURL      string
	GhostAdminKey string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	Planner PlannerDefaults
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("GENERATION_PROVIDER")))
	if provider == "" {
		provider = ProviderGemini
	}

	cfg := &Config{
		GenerationProvider: provider,
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqModel:          envOr("GROQ_MODEL", "llama-3.3-70b-versatile"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        envOr("OPENAI_MODEL", "gpt-4o-mini"),
		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		RedisURL:           os.Getenv("REDIS_URL"),
		DatabasePath:       envOr("DATABASE_PATH", "data/trip_planner.db"),
		LogMode:            envOr("LOG_MODE", "dev"),
		S3BucketName:       os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:          envOr("AWS_REGION", "us-east-1"),
		GhostURL:           os.Getenv("GHOST_API_URL"),
		GhostAdminKey:      os.Getenv("GHOST_ADMIN_API_KEY"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}

	switch provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case ProviderNone:
	default:
		return nil, fmt.Errorf("unknown GENERATION_PROVIDER %q", provider)
	}

	ids, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}
	cfg.TelegramAllowedUserIDs = ids

	if raw := strings.TrimSpace(os.Getenv("ADMIN_TELEGRAM_ID")); raw != "" {
		adminID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.AdminTelegramID = adminID
	}

	planner, err := LoadPlannerDefaults(os.Getenv("PLANNER_CONFIG_PATH"))
	if err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(os.Getenv("ITINERARY_DEFAULT_BLOCKS_PER_DAY")); raw != "" {
		blocks, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ITINERARY_DEFAULT_BLOCKS_PER_DAY: %w", err)
		}
		planner.BlocksPerDay = blocks
	}
	cfg.Planner = planner.withDefaults()

	return cfg, nil
}

// MapsEnabled reports whether routing and imagery enrichment can run.
func (c *Config) MapsEnabled() bool {
	return c.GoogleMapsAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
