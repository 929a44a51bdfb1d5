package openai

import (
	"log/slog"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/llm"
)

// Config for the OpenAI vision client.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // 0..2
	Timeout     time.Duration // per-request timeout
	MaxTokens   int
}

type Client struct {
	cfg    Config
	api    *goopenai.Client
	schema *llm.Schema
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = goopenai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Client{
		cfg:    cfg,
		api:    goopenai.NewClientWithConfig(clientConfig),
		schema: llm.MustCompileTranscriptionSchema(),
		logger: logger,
	}
}
