package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/tasksync/internal/retry"
	"google.golang.org/genai"
)

// geminiClient implements LLMClient using the Google GenAI SDK against the
// Gemini API backend.
type geminiClient struct {
	cfg      LLMConfig
	observer Observer

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiClient creates an LLMClient backed by Gemini. The SDK client is
// created lazily on first use.
func NewGeminiClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	return &geminiClient{cfg: cfg, observer: observer}, nil
}

// NewClient returns the LLMClient for the configured provider.
func NewClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	switch cfg.Provider {
	case ProviderOllama, "":
		return NewOllamaClient(cfg, observer), nil
	case ProviderGemini:
		return NewGeminiClient(cfg, observer)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func (c *geminiClient) sdk(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	config := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  c.cfg.APIKey,
	}
	if c.cfg.Endpoint != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: c.cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.client = client
	return client, nil
}

func (c *geminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	temp, maxTok := resolveSampling(c.cfg, req)
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temp)),
		MaxOutputTokens: int32(maxTok),
	}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	return invoke(ctx, c.cfg, c.observer, req.Task, func(ctx context.Context) (string, string, error) {
		text, err := c.generateOnce(ctx, req.UserPrompt, genCfg)
		return text, c.cfg.Model, err
	})
}

func (c *geminiClient) generateOnce(ctx context.Context, prompt string, genCfg *genai.GenerateContentConfig) (string, error) {
	client, err := c.sdk(ctx)
	if err != nil {
		return "", retry.Permanent(err)
	}
	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), genCfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != 429 {
			return "", retry.Permanent(err)
		}
		return "", err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response", ErrInvalidOutput)
	}
	return text, nil
}

func (c *geminiClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := c.sdk(ctx)
	if err != nil {
		return false
	}
	_, err = client.Models.Get(ctx, c.cfg.Model, nil)
	return err == nil
}
