package llm

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/arcanaland/seer/internal/config"
)

// ErrMissingAPIKey is returned by Chat when no API key is configured
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set; add it to the environment or a .env file")

// Client talks to any OpenAI-compatible chat completion endpoint
type Client struct {
	api    *openai.Client
	cfg    config.LLM
	logger *zap.Logger
}

func New(cfg config.LLM, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		api:    openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger.Named("llm"),
	}
}

// Model returns the model name sent with every request
func (c *Client) Model() string {
	return c.cfg.Model
}

// Chat sends the system and user messages and returns the reply. When
// streaming is enabled every increment is passed to onDelta as it arrives.
// On failure the text received so far is returned along with the error.
func (c *Client) Chat(ctx context.Context, system, user string, onDelta func(string)) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	log := c.logger.With(zap.String("model", c.cfg.Model), zap.Bool("stream", c.cfg.Stream))
	log.Debug("chat completion request", zap.Int("prompt_bytes", len(user)))

	var (
		text string
		err  error
	)
	if c.cfg.Stream {
		text, err = c.stream(ctx, req, onDelta)
	} else {
		text, err = c.complete(ctx, req)
	}
	if err != nil {
		log.Warn("chat completion failed", zap.Error(err), zap.Int("partial_bytes", len(text)))
		return text, err
	}

	log.Debug("chat completion done", zap.Int("reply_bytes", len(text)))
	return text, nil
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from model")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) stream(ctx context.Context, req openai.ChatCompletionRequest, onDelta func(string)) (string, error) {
	req.Stream = true
	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var b strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		if len(resp.Choices) == 0 {
			continue
		}

		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		b.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
}
