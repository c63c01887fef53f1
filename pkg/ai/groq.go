package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/johnquangdev/call-insights/pkg/config"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// CompletionRequest is one system+user exchange with fixed sampling parameters.
// A zero Model falls back to the client default.
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	Temperature float32
	MaxTokens   int
	// JSON asks the endpoint for a single JSON object (response_format json_object).
	JSON bool
}

// GroqClient talks to Groq's OpenAI-compatible chat completion endpoint
type GroqClient struct {
	client     *openai.Client
	model      string
	maxRetries int
	jsonMode   bool
	retryBase  time.Duration
}

// NewGroqClient creates a Groq client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	var apiKey, base, model string
	timeout := 60 * time.Second
	maxRetries := 2
	jsonMode := true
	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
		model = cfg.Model
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		maxRetries = cfg.MaxRetries
		jsonMode = cfg.JSONMode
	}
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if base == "" {
		base = os.Getenv("GROQ_API_URL")
		if base == "" {
			base = defaultGroqBaseURL
		}
	}
	if model == "" {
		model = "llama3-70b-8192"
	}

	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = strings.TrimRight(base, "/")
	oc.HTTPClient = &http.Client{Timeout: timeout}

	return &GroqClient{
		client:     openai.NewClientWithConfig(oc),
		model:      model,
		maxRetries: maxRetries,
		jsonMode:   jsonMode,
		retryBase:  time.Second,
	}
}

// Model returns the default model name
func (g *GroqClient) Model() string {
	return g.model
}

// Complete sends the prompt and returns the assistant's raw text.
// Rate limits, 5xx responses and transport errors are retried with
// exponential backoff; other failures return immediately.
func (g *GroqClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON && g.jsonMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var content string
	op := func() error {
		resp, err := g.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			if isRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("empty response from groq"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.retryBase
	bo.MaxInterval = 10 * g.retryBase
	bo.MaxElapsedTime = 0

	var policy backoff.BackOff = bo
	if g.maxRetries >= 0 {
		policy = backoff.WithMaxRetries(bo, uint64(g.maxRetries))
	}
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return "", fmt.Errorf("groq chat completion failed: %w", err)
	}
	return content, nil
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// transport failures (connection reset, timeout) carry no status
	return true
}
