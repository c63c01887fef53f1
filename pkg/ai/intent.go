package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/call-insights/pkg/config"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

// IntentLabels are the buyer-intent classes in model output order.
var IntentLabels = []string{
	"Highly Interested",
	"Interested",
	"Disinterested",
	"Highly Disinterested",
	"Neutral",
}

// maxIntentInputChars keeps the request near the model's 512 token window.
const maxIntentInputChars = 2000

// HFIntentClient classifies prospect text with a hosted Hugging Face model
type HFIntentClient struct {
	endpoint  string
	client    *http.Client
	retryBase time.Duration
	maxWait   time.Duration
}

// NewHFIntentClient builds a client for the inference endpoint of cfg.Model.
// The token is attached as a bearer token through an oauth2 static source.
func NewHFIntentClient(cfg *config.HuggingFaceConfig) *HFIntentClient {
	var token, base, model string
	timeout := 60 * time.Second
	if cfg != nil {
		token = cfg.Token
		base = cfg.BaseURL
		model = cfg.Model
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	if token == "" {
		token = os.Getenv("HF_API_TOKEN")
	}
	if base == "" {
		base = "https://api-inference.huggingface.co/models"
	}
	if model == "" {
		model = "nigelnoronha/BERT-buyer-intent"
	}

	httpClient := &http.Client{}
	if token != "" {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	}
	httpClient.Timeout = timeout

	return &HFIntentClient{
		endpoint:  strings.TrimRight(base, "/") + "/" + model,
		client:    httpClient,
		retryBase: 2 * time.Second,
		maxWait:   90 * time.Second,
	}
}

type hfRequest struct {
	Inputs  string          `json:"inputs"`
	Options map[string]bool `json:"options,omitempty"`
}

type hfLabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the highest scoring intent label for text.
// 503 responses (model loading) are retried until maxWait elapses.
func (h *HFIntentClient) Classify(ctx context.Context, text string) (string, error) {
	text = transcript.Truncate(text, maxIntentInputChars)
	body, err := json.Marshal(hfRequest{Inputs: text, Options: map[string]bool{"wait_for_model": true}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal input: %w", err)
	}

	var scores []hfLabelScore
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("classifier unavailable: status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
		}
		parsed, err := decodeScores(raw)
		if err != nil {
			return backoff.Permanent(err)
		}
		scores = parsed
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = h.retryBase
	bo.MaxElapsedTime = h.maxWait
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", fmt.Errorf("intent classification failed: %w", err)
	}
	return pickLabel(scores)
}

// decodeScores accepts both [[{label,score}]] and [{label,score}].
func decodeScores(raw []byte) ([]hfLabelScore, error) {
	var nested [][]hfLabelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}
	var flat []hfLabelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("unexpected classifier response: %w", err)
	}
	return flat, nil
}

func pickLabel(scores []hfLabelScore) (string, error) {
	if len(scores) == 0 {
		return "", fmt.Errorf("classifier returned no labels")
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return resolveLabel(best.Label)
}

// resolveLabel maps generic LABEL_n ids onto IntentLabels and passes named labels through.
func resolveLabel(label string) (string, error) {
	if strings.HasPrefix(label, "LABEL_") {
		idx, err := strconv.Atoi(strings.TrimPrefix(label, "LABEL_"))
		if err != nil || idx < 0 || idx >= len(IntentLabels) {
			return "", fmt.Errorf("unknown classifier label %q", label)
		}
		return IntentLabels[idx], nil
	}
	for _, known := range IntentLabels {
		if strings.EqualFold(known, label) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown classifier label %q", label)
}
