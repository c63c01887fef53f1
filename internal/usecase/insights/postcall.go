package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/ai"
	"github.com/johnquangdev/call-insights/pkg/llmjson"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

// PostCallAnalyzer extracts next step, key objection, turning point and outcome
type PostCallAnalyzer struct {
	llm      Completer
	maxChars int
}

func NewPostCallAnalyzer(llm Completer, maxChars int) *PostCallAnalyzer {
	return &PostCallAnalyzer{llm: llm, maxChars: maxChars}
}

// Analyze sends text as-is; callers render file transcripts with Bracketed first.
func (p *PostCallAnalyzer) Analyze(ctx context.Context, text string) (*entities.PostCallAnalysis, error) {
	reply, err := p.llm.Complete(ctx, ai.CompletionRequest{
		Prompt:      PostCallPrompt(transcript.Truncate(text, p.maxChars)),
		Temperature: 0.1,
		MaxTokens:   500,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	content := llmjson.StripFences(strings.TrimSpace(reply))
	var out entities.PostCallAnalysis
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse Groq response as JSON: %w", err)
	}
	return &out, nil
}
