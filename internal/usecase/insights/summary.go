package insights

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/ai"
	"github.com/johnquangdev/call-insights/pkg/llmjson"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

// ErrNoTranscriptData is reported when a transcript has no turns
var ErrNoTranscriptData = errors.New("No transcript data available")

// SummaryAnalyzer asks the LLM for a summary, rating, strengths and areas for improvement
type SummaryAnalyzer struct {
	llm      Completer
	maxChars int
	logger   *zap.Logger
}

func NewSummaryAnalyzer(llm Completer, maxChars int, logger *zap.Logger) *SummaryAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryAnalyzer{llm: llm, maxChars: maxChars, logger: logger}
}

func (s *SummaryAnalyzer) Name() string { return entities.AnalyzerSummary }

// Analyze returns the model's JSON object as decoded. A reply that holds
// braces but does not parse comes back as the parse-failure payload with
// the raw text attached.
func (s *SummaryAnalyzer) Analyze(ctx context.Context, t transcript.Transcript) (interface{}, error) {
	text := t.Text()
	if text == "" {
		return nil, ErrNoTranscriptData
	}

	reply, err := s.llm.Complete(ctx, ai.CompletionRequest{
		System: SummarySystemPrompt,
		Prompt: SummaryPrompt(transcript.Truncate(text, s.maxChars)),
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}

	var out map[string]interface{}
	if err := llmjson.Decode(reply, &out); err != nil {
		if errors.Is(err, llmjson.ErrNoJSON) {
			return nil, errors.New("Could not find valid JSON in the response")
		}
		s.logger.Warn("⚠️ Summary reply is not valid JSON", zap.Int("reply_len", len(reply)))
		return llmjson.ParseFailurePayload(reply), nil
	}
	if out == nil {
		out = map[string]interface{}{}
	}
	return out, nil
}
