// Package insights extracts sales-call insights from transcripts: a summary,
// buyer intent, benchmark coaching feedback and a profanity scan, combined by
// the Aggregator into one document per call.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/ai"
	"github.com/johnquangdev/call-insights/pkg/llmjson"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

// Analyzer produces one category of insight for a transcript
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, t transcript.Transcript) (interface{}, error)
}

// Completer is the chat-completion surface the LLM analyzers need
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (string, error)
}

// IntentClassifier labels prospect text with one of ai.IntentLabels
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Run executes a and converts any error or panic into an {"error": msg}
// payload, so one analyzer can never fail the whole aggregation.
func Run(ctx context.Context, a Analyzer, t transcript.Transcript, logger *zap.Logger) (payload interface{}) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("❌ Analyzer panicked", zap.String("analyzer", a.Name()), zap.Any("panic", p))
			payload = llmjson.ErrorPayload(fmt.Sprintf("%v", p))
		}
	}()

	out, err := a.Analyze(ctx, t)
	if err != nil {
		logger.Warn("⚠️ Analyzer failed", zap.String("analyzer", a.Name()), zap.Error(err))
		return llmjson.ErrorPayload(err.Error())
	}
	return out
}

// Envelope renders the stdout contract of an analyzer run:
// {"<name>": {"output": "<payload as a JSON string>"}}
func Envelope(name string, payload interface{}) ([]byte, error) {
	inner, err := marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s output: %w", name, err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(map[string]Output{name: {Output: string(inner)}}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshal encodes v without HTML escaping so emoji and '&' stay readable
func marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Analyzers indexes analyzers by name
type Analyzers map[string]Analyzer

// NewAnalyzers builds the registry from the given analyzers
func NewAnalyzers(list ...Analyzer) Analyzers {
	out := make(Analyzers, len(list))
	for _, a := range list {
		out[a.Name()] = a
	}
	return out
}

// Get returns the analyzer registered under name
func (r Analyzers) Get(name string) (Analyzer, error) {
	a, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer %q (want one of %v)", name, entities.AnalyzerNames)
	}
	return a, nil
}
