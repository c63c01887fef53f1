package insights

import (
	"context"
	"errors"
	"strings"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

// IntentAnalyzer classifies the prospect's side of the call
type IntentAnalyzer struct {
	classifier IntentClassifier
	prospect   string
}

// NewIntentAnalyzer labels turns spoken by prospect (usually "Speaker 2")
func NewIntentAnalyzer(classifier IntentClassifier, prospect string) *IntentAnalyzer {
	if prospect == "" {
		prospect = "Speaker 2"
	}
	return &IntentAnalyzer{classifier: classifier, prospect: prospect}
}

func (a *IntentAnalyzer) Name() string { return entities.AnalyzerIntent }

func (a *IntentAnalyzer) Analyze(ctx context.Context, t transcript.Transcript) (interface{}, error) {
	if t.IsEmpty() {
		return nil, ErrNoTranscriptData
	}
	messages := t.TextBySpeaker(a.prospect)
	if len(messages) == 0 {
		return nil, errors.New("No prospect messages found in transcript")
	}

	label, err := a.classifier.Classify(ctx, strings.Join(messages, " "))
	if err != nil {
		return nil, err
	}
	return map[string]string{"nlp": label}, nil
}
