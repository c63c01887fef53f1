package ai

import (
	"context"

	"github.com/jonreiter/govader"
)

// LexiconIntentClient scores prospect text with VADER and buckets the
// compound polarity into the intent labels. It needs no network access.
type LexiconIntentClient struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewLexiconIntentClient() *LexiconIntentClient {
	return &LexiconIntentClient{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (l *LexiconIntentClient) Classify(_ context.Context, text string) (string, error) {
	score := l.analyzer.PolarityScores(text).Compound
	return LabelForPolarity(score), nil
}

// LabelForPolarity maps a compound score in [-1, 1] onto IntentLabels.
func LabelForPolarity(score float64) string {
	switch {
	case score >= 0.6:
		return "Highly Interested"
	case score >= 0.2:
		return "Interested"
	case score <= -0.6:
		return "Highly Disinterested"
	case score <= -0.2:
		return "Disinterested"
	default:
		return "Neutral"
	}
}
