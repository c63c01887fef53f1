package insights

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/pkg/ai"
	"github.com/johnquangdev/call-insights/pkg/config"
)

// NewClassifier picks the buyer-intent classifier named by INTENT_CLASSIFIER
func NewClassifier(cfg *config.Config) IntentClassifier {
	if cfg.HuggingFace.Classifier == "lexicon" {
		return ai.NewLexiconIntentClient()
	}
	return ai.NewHFIntentClient(&cfg.HuggingFace)
}

// DefaultAnalyzers registers the four analyzers the aggregator runs
func DefaultAnalyzers(cfg *config.Config, llm Completer, classifier IntentClassifier, logger *zap.Logger) Analyzers {
	in := cfg.Insights
	return NewAnalyzers(
		NewSummaryAnalyzer(llm, in.MaxTranscriptChars, logger),
		NewBenchmarkAnalyzer(llm, in.BenchmarkDir, in.SalesRepSpeaker, in.ProspectSpeaker, logger),
		NewIntentAnalyzer(classifier, in.ProspectSpeaker),
		NewProfanityAnalyzer(),
	)
}

// NewRunner returns the runner selected by INSIGHTS_RUNNER
func NewRunner(cfg *config.Config, analyzers Analyzers, logger *zap.Logger) (Runner, error) {
	if cfg.Insights.Runner == "inprocess" {
		return NewInProcessRunner(analyzers, logger), nil
	}
	return NewProcessRunner(cfg.Insights.AnalyzerBinary)
}

// WriteAnalysis runs one analyzer in this process and prints its envelope to w.
// It is the child side of ProcessRunner.
func WriteAnalysis(ctx context.Context, analyzers Analyzers, name, transcriptPath string, w io.Writer, logger *zap.Logger) error {
	out, err := NewInProcessRunner(analyzers, logger).Run(ctx, name, transcriptPath)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
