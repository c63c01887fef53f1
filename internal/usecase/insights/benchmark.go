package insights

import (
	"context"
	"fmt"
	"html"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/russross/blackfriday/v2"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/ai"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

// BenchmarkCall is one best-practice transcript from the benchmark folder
type BenchmarkCall struct {
	Name string
	Text string
}

// BenchmarkMatch is the closest benchmark to a call
type BenchmarkMatch struct {
	Name            string
	SimilarityScore float64
}

// BenchmarkAnalyzer compares a call against best-practice transcripts with
// TF-IDF and asks the LLM for coaching feedback in four sections.
type BenchmarkAnalyzer struct {
	llm      Completer
	dir      string
	salesRep string
	prospect string
	logger   *zap.Logger

	once  sync.Once
	calls []BenchmarkCall
	index *tfidfIndex
	err   error
}

func NewBenchmarkAnalyzer(llm Completer, dir, salesRep, prospect string, logger *zap.Logger) *BenchmarkAnalyzer {
	if salesRep == "" {
		salesRep = "Speaker 1"
	}
	if prospect == "" {
		prospect = "Speaker 2"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BenchmarkAnalyzer{llm: llm, dir: dir, salesRep: salesRep, prospect: prospect, logger: logger}
}

// NewBenchmarkAnalyzerFromCalls builds the analyzer over an in-memory corpus
func NewBenchmarkAnalyzerFromCalls(llm Completer, calls []BenchmarkCall, logger *zap.Logger) *BenchmarkAnalyzer {
	a := NewBenchmarkAnalyzer(llm, "", "", "", logger)
	a.once.Do(func() { a.fit(calls) })
	return a
}

func (a *BenchmarkAnalyzer) Name() string { return entities.AnalyzerBenchmark }

func (a *BenchmarkAnalyzer) Analyze(ctx context.Context, t transcript.Transcript) (interface{}, error) {
	a.once.Do(func() {
		calls, err := LoadBenchmarks(a.dir)
		if err != nil {
			a.err = err
			return
		}
		a.fit(calls)
	})
	if a.err != nil {
		return nil, a.err
	}

	text := t.Text()
	match := a.Match(text)
	metrics := a.Metrics(text, match)
	a.logger.Info("📊 Benchmark matched",
		zap.String("benchmark", match.Name),
		zap.Float64("similarity_score", match.SimilarityScore),
		zap.Int("sales_rep_percentage", metrics.SalesRepPercentage),
	)

	reply, err := a.llm.Complete(ctx, ai.CompletionRequest{
		System:      BenchmarkSystemPrompt,
		Prompt:      BenchmarkPrompt(metrics),
		Temperature: 0.7,
		MaxTokens:   3500,
	})
	if err != nil {
		return nil, err
	}
	return ParseSections(reply), nil
}

func (a *BenchmarkAnalyzer) fit(calls []BenchmarkCall) {
	if len(calls) == 0 {
		a.err = fmt.Errorf("no benchmark transcripts found in %q", a.dir)
		return
	}
	docs := make([]string, len(calls))
	for i, c := range calls {
		docs[i] = c.Text
	}
	a.calls = calls
	a.index = fitTFIDF(docs)
}

// Match finds the most similar benchmark; the score is a percentage rounded to two decimals
func (a *BenchmarkAnalyzer) Match(text string) BenchmarkMatch {
	i, score := a.index.bestMatch(text)
	return BenchmarkMatch{
		Name:            a.calls[i].Name,
		SimilarityScore: math.Round(score*100*100) / 100,
	}
}

// Metrics counts words on lines that mention the sales rep or the prospect label
func (a *BenchmarkAnalyzer) Metrics(text string, match BenchmarkMatch) CallMetrics {
	var repWords, prospectWords, prospectLines int
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, a.salesRep) {
			repWords += len(strings.Fields(line))
		}
		if strings.Contains(line, a.prospect) {
			prospectWords += len(strings.Fields(line))
			prospectLines++
		}
	}

	pct := 0
	if total := repWords + prospectWords; total > 0 {
		pct = int(math.RoundToEven(float64(repWords) / float64(total) * 100))
	}
	return CallMetrics{
		SalesRepPercentage: pct,
		ProspectResponses:  prospectLines,
		SimilarityScore:    match.SimilarityScore,
	}
}

var htmlTag = regexp.MustCompile(`<[^>]+>`)

// LoadBenchmarks reads .txt files verbatim and .md files rendered to plain text, sorted by name
func LoadBenchmarks(dir string) ([]BenchmarkCall, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark folder: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var calls []BenchmarkCall
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read benchmark %s: %w", e.Name(), err)
		}
		text := string(raw)
		if ext == ".md" {
			text = markdownToText(raw)
		}
		calls = append(calls, BenchmarkCall{Name: e.Name(), Text: text})
	}
	return calls, nil
}

func markdownToText(raw []byte) string {
	rendered := blackfriday.Run(raw, blackfriday.WithNoExtensions())
	plain := html.UnescapeString(htmlTag.ReplaceAllString(string(rendered), " "))
	return strings.Join(strings.Fields(plain), " ")
}
