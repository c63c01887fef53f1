package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/llmjson"
)

// Aggregator runs every analyzer and merges their outputs into one Result
type Aggregator struct {
	runner   Runner
	parallel bool
	logger   *zap.Logger
}

func NewAggregator(runner Runner, parallel bool, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{runner: runner, parallel: parallel, logger: logger}
}

// Aggregate always returns all four analyzer keys. A run that fails or
// prints nothing usable contributes "{}". The only error is a missing
// transcript file.
func (a *Aggregator) Aggregate(ctx context.Context, transcriptPath string) (Result, error) {
	if _, err := os.Stat(transcriptPath); err != nil {
		return nil, fmt.Errorf("transcript file does not exist: %s: %w", transcriptPath, err)
	}

	start := time.Now()
	result := NewResult()
	var mu sync.Mutex
	collect := func(ctx context.Context, name string) {
		out := a.runOne(ctx, name, transcriptPath)
		mu.Lock()
		result[name] = Output{Output: out}
		mu.Unlock()
	}

	if a.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for _, name := range entities.AnalyzerNames {
			name := name
			g.Go(func() error {
				collect(gctx, name)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, name := range entities.AnalyzerNames {
			collect(ctx, name)
		}
	}

	a.logger.Info("✅ Insights aggregated",
		zap.String("transcript", transcriptPath),
		zap.Bool("parallel", a.parallel),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (a *Aggregator) runOne(ctx context.Context, name, transcriptPath string) string {
	stdout, err := a.runner.Run(ctx, name, transcriptPath)
	if err != nil {
		a.logger.Error("❌ Analyzer run failed", zap.String("analyzer", name), zap.Error(err))
	}
	return UnwrapOutput(name, stdout)
}

// UnwrapOutput decodes a run's stdout (whole text, then the first-'{' to
// last-'}' span, then {}) and returns <name>.output when it is present.
// Anything else is re-encoded as JSON.
func UnwrapOutput(name, stdout string) string {
	doc := parseRunOutput(stdout)
	if out := gjson.GetBytes(doc, gjson.Escape(name)+".output"); out.Exists() {
		if out.Type == gjson.String {
			return out.String()
		}
		return out.Raw
	}
	return string(doc)
}

func parseRunOutput(stdout string) []byte {
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &v); err == nil && v != nil {
		return compact(stdout)
	}
	if span, ok := llmjson.Extract(stdout); ok {
		if err := json.Unmarshal([]byte(span), &v); err == nil && v != nil {
			return compact(span)
		}
	}
	return []byte("{}")
}

func compact(s string) []byte {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return []byte("{}")
	}
	b, err := marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
