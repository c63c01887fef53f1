package insights

import (
	"context"
	"errors"
	"sync"

	"github.com/johnquangdev/call-insights/pkg/ai"
)

type fakeCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	reqs  []ai.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req ai.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}

func (f *fakeCompleter) last() ai.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[len(f.reqs)-1]
}

type fakeClassifier struct {
	label string
	err   error
	got   string
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (string, error) {
	f.got = text
	return f.label, f.err
}

// fakeRunner serves canned stdout per analyzer name
type fakeRunner struct {
	stdout map[string]string
	fail   map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, analyzer, _ string) (string, error) {
	if f.fail[analyzer] {
		return "{}", errors.New("exit status 1")
	}
	return f.stdout[analyzer], nil
}
