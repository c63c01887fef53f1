package insights

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/pkg/transcript"
)

// TranscriptFileEnv passes the transcript path from the aggregator to a child run
const TranscriptFileEnv = "TRANSCRIPT_FILE"

// TranscriptOverrideEnv is the CLI's --transcript flag read from the environment
const TranscriptOverrideEnv = "INSIGHTS_CLI_TRANSCRIPT"

// Runner executes one analyzer against a transcript file and returns what it
// printed: the analyzer envelope, possibly surrounded by noise.
type Runner interface {
	Run(ctx context.Context, analyzer, transcriptPath string) (string, error)
}

// ProcessRunner runs each analyzer as `<binary> analyze <name>` in its own process
type ProcessRunner struct {
	binary string
	// args placed before "analyze", for binaries that need a leading flag
	prefix []string
	stderr io.Writer
}

// NewProcessRunner uses binary, or the current executable when empty
func NewProcessRunner(binary string) (*ProcessRunner, error) {
	if binary == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate analyzer binary: %w", err)
		}
		binary = self
	}
	return &ProcessRunner{binary: binary, stderr: os.Stderr}, nil
}

// Run returns "{}" together with the error when the child exits non-zero
func (r *ProcessRunner) Run(ctx context.Context, analyzer, transcriptPath string) (string, error) {
	args := append(append([]string{}, r.prefix...), "analyze", analyzer)
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Env = childEnv(os.Environ(), transcriptPath)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return "{}", fmt.Errorf("analyzer %s exited: %w", analyzer, err)
	}
	return stdout.String(), nil
}

// childEnv hands the parent environment down with every transcript override
// replaced by transcriptPath, so operator defaults cannot win over the call's file.
func childEnv(environ []string, transcriptPath string) []string {
	env := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if strings.HasPrefix(kv, TranscriptFileEnv+"=") || strings.HasPrefix(kv, TranscriptOverrideEnv+"=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, TranscriptFileEnv+"="+transcriptPath)
}

// TranscriptPath resolves the file a child analyzer reads. TRANSCRIPT_FILE set
// by the parent always wins over configured defaults.
func TranscriptPath(fallback string) string {
	if p := os.Getenv(TranscriptFileEnv); p != "" {
		return p
	}
	return fallback
}

// InProcessRunner runs analyzers in the current process and renders the same envelope
type InProcessRunner struct {
	analyzers Analyzers
	logger    *zap.Logger
}

func NewInProcessRunner(analyzers Analyzers, logger *zap.Logger) *InProcessRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InProcessRunner{analyzers: analyzers, logger: logger}
}

func (r *InProcessRunner) Run(ctx context.Context, analyzer, transcriptPath string) (string, error) {
	a, err := r.analyzers.Get(analyzer)
	if err != nil {
		return "{}", err
	}
	t, err := transcript.LoadFile(transcriptPath)
	if err != nil {
		return "{}", err
	}
	out, err := Envelope(a.Name(), Run(ctx, a, t, r.logger))
	if err != nil {
		return "{}", err
	}
	return string(out), nil
}
