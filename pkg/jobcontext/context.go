// Package jobcontext carries insight job metadata through a context and
// runs job functions with bounded retries.
package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

type KeyContext string

var (
	keyCallID       KeyContext = "call_id"
	keyJobType      KeyContext = "job_type"
	keyWorkerID     KeyContext = "worker_id"
	keyRetryAttempt KeyContext = "retry_attempt"
	keyJobStartTime KeyContext = "job_start_time"
	keyMaxRetries   KeyContext = "max_retries"
	keyBaseDelay    KeyContext = "base_delay"
)

// Options bound a single job run
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultOptions suit a full four-analyzer insight run
var DefaultOptions = Options{
	Timeout:    5 * time.Minute,
	MaxRetries: 3,
	BaseDelay:  5 * time.Second,
}

// JobMetadata holds metadata for a job execution
type JobMetadata struct {
	CallID       string
	JobType      string
	WorkerID     int
	RetryAttempt int
	MaxRetries   int
	StartTime    time.Time
}

// JobBegin derives a job context with metadata and a timeout
func JobBegin(parentCtx context.Context, callID, jobType string, workerID int, opts Options) (context.Context, context.CancelFunc) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions.Timeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	ctx, cancel := context.WithTimeout(parentCtx, opts.Timeout)

	ctx = context.WithValue(ctx, keyCallID, callID)
	ctx = context.WithValue(ctx, keyJobType, jobType)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyMaxRetries, opts.MaxRetries)
	ctx = context.WithValue(ctx, keyBaseDelay, opts.BaseDelay)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// JobEnd runs jobFunc until it succeeds, fails with a non-retryable error,
// or exhausts the retry budget. Panics are recovered into errors.
func JobEnd(ctx context.Context, jobFunc func(context.Context) error) error {
	var (
		err        error
		maxRetries = GetMaxRetries(ctx)
		attempt    = GetRetryAttempt(ctx)
		baseDelay  = getBaseDelay(ctx)
	)

	for attempt < maxRetries {
		ctx = SetRetryAttempt(ctx, attempt)
		err = runOnce(ctx, jobFunc)
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		attempt++
		if attempt >= maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(CalculateBackoff(attempt, baseDelay)):
		}
	}

	return fmt.Errorf("job failed after %d attempts: %w", maxRetries, err)
}

func runOnce(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()
	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}
	return jobFunc(ctx)
}

// GetCallID extracts the call id from context
func GetCallID(ctx context.Context) (string, bool) {
	callID, ok := ctx.Value(keyCallID).(string)
	return callID, ok
}

// GetJobType extracts job type from context
func GetJobType(ctx context.Context) (string, bool) {
	jobType, ok := ctx.Value(keyJobType).(string)
	return jobType, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

func GetRetryAttempt(ctx context.Context) int {
	attempt, _ := ctx.Value(keyRetryAttempt).(int)
	return attempt
}

func SetRetryAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyRetryAttempt, attempt)
}

func GetMaxRetries(ctx context.Context) int {
	maxRetries, ok := ctx.Value(keyMaxRetries).(int)
	if !ok {
		return DefaultOptions.MaxRetries
	}
	return maxRetries
}

func getBaseDelay(ctx context.Context) time.Duration {
	d, ok := ctx.Value(keyBaseDelay).(time.Duration)
	if !ok || d <= 0 {
		return DefaultOptions.BaseDelay
	}
	return d
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	callID, _ := GetCallID(ctx)
	jobType, _ := GetJobType(ctx)
	startTime, _ := ctx.Value(keyJobStartTime).(time.Time)

	return &JobMetadata{
		CallID:       callID,
		JobType:      jobType,
		WorkerID:     GetWorkerID(ctx),
		RetryAttempt: GetRetryAttempt(ctx),
		MaxRetries:   GetMaxRetries(ctx),
		StartTime:    startTime,
	}
}

// IsRetryableError reports transient failures: timeouts, network errors,
// Postgres serialization conflicts, rate limits and 5xx responses.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused", "connection reset", "no such host", "i/o timeout",
		"deadlock", "40001", "40p01",
		"rate limit", "too many requests", "429",
		"status 5", "internal server error", "service unavailable", "bad gateway",
		"temporary failure", "try again",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// CalculateBackoff returns 2^attempt * baseDelay, capped at one minute
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	backoff := time.Duration(1<<uint(attempt)) * baseDelay
	if maxBackoff := 60 * time.Second; backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}
