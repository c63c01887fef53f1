package insights

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/pkg/jobcontext"
)

const jobTypeCallInsights = "call_insights"

// Enqueue schedules a call for background processing. It never blocks.
func (s *Service) Enqueue(callID string) error {
	select {
	case s.queue <- callID:
		s.logger.Info("📥 Call queued for insights", zap.String("call_id", callID), zap.Int("queued", len(s.queue)))
		return nil
	default:
		return usecaseErrors.ErrQueueFull
	}
}

// StartWorkerPool starts workerCount goroutines draining the queue
func (s *Service) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	s.logger.Info("🚀 Starting insights worker pool", zap.Int("worker_count", workerCount))
	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.insightsWorker(ctx, i)
	}
	return nil
}

// StopWorkerPool stops the workers and waits for in-flight jobs
func (s *Service) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	s.logger.Info("🛑 Stopping insights worker pool...")
	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false
	s.logger.Info("✅ Insights worker pool stopped")
	return nil
}

func (s *Service) insightsWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	s.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))
	for {
		select {
		case <-s.workerStopChan:
			s.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
			return
		case <-parentCtx.Done():
			return
		case callID := <-s.queue:
			s.runJob(parentCtx, workerID, callID)
		}
	}
}

func (s *Service) runJob(parentCtx context.Context, workerID int, callID string) {
	jobCtx, cancel := jobcontext.JobBegin(parentCtx, callID, jobTypeCallInsights, workerID, jobcontext.DefaultOptions)
	defer cancel()

	err := jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
		return s.processQueued(ctx, callID)
	})
	if err != nil {
		s.logger.Error("❌ Job failed after retries",
			zap.String("call_id", callID),
			zap.Int("worker_id", workerID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("✅ Job completed successfully", zap.String("call_id", callID), zap.Int("worker_id", workerID))
}
