package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/pkg/config"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

// Cache is the key-value store used for insight lookups
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Archiver copies transcripts and insight reports to object storage
type Archiver interface {
	ArchiveTranscript(ctx context.Context, callID string, data []byte) (string, error)
	ArchiveInsights(ctx context.Context, callID string, data []byte) (string, error)
}

// Transcriber turns a recording URL into a speaker-labelled transcript
type Transcriber interface {
	Transcribe(ctx context.Context, recordingURL string) (transcript.Transcript, error)
}

// Service ties the analyzer pipeline to stored call logs, transcript files
// and the background processing queue.
type Service struct {
	callLogs    repositories.CallLogRepository
	aggregator  *Aggregator
	postCall    *PostCallAnalyzer
	cache       Cache
	archiver    Archiver
	transcriber Transcriber
	cfg         *config.Config
	logger      *zap.Logger
	now         func() time.Time

	queue               chan string
	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewService wires the insight use cases. cache, archiver and transcriber are optional.
func NewService(
	callLogs repositories.CallLogRepository,
	aggregator *Aggregator,
	postCall *PostCallAnalyzer,
	cache Cache,
	archiver Archiver,
	transcriber Transcriber,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	queueSize := cfg.Insights.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Service{
		callLogs:       callLogs,
		aggregator:     aggregator,
		postCall:       postCall,
		cache:          cache,
		archiver:       archiver,
		transcriber:    transcriber,
		cfg:            cfg,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
		queue:          make(chan string, queueSize),
		workerStopChan: make(chan struct{}),
	}
}

// cachedInsights keeps the owning organization next to the document so a
// cache hit is scoped like a database read.
type cachedInsights struct {
	OrganizationID *uuid.UUID      `json:"organization_id,omitempty"`
	Insights       json.RawMessage `json:"insights"`
}

func cacheKey(callID string) string {
	return "insights:" + callID
}

// GetCallInsights returns stored insights for a call, processing the call first when none exist.
func (s *Service) GetCallInsights(ctx context.Context, callID string, orgID *uuid.UUID) (json.RawMessage, error) {
	if cached, ok := s.fromCache(ctx, callID); ok {
		log := entities.CallLog{OrganizationID: cached.OrganizationID}
		if !log.BelongsTo(orgID) {
			return nil, usecaseErrors.ErrForbidden
		}
		return cached.Insights, nil
	}

	callLog, err := s.callLogs.FindByCallID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if !callLog.BelongsTo(orgID) {
		return nil, usecaseErrors.ErrForbidden
	}

	if callLog.HasInsights() {
		s.toCache(ctx, callLog.CallID, callLog.OrganizationID, callLog.Insights)
		return json.RawMessage(callLog.Insights), nil
	}

	out, err := s.processLog(ctx, callLog)
	if err != nil {
		s.logger.Warn("⚠️ Could not produce insights", zap.String("call_id", callID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrInsightsNotFound, err)
	}
	return out, nil
}

// ProcessCallInsights reruns the pipeline for a call and replaces its stored insights
func (s *Service) ProcessCallInsights(ctx context.Context, callID string, orgID *uuid.UUID) (json.RawMessage, error) {
	callLog, err := s.callLogs.FindByCallID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if !callLog.BelongsTo(orgID) {
		return nil, usecaseErrors.ErrForbidden
	}
	return s.processLog(ctx, callLog)
}

// processLog writes the transcription to a temporary file for the analyzer
// runs, then stores, caches and archives the combined result.
func (s *Service) processLog(ctx context.Context, callLog *entities.CallLog) (json.RawMessage, error) {
	if !callLog.HasTranscription() {
		return nil, usecaseErrors.ErrNoTranscription
	}
	t := transcript.FromStored(*callLog.Transcription)
	if t.IsEmpty() {
		return nil, usecaseErrors.ErrNoTranscription
	}

	path, cleanup, err := writeTempTranscript(t)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	s.logger.Info("🔍 Processing call insights",
		zap.String("call_id", callLog.CallID),
		zap.Int("turns", t.Len()),
	)

	result, err := s.aggregator.Aggregate(ctx, path)
	if err != nil {
		return nil, err
	}
	data, err := result.Parse().JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode insights: %w", err)
	}

	processedAt := s.now()
	if err := s.callLogs.SaveInsights(ctx, callLog.ID, datatypes.JSON(data), processedAt); err != nil {
		return nil, fmt.Errorf("failed to save insights: %w", err)
	}
	callLog.Insights = datatypes.JSON(data)
	callLog.ProcessedAt = &processedAt

	s.invalidate(ctx, callLog.CallID)
	s.toCache(ctx, callLog.CallID, callLog.OrganizationID, data)

	if s.archiver != nil {
		if key, err := s.archiver.ArchiveInsights(ctx, callLog.CallID, data); err != nil {
			s.logger.Warn("⚠️ Failed to archive insights", zap.String("call_id", callLog.CallID), zap.Error(err))
		} else {
			s.logger.Info("📦 Insights archived", zap.String("call_id", callLog.CallID), zap.String("key", key))
		}
	}

	s.logger.Info("✅ Call insights stored", zap.String("call_id", callLog.CallID))
	return json.RawMessage(data), nil
}

func writeTempTranscript(t transcript.Transcript) (string, func(), error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode transcript: %w", err)
	}
	f, err := os.CreateTemp("", "call-transcript-*.json")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp transcript: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp transcript: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp transcript: %w", err)
	}
	return f.Name(), cleanup, nil
}

func (s *Service) fromCache(ctx context.Context, callID string) (*cachedInsights, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, cacheKey(callID))
	if err != nil {
		s.logger.Warn("⚠️ Insights cache read failed", zap.String("call_id", callID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var cached cachedInsights
	if err := json.Unmarshal([]byte(raw), &cached); err != nil || len(cached.Insights) == 0 {
		return nil, false
	}
	return &cached, true
}

func (s *Service) toCache(ctx context.Context, callID string, orgID *uuid.UUID, data []byte) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(cachedInsights{OrganizationID: orgID, Insights: json.RawMessage(data)})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(callID), string(payload), s.cfg.Insights.CacheTTL); err != nil {
		s.logger.Warn("⚠️ Insights cache write failed", zap.String("call_id", callID), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, callID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(callID)); err != nil {
		s.logger.Warn("⚠️ Insights cache delete failed", zap.String("call_id", callID), zap.Error(err))
	}
}

// ListTranscripts returns the JSON transcript files in the transcript directory
func (s *Service) ListTranscripts(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.cfg.Insights.TranscriptDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript directory: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

// ReadTranscript returns the raw JSON of a transcript file. id is a file
// name inside the transcript directory, with or without the .json suffix.
func (s *Service) ReadTranscript(ctx context.Context, id string) (json.RawMessage, error) {
	path, err := s.transcriptPath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, entities.ErrTranscriptNotFound
		}
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("transcript %s is not valid JSON", id)
	}
	return json.RawMessage(data), nil
}

func (s *Service) transcriptPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || !filepath.IsLocal(id) || strings.ContainsAny(id, `/\`) {
		return "", usecaseErrors.ErrInvalidTranscriptID
	}
	if !strings.EqualFold(filepath.Ext(id), ".json") {
		id += ".json"
	}
	return filepath.Join(s.cfg.Insights.TranscriptDir, id), nil
}

// AnalyzeCall runs the post-call analysis on text, or on the named transcript
// file when text is empty. Files holding a transcript list are rendered as
// "[speaker]: text" lines, anything else is sent as its JSON text.
func (s *Service) AnalyzeCall(ctx context.Context, text, transcriptID string) (*entities.PostCallAnalysis, error) {
	if strings.TrimSpace(text) == "" && transcriptID != "" {
		raw, err := s.ReadTranscript(ctx, transcriptID)
		if err != nil {
			return nil, err
		}
		if gjson.GetBytes(raw, "transcript").IsArray() {
			text = transcript.Parse(raw).Bracketed()
		} else {
			text = string(raw)
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, usecaseErrors.ErrNoTranscriptProvided
	}
	return s.postCall.Analyze(ctx, text)
}

// Output aggregates the default transcript file without touching the database
func (s *Service) Output(ctx context.Context) (Result, error) {
	path := s.cfg.DefaultTranscriptFile()
	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			path = filepath.Join(s.cfg.Insights.TranscriptDir, path)
		}
	}
	result, err := s.aggregator.Aggregate(ctx, path)
	if err != nil {
		return nil, err
	}
	return result.Parse(), nil
}

// IngestCall stores a recorded call and queues it for insight processing
func (s *Service) IngestCall(ctx context.Context, callLog *entities.CallLog) error {
	if strings.TrimSpace(callLog.CallID) == "" {
		return fmt.Errorf("%w: call_id is required", usecaseErrors.ErrInvalidInput)
	}
	// A missing organization keeps the stored one, so only a named one is checked
	if callLog.OrganizationID != nil {
		if err := s.checkOwner(ctx, callLog.CallID, callLog.OrganizationID); err != nil {
			return err
		}
	}
	if err := s.callLogs.Upsert(ctx, callLog); err != nil {
		return fmt.Errorf("failed to store call log: %w", err)
	}
	s.invalidate(ctx, callLog.CallID)

	if s.archiver != nil && callLog.HasTranscription() {
		if _, err := s.archiver.ArchiveTranscript(ctx, callLog.CallID, []byte(*callLog.Transcription)); err != nil {
			s.logger.Warn("⚠️ Failed to archive transcript", zap.String("call_id", callLog.CallID), zap.Error(err))
		}
	}
	return s.Enqueue(callLog.CallID)
}

// TranscribeInput describes a recording to transcribe
type TranscribeInput struct {
	CallID         string
	RecordingURL   string
	SalesRepID     *int64
	OrganizationID *uuid.UUID
}

// TranscribeCall transcribes a recording, stores it as the call's
// transcription and queues insight processing.
func (s *Service) TranscribeCall(ctx context.Context, in TranscribeInput) (*entities.CallLog, error) {
	if s.transcriber == nil {
		return nil, usecaseErrors.ErrTranscriberDisabled
	}
	if in.CallID == "" {
		in.CallID = uuid.NewString()
	} else if err := s.checkOwner(ctx, in.CallID, in.OrganizationID); err != nil {
		return nil, err
	}

	t, err := s.transcriber.Transcribe(ctx, in.RecordingURL)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}

	text := string(data)
	recordingURL := in.RecordingURL
	callDate := s.now()
	callLog := &entities.CallLog{
		CallID:         in.CallID,
		SalesRepID:     in.SalesRepID,
		OrganizationID: in.OrganizationID,
		CallDate:       &callDate,
		RecordingURL:   &recordingURL,
		Transcription:  &text,
	}
	if err := s.IngestCall(ctx, callLog); err != nil {
		return callLog, err
	}
	return callLog, nil
}

// checkOwner rejects writes to a call stored under another organization.
// Unknown calls pass.
func (s *Service) checkOwner(ctx context.Context, callID string, orgID *uuid.UUID) error {
	existing, err := s.callLogs.FindByCallID(ctx, callID)
	if errors.Is(err, entities.ErrCallLogNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.CallID == callID && !existing.BelongsTo(orgID) {
		return usecaseErrors.ErrForbidden
	}
	return nil
}

// ProcessCall runs a stored call through the pipeline outside any organization
// scope. It is meant for operators, not HTTP callers.
func (s *Service) ProcessCall(ctx context.Context, callID string) error {
	s.invalidate(ctx, callID)
	return s.processQueued(ctx, callID)
}

// processQueued is the body of one queued job. Calls that arrived with only
// a recording are transcribed first.
func (s *Service) processQueued(ctx context.Context, callID string) error {
	callLog, err := s.callLogs.FindByCallID(ctx, callID)
	if err != nil {
		return err
	}
	if !callLog.HasTranscription() && callLog.RecordingURL != nil && s.transcriber != nil {
		t, err := s.transcriber.Transcribe(ctx, *callLog.RecordingURL)
		if err != nil {
			return err
		}
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		text := string(data)
		callLog.Transcription = &text
		if err := s.callLogs.Upsert(ctx, callLog); err != nil {
			return fmt.Errorf("failed to store transcription: %w", err)
		}
	}
	_, err = s.processLog(ctx, callLog)
	return err
}
