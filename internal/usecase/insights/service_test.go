package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/pkg/config"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

type fakeCallLogRepo struct {
	mu    sync.Mutex
	logs  map[string]*entities.CallLog
	saved map[int64]datatypes.JSON
	next  int64
}

func newFakeCallLogRepo(logs ...*entities.CallLog) *fakeCallLogRepo {
	r := &fakeCallLogRepo{logs: map[string]*entities.CallLog{}, saved: map[int64]datatypes.JSON{}}
	for _, l := range logs {
		r.Upsert(context.Background(), l)
	}
	return r
}

func (r *fakeCallLogRepo) FindByCallID(_ context.Context, callID string) (*entities.CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.logs[callID]; ok {
		cp := *l
		return &cp, nil
	}
	if id, err := strconv.ParseInt(callID, 10, 64); err == nil {
		for _, l := range r.logs {
			if l.ID == id {
				cp := *l
				return &cp, nil
			}
		}
	}
	return nil, entities.ErrCallLogNotFound
}

func (r *fakeCallLogRepo) Upsert(_ context.Context, log *entities.CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.logs[log.CallID]; ok {
		log.ID = existing.ID
		if log.OrganizationID == nil {
			log.OrganizationID = existing.OrganizationID
		}
		if log.SalesRepID == nil {
			log.SalesRepID = existing.SalesRepID
		}
	} else {
		r.next++
		log.ID = r.next
	}
	cp := *log
	r.logs[log.CallID] = &cp
	return nil
}

func (r *fakeCallLogRepo) SaveInsights(_ context.Context, id int64, insights datatypes.JSON, processedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved[id] = insights
	for _, l := range r.logs {
		if l.ID == id {
			l.Insights = insights
			l.ProcessedAt = &processedAt
		}
	}
	return nil
}

func (r *fakeCallLogRepo) ListProcessed(_ context.Context, orgID *uuid.UUID, limit int) ([]*entities.CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.CallLog
	for _, l := range r.logs {
		if l.ProcessedAt != nil && l.BelongsTo(orgID) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCallLogRepo) savedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type fakeArchiver struct {
	mu       sync.Mutex
	insights []string
}

func (a *fakeArchiver) ArchiveTranscript(_ context.Context, callID string, _ []byte) (string, error) {
	return "transcripts/" + callID + ".json", nil
}

func (a *fakeArchiver) ArchiveInsights(_ context.Context, callID string, _ []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.insights = append(a.insights, callID)
	return "insights/" + callID, nil
}

type fakeTranscriber struct {
	t   transcript.Transcript
	err error
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (transcript.Transcript, error) {
	return f.t, f.err
}

func strPtr(s string) *string { return &s }

func okRunner() *fakeRunner {
	return &fakeRunner{stdout: map[string]string{
		entities.AnalyzerSummary:   `{"call_summary": {"output": "{\"summary\":\"Short intro call\",\"rating\":64}"}}`,
		entities.AnalyzerBenchmark: `{"custom_rag_analysis": {"output": "{}"}}`,
		entities.AnalyzerIntent:    `{"buyer_intent": {"output": "{\"nlp\":\"Interested\"}"}}`,
		entities.AnalyzerProfanity: `{"profanity_check": {"output": "{\"severity level\":\"Clean ✅\",\"report\":\"No profanity detected.\"}"}}`,
	}}
}

func newTestService(t *testing.T, repo *fakeCallLogRepo, runner Runner, opts ...func(*Service)) *Service {
	t.Helper()
	cfg := &config.Config{Insights: config.InsightsConfig{
		TranscriptDir: t.TempDir(),
		CacheTTL:      time.Minute,
		QueueSize:     4,
	}}
	s := NewService(repo, NewAggregator(runner, false, nil), NewPostCallAnalyzer(&fakeCompleter{}, 0), newMapCache(), nil, nil, cfg, nil)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func TestGetCallInsights_ReturnsStored(t *testing.T) {
	stored := datatypes.JSON(`{"call_summary":{"output":"{}"}}`)
	repo := newFakeCallLogRepo(&entities.CallLog{CallID: "call-1", Insights: stored})
	runner := &fakeRunner{fail: map[string]bool{}}
	s := newTestService(t, repo, runner)

	got, err := s.GetCallInsights(context.Background(), "call-1", nil)
	if err != nil {
		t.Fatalf("GetCallInsights() error = %v", err)
	}
	if string(got) != string(stored) {
		t.Errorf("insights = %s", got)
	}
	if repo.savedCount() != 0 {
		t.Error("stored insights must not be reprocessed")
	}
	if _, ok := s.fromCache(context.Background(), "call-1"); !ok {
		t.Error("insights were not cached")
	}
}

func TestGetCallInsights_ProcessesPlainTextTranscription(t *testing.T) {
	repo := newFakeCallLogRepo(&entities.CallLog{CallID: "call-2", Transcription: strPtr("hello, this is a plain text transcription")})
	archiver := &fakeArchiver{}
	s := newTestService(t, repo, okRunner(), func(s *Service) { s.archiver = archiver })

	got, err := s.GetCallInsights(context.Background(), "call-2", nil)
	if err != nil {
		t.Fatalf("GetCallInsights() error = %v", err)
	}

	var doc map[string]Output
	if err := json.Unmarshal(got, &doc); err != nil {
		t.Fatalf("insights are not JSON: %v", err)
	}
	for _, name := range entities.AnalyzerNames {
		if _, ok := doc[name]; !ok {
			t.Errorf("missing %s", name)
		}
	}
	summary, _ := doc[entities.AnalyzerSummary].Parsed.(map[string]interface{})
	if summary["summary"] != "Short intro call" {
		t.Errorf("summary = %+v", doc[entities.AnalyzerSummary])
	}
	if repo.savedCount() != 1 {
		t.Errorf("saved = %d, want 1", repo.savedCount())
	}
	if len(archiver.insights) != 1 {
		t.Errorf("archived = %v", archiver.insights)
	}

	log, _ := repo.FindByCallID(context.Background(), "call-2")
	if log.ProcessedAt == nil || !log.HasInsights() {
		t.Errorf("call log not updated: %+v", log)
	}
}

func TestGetCallInsights_Errors(t *testing.T) {
	org := uuid.New()
	other := uuid.New()
	repo := newFakeCallLogRepo(
		&entities.CallLog{CallID: "owned", OrganizationID: &org, Insights: datatypes.JSON(`{"a":1}`)},
		&entities.CallLog{CallID: "empty"},
	)
	s := newTestService(t, repo, okRunner())
	ctx := context.Background()

	if _, err := s.GetCallInsights(ctx, "missing", nil); !errors.Is(err, entities.ErrCallLogNotFound) {
		t.Errorf("missing call error = %v", err)
	}
	if _, err := s.GetCallInsights(ctx, "owned", &other); !errors.Is(err, usecaseErrors.ErrForbidden) {
		t.Errorf("foreign org error = %v", err)
	}
	if _, err := s.GetCallInsights(ctx, "owned", &org); err != nil {
		t.Errorf("own org error = %v", err)
	}
	// now served from cache, still scoped
	if _, err := s.GetCallInsights(ctx, "owned", &other); !errors.Is(err, usecaseErrors.ErrForbidden) {
		t.Errorf("cached foreign org error = %v", err)
	}
	if _, err := s.GetCallInsights(ctx, "empty", nil); !errors.Is(err, usecaseErrors.ErrInsightsNotFound) {
		t.Errorf("no transcription error = %v", err)
	}
}

func TestProcessCallInsights_NumericID(t *testing.T) {
	repo := newFakeCallLogRepo(&entities.CallLog{
		CallID:        "abc",
		Transcription: strPtr(`{"transcript":[{"speaker":"Speaker 1","text":"hi"}]}`),
	})
	s := newTestService(t, repo, okRunner())

	if _, err := s.ProcessCallInsights(context.Background(), "1", nil); err != nil {
		t.Fatalf("ProcessCallInsights() error = %v", err)
	}
	if repo.savedCount() != 1 {
		t.Fatal("insights not saved")
	}
}

func TestTranscripts(t *testing.T) {
	s := newTestService(t, newFakeCallLogRepo(), okRunner())
	dir := s.cfg.Insights.TranscriptDir
	os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"transcript":[{"speaker":"Speaker 1","text":"hi"},{"speaker":"Speaker 2","text":"hello"}]}`), 0o644)
	os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"notes":"free form"}`), 0o644)
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignored"), 0o644)
	ctx := context.Background()

	files, err := s.ListTranscripts(ctx)
	if err != nil {
		t.Fatalf("ListTranscripts() error = %v", err)
	}
	if len(files) != 2 || files[0] != "a.json" || files[1] != "b.json" {
		t.Errorf("files = %v", files)
	}

	if _, err := s.ReadTranscript(ctx, "b"); err != nil {
		t.Errorf("ReadTranscript(b) error = %v", err)
	}
	if _, err := s.ReadTranscript(ctx, "nope.json"); !errors.Is(err, entities.ErrTranscriptNotFound) {
		t.Errorf("missing transcript error = %v", err)
	}
	for _, id := range []string{"../secret.json", "/etc/passwd", "sub/b.json", ""} {
		if _, err := s.ReadTranscript(ctx, id); !errors.Is(err, usecaseErrors.ErrInvalidTranscriptID) {
			t.Errorf("ReadTranscript(%q) error = %v", id, err)
		}
	}
}

func TestAnalyzeCall(t *testing.T) {
	llm := &fakeCompleter{reply: `{"nextStep":{"action":"Demo"},"keyObjection":{},"keyTurningPoint":{},"outcome":{"status":"Open"}}`}
	s := newTestService(t, newFakeCallLogRepo(), okRunner(), func(s *Service) { s.postCall = NewPostCallAnalyzer(llm, 0) })
	dir := s.cfg.Insights.TranscriptDir
	os.WriteFile(filepath.Join(dir, "call.json"), []byte(`{"transcript":[{"speaker":"Speaker 1","text":"hi"},{"speaker":"Speaker 2","text":"hello"}]}`), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.json"), []byte(`{"notes":"free form"}`), 0o644)
	ctx := context.Background()

	got, err := s.AnalyzeCall(ctx, "", "call.json")
	if err != nil {
		t.Fatalf("AnalyzeCall() error = %v", err)
	}
	if got.NextStep.Action != "Demo" {
		t.Errorf("analysis = %+v", got)
	}
	if !bytes.Contains([]byte(llm.last().Prompt), []byte("[Speaker 1]: hi\n[Speaker 2]: hello")) {
		t.Errorf("prompt = %q", llm.last().Prompt)
	}

	if _, err := s.AnalyzeCall(ctx, "", "notes"); err != nil {
		t.Fatalf("AnalyzeCall(notes) error = %v", err)
	}
	if !bytes.Contains([]byte(llm.last().Prompt), []byte(`{"notes":"free form"}`)) {
		t.Errorf("non-transcript file not sent as JSON: %q", llm.last().Prompt)
	}

	if _, err := s.AnalyzeCall(ctx, "  ", ""); !errors.Is(err, usecaseErrors.ErrNoTranscriptProvided) {
		t.Errorf("empty input error = %v", err)
	}
}

func TestEnqueue_QueueFull(t *testing.T) {
	s := newTestService(t, newFakeCallLogRepo(), okRunner())
	for i := 0; i < 4; i++ {
		if err := s.Enqueue("call"); err != nil {
			t.Fatalf("Enqueue(%d) error = %v", i, err)
		}
	}
	if err := s.Enqueue("call"); !errors.Is(err, usecaseErrors.ErrQueueFull) {
		t.Fatalf("Enqueue() error = %v, want ErrQueueFull", err)
	}
}

func TestWorkerPool_ProcessesIngestedCalls(t *testing.T) {
	repo := newFakeCallLogRepo()
	rec := transcript.Transcript{Turns: []transcript.Turn{{Speaker: "Speaker 1", Text: "hi"}}}
	s := newTestService(t, repo, okRunner(), func(s *Service) { s.transcriber = &fakeTranscriber{t: rec} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.StartWorkerPool(ctx, 2); err != nil {
		t.Fatalf("StartWorkerPool() error = %v", err)
	}
	if err := s.StartWorkerPool(ctx, 2); err == nil {
		t.Error("second start should fail")
	}

	if err := s.IngestCall(ctx, &entities.CallLog{CallID: "with-text", Transcription: strPtr("plain text call")}); err != nil {
		t.Fatalf("IngestCall() error = %v", err)
	}
	if err := s.IngestCall(ctx, &entities.CallLog{CallID: "recording-only", RecordingURL: strPtr("https://example.com/a.mp3")}); err != nil {
		t.Fatalf("IngestCall() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for repo.savedCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := s.StopWorkerPool(); err != nil {
		t.Fatalf("StopWorkerPool() error = %v", err)
	}
	if repo.savedCount() != 2 {
		t.Fatalf("processed = %d, want 2", repo.savedCount())
	}
	log, _ := repo.FindByCallID(context.Background(), "recording-only")
	if !log.HasTranscription() {
		t.Error("recording-only call was not transcribed")
	}
}

func TestIngestCall_RequiresCallID(t *testing.T) {
	s := newTestService(t, newFakeCallLogRepo(), okRunner())
	if err := s.IngestCall(context.Background(), &entities.CallLog{}); !errors.Is(err, usecaseErrors.ErrInvalidInput) {
		t.Fatalf("IngestCall() error = %v", err)
	}
}

func TestTranscribeCall(t *testing.T) {
	repo := newFakeCallLogRepo()
	s := newTestService(t, repo, okRunner())
	if _, err := s.TranscribeCall(context.Background(), TranscribeInput{RecordingURL: "https://example.com/a.mp3"}); !errors.Is(err, usecaseErrors.ErrTranscriberDisabled) {
		t.Fatalf("TranscribeCall() without transcriber error = %v", err)
	}

	s.transcriber = &fakeTranscriber{t: transcript.Transcript{Turns: []transcript.Turn{{Speaker: "Speaker 2", Text: "sounds good"}}}}
	log, err := s.TranscribeCall(context.Background(), TranscribeInput{CallID: "tx-1", RecordingURL: "https://example.com/a.mp3"})
	if err != nil {
		t.Fatalf("TranscribeCall() error = %v", err)
	}
	if got := transcript.FromStored(*log.Transcription); got.Len() != 1 || got.Turns[0].Text != "sounds good" {
		t.Errorf("stored transcription = %q", *log.Transcription)
	}
	if len(s.queue) != 1 {
		t.Errorf("queued = %d, want 1", len(s.queue))
	}
}

func TestTranscribeCall_ForeignCallRejected(t *testing.T) {
	orgA, orgB := uuid.New(), uuid.New()
	original := `{"transcript":[{"speaker":"Speaker 2","text":"org b call"}]}`
	repo := newFakeCallLogRepo(&entities.CallLog{CallID: "call-b", OrganizationID: &orgB, Transcription: &original})
	s := newTestService(t, repo, okRunner())
	s.transcriber = &fakeTranscriber{t: transcript.Transcript{Turns: []transcript.Turn{{Speaker: "Speaker 1", Text: "hi"}}}}

	for _, org := range []*uuid.UUID{&orgA, nil} {
		if _, err := s.TranscribeCall(context.Background(), TranscribeInput{CallID: "call-b", RecordingURL: "https://example.com/b.mp3", OrganizationID: org}); !errors.Is(err, usecaseErrors.ErrForbidden) {
			t.Fatalf("TranscribeCall(org=%v) error = %v, want ErrForbidden", org, err)
		}
	}

	stored, _ := repo.FindByCallID(context.Background(), "call-b")
	if stored.OrganizationID == nil || *stored.OrganizationID != orgB {
		t.Errorf("owner = %v, want %s", stored.OrganizationID, orgB)
	}
	if *stored.Transcription != original {
		t.Errorf("transcription overwritten: %q", *stored.Transcription)
	}
	if len(s.queue) != 0 {
		t.Errorf("queued = %d, want 0", len(s.queue))
	}

	if _, err := s.TranscribeCall(context.Background(), TranscribeInput{CallID: "call-b", RecordingURL: "https://example.com/b.mp3", OrganizationID: &orgB}); err != nil {
		t.Fatalf("TranscribeCall() by owner error = %v", err)
	}
}

func TestIngestCall_KeepsOwner(t *testing.T) {
	org := uuid.New()
	rep := int64(7)
	repo := newFakeCallLogRepo(&entities.CallLog{CallID: "call-1", OrganizationID: &org, SalesRepID: &rep})
	s := newTestService(t, repo, okRunner())

	if err := s.IngestCall(context.Background(), &entities.CallLog{CallID: "call-1", Transcription: strPtr(`{"transcript":[]}`)}); err != nil {
		t.Fatalf("IngestCall() without org error = %v", err)
	}
	stored, _ := repo.FindByCallID(context.Background(), "call-1")
	if stored.OrganizationID == nil || *stored.OrganizationID != org {
		t.Errorf("owner = %v, want %s", stored.OrganizationID, org)
	}
	if stored.SalesRepID == nil || *stored.SalesRepID != rep {
		t.Errorf("sales rep = %v, want %d", stored.SalesRepID, rep)
	}

	other := uuid.New()
	if err := s.IngestCall(context.Background(), &entities.CallLog{CallID: "call-1", OrganizationID: &other}); !errors.Is(err, usecaseErrors.ErrForbidden) {
		t.Fatalf("IngestCall() into another org error = %v, want ErrForbidden", err)
	}
}

func TestExportInsights(t *testing.T) {
	org := uuid.New()
	processed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakeCallLogRepo(
		&entities.CallLog{
			CallID:         "call-x",
			OrganizationID: &org,
			ProcessedAt:    &processed,
			Insights: datatypes.JSON(`{
				"call_summary": {"output": "{\"summary\":\"Good call\",\"rating\":88}", "parsed": {"summary": "Good call", "rating": 88}},
				"buyer_intent": {"output": "{\"nlp\":\"Interested\"}"},
				"profanity_check": {"output": "{\"severity level\":\"Clean ✅\",\"report\":\"No profanity detected.\"}"}
			}`),
		},
		&entities.CallLog{CallID: "other-org", OrganizationID: ptrUUID(uuid.New()), ProcessedAt: &processed},
	)
	s := newTestService(t, repo, okRunner())

	data, err := s.ExportInsights(context.Background(), &org)
	if err != nil {
		t.Fatalf("ExportInsights() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("export is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	want := []string{"call-x", "2024-05-01T10:00:00Z", "88", "Interested", "Clean ✅", "Good call"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("column %d = %q, want %q", i, rows[1][i], v)
		}
	}
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }
