package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"notable/internal/config"
	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/domain/repositories"
	"notable/internal/notify"
	"notable/internal/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPrompts() *config.Prompts {
	return &config.Prompts{
		Summarize: config.PromptSet{System: []string{"summarize"}},
		Compose:   config.PromptSet{System: []string{"compose"}},
		Chat:      config.PromptSet{System: []string{"chat"}},
	}
}

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
	deleted   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Save(_ context.Context, key, _ string, r io.Reader) (string, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = payload
	return "https://blobs.test/" + key, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

type stubCompletion struct {
	mu     sync.Mutex
	reply  string
	err    error
	system []string
	input  string
	calls  int
}

func (s *stubCompletion) Complete(_ context.Context, system []string, input string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.system = system
	s.input = input
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubTranscriber struct {
	text string
	err  error
	url  string
}

func (s *stubTranscriber) TranscribeURL(_ context.Context, audioURL string) (string, error) {
	s.url = audioURL
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type pipelineFixture struct {
	store      *memory.Store
	blobs      *fakeStore
	completion *stubCompletion
	pipeline   *Pipeline
	noteID     string
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	store := memory.NewStore()
	blobs := newFakeStore()
	completion := &stubCompletion{reply: "generated summary"}

	p := NewPipeline(
		store.Notes(), store.Media(), blobs,
		DefaultRegistry(&stubTranscriber{text: "spoken words"}),
		completion, testPrompts(), notify.NewHub(),
		1, 8,
		testLogger(),
	)

	note := &models.Note{UserID: "u1", Title: "lecture"}
	if err := store.Notes().Create(context.Background(), note); err != nil {
		t.Fatalf("create note: %v", err)
	}

	return &pipelineFixture{
		store:      store,
		blobs:      blobs,
		completion: completion,
		pipeline:   p,
		noteID:     note.ID,
	}
}

func TestUploadPlainTextRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.pipeline.Run()

	note, media, err := f.pipeline.Upload(ctx, "u1", f.noteID, "greeting.txt", "text/plain", strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !media.Processing {
		t.Error("expected processing=true immediately after upload")
	}
	if len(note.Media) != 1 {
		t.Errorf("expected returned note to list the new media, got %d entries", len(note.Media))
	}

	f.pipeline.Shutdown()

	done, err := f.store.Media().GetByID(ctx, media.ID)
	if err != nil {
		t.Fatalf("get media: %v", err)
	}
	if done.Processing {
		t.Error("expected processing=false after ingestion")
	}
	if done.Transcript == nil || done.Transcript.Plain() != "hello world" {
		t.Errorf("expected transcript %q, got %v", "hello world", done.Transcript)
	}
	if done.Summary == nil || *done.Summary != shortTranscriptSummary {
		t.Errorf("expected short-transcript sentinel, got %v", done.Summary)
	}
	if done.FailedAt != nil {
		t.Errorf("expected no failure stamp, got %v", *done.FailedAt)
	}
	if f.completion.calls != 0 {
		t.Errorf("short transcript must not hit the completion service, got %d calls", f.completion.calls)
	}
}

func TestUploadLongTranscriptGetsSummarized(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.pipeline.Run()

	long := strings.Repeat("lecture notes on cell biology ", 50) // > 1000 chars

	_, media, err := f.pipeline.Upload(ctx, "u1", f.noteID, "notes.txt", "text/plain", strings.NewReader(long))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	f.pipeline.Shutdown()

	done, _ := f.store.Media().GetByID(ctx, media.ID)
	if done.Summary == nil || *done.Summary != "generated summary" {
		t.Errorf("expected AI summary, got %v", done.Summary)
	}
	if f.completion.calls != 1 {
		t.Errorf("expected 1 completion call, got %d", f.completion.calls)
	}
	if len(f.completion.system) == 0 || f.completion.system[0] != "summarize" {
		t.Errorf("expected summarize prompt, got %v", f.completion.system)
	}
}

func TestUploadUnsupportedTypeFails(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.pipeline.Run()

	_, media, err := f.pipeline.Upload(ctx, "u1", f.noteID, "tool.exe", "application/x-msdownload", strings.NewReader("MZ"))
	if err != nil {
		t.Fatalf("upload itself must succeed: %v", err)
	}

	f.pipeline.Shutdown()

	done, _ := f.store.Media().GetByID(ctx, media.ID)
	if !done.Processing {
		t.Error("failed ingestion must leave processing=true")
	}
	if !done.Failed() {
		t.Fatal("expected failure stamp")
	}
	if done.Error == nil || !strings.Contains(*done.Error, "unsupported media type") {
		t.Errorf("expected unsupported-type reason, got %v", done.Error)
	}
}

func TestUploadQueueFull(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := NewPipeline(
		store.Notes(), store.Media(), newFakeStore(),
		DefaultRegistry(&stubTranscriber{}),
		&stubCompletion{}, testPrompts(), notify.NewHub(),
		1, 1,
		testLogger(),
	)
	// workers deliberately not started: the single queue slot fills up

	note := &models.Note{UserID: "u1", Title: "n"}
	if err := store.Notes().Create(ctx, note); err != nil {
		t.Fatalf("create note: %v", err)
	}

	_, first, err := p.Upload(ctx, "u1", note.ID, "a.txt", "text/plain", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	_, second, err := p.Upload(ctx, "u1", note.ID, "b.txt", "text/plain", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}

	got1, _ := store.Media().GetByID(ctx, first.ID)
	got2, _ := store.Media().GetByID(ctx, second.ID)
	if got1.Failed() {
		t.Error("first upload should be queued, not failed")
	}
	if !got2.Failed() {
		t.Error("second upload should fail with a full queue")
	}

	// the response must carry the stamp, not a stale processing copy
	if !second.Failed() {
		t.Error("returned media must carry the failure stamp")
	}
	if second.Error == nil || !strings.Contains(*second.Error, "queue full") {
		t.Errorf("expected queue-full reason on returned media, got %v", second.Error)
	}
}

// ctxAwareMediaRepo refuses work on a dead context, the way a real database
// driver does.
type ctxAwareMediaRepo struct {
	inner repositories.MediaRepository
}

func (r *ctxAwareMediaRepo) Create(ctx context.Context, m *models.Media) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.inner.Create(ctx, m)
}

func (r *ctxAwareMediaRepo) GetByID(ctx context.Context, id string) (*models.Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.inner.GetByID(ctx, id)
}

func (r *ctxAwareMediaRepo) ListByNote(ctx context.Context, noteID string) ([]models.Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.inner.ListByNote(ctx, noteID)
}

func (r *ctxAwareMediaRepo) Update(ctx context.Context, m *models.Media) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.inner.Update(ctx, m)
}

func (r *ctxAwareMediaRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.inner.Delete(ctx, id)
}

// deadlineExtractor burns the whole job deadline before failing, like a
// transcription call that never comes back in time.
type deadlineExtractor struct{}

func (deadlineExtractor) Extract(ctx context.Context, _ *models.Media, _ []byte) (*models.Transcript, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFailureStampSurvivesJobTimeout(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	mediaRepo := &ctxAwareMediaRepo{inner: store.Media()}

	registry := NewRegistry()
	registry.Register(deadlineExtractor{}, "application/x-slow")

	p := NewPipeline(
		store.Notes(), mediaRepo, newFakeStore(),
		registry,
		&stubCompletion{}, testPrompts(), notify.NewHub(),
		1, 8,
		testLogger(),
	)

	media := &models.Media{Name: "slow.bin", Type: "application/x-slow", Processing: true}
	if err := store.Media().Create(ctx, media); err != nil {
		t.Fatalf("create media: %v", err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	p.process(jobCtx, job{mediaID: media.ID, mimeType: media.Type})

	got, err := store.Media().GetByID(ctx, media.ID)
	if err != nil {
		t.Fatalf("get media: %v", err)
	}
	if !got.Failed() {
		t.Fatal("expected failure stamp after job timeout")
	}
	if !got.Processing {
		t.Error("failed ingestion must leave processing=true")
	}
	if got.Error == nil || !strings.Contains(*got.Error, "deadline") {
		t.Errorf("expected deadline reason, got %v", got.Error)
	}
}

func TestUploadOwnership(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)

	_, _, err := f.pipeline.Upload(ctx, "intruder", f.noteID, "a.txt", "text/plain", strings.NewReader("a"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found for foreign note, got %v", err)
	}
}

func TestDeleteMediaBlobFailure(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.pipeline.Run()

	_, media, err := f.pipeline.Upload(ctx, "u1", f.noteID, "a.txt", "text/plain", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	f.pipeline.Shutdown()

	f.blobs.deleteErr = fmt.Errorf("bucket unavailable")

	note, err := f.pipeline.DeleteMedia(ctx, "u1", f.noteID, media.ID)
	if err != nil {
		t.Fatalf("delete must swallow blob errors: %v", err)
	}
	if len(note.Media) != 0 {
		t.Errorf("expected media list empty, got %d", len(note.Media))
	}
	if _, err := f.store.Media().GetByID(ctx, media.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected record removed, got %v", err)
	}
	if len(f.blobs.deleted) != 1 {
		t.Errorf("expected one blob delete attempt, got %d", len(f.blobs.deleted))
	}
}

func TestTranscribeAudio(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	transcriber := &stubTranscriber{text: strings.Repeat("word ", 300)} // > 1000 chars
	completion := &stubCompletion{reply: "audio summary"}
	p := NewPipeline(
		store.Notes(), store.Media(), newFakeStore(),
		DefaultRegistry(transcriber),
		completion, testPrompts(), notify.NewHub(),
		1, 8,
		testLogger(),
	)

	note := &models.Note{UserID: "u1", Title: "recording"}
	if err := store.Notes().Create(ctx, note); err != nil {
		t.Fatalf("create note: %v", err)
	}
	media := &models.Media{NoteID: note.ID, Name: "rec.mp3", Type: "audio/mpeg", URL: "https://blobs.test/rec.mp3", Processing: true}
	if err := store.Media().Create(ctx, media); err != nil {
		t.Fatalf("create media: %v", err)
	}

	done, err := p.TranscribeAudio(ctx, "u1", media.ID, "")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if transcriber.url != media.URL {
		t.Errorf("expected transcription from stored URL, got %q", transcriber.url)
	}
	if done.Processing {
		t.Error("expected processing=false")
	}
	if done.Summary == nil || *done.Summary != "audio summary" {
		t.Errorf("expected AI summary, got %v", done.Summary)
	}
}

func TestProcessSyncFailureStampsRecord(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)

	media := &models.Media{NoteID: f.noteID, Name: "slides.key", Type: "application/x-iwork-keynote", Processing: true}
	if err := f.store.Media().Create(ctx, media); err != nil {
		t.Fatalf("create media: %v", err)
	}

	_, err := f.pipeline.ProcessSync(ctx, "u1", media.ID, media.Type, []byte("payload"))
	if !errors.Is(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("expected unsupported media error, got %v", err)
	}

	got, _ := f.store.Media().GetByID(ctx, media.ID)
	if !got.Failed() || !got.Processing {
		t.Error("expected failure stamp with processing still true")
	}
}
