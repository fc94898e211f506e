// Package ingest runs the media ingestion pipeline: store the blob, create
// the media record, then extract or transcribe and opportunistically
// summarize off the request path via an in-process job queue.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"notable/internal/config"
	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/domain/repositories"
	"notable/internal/domain/services"
	"notable/internal/storage"
)

// shortTranscriptSummary is stored when a transcript is below the summary
// threshold.
const shortTranscriptSummary = "Not available, transcript is too short"

// jobTimeout bounds one extraction plus summarization attempt.
const jobTimeout = 5 * time.Minute

// markFailedTimeout bounds the failure-stamp write itself.
const markFailedTimeout = 10 * time.Second

type job struct {
	mediaID  string
	mimeType string
	payload  []byte
}

// Pipeline owns the ingestion queue and its workers. Upload enqueues; the
// workers drive each media record from processing=true to finalized or
// failed.
type Pipeline struct {
	noteRepo   repositories.NoteRepository
	mediaRepo  repositories.MediaRepository
	store      repositories.ObjectStore
	registry   *Registry
	completion services.CompletionService
	prompts    *config.Prompts
	notifier   services.Notifier
	logger     *slog.Logger

	workers int
	jobs    chan job
	wg      sync.WaitGroup
}

// NewPipeline creates the pipeline. Run must be called before Upload will
// make progress.
func NewPipeline(
	noteRepo repositories.NoteRepository,
	mediaRepo repositories.MediaRepository,
	store repositories.ObjectStore,
	registry *Registry,
	completion services.CompletionService,
	prompts *config.Prompts,
	notifier services.Notifier,
	workers, queueSize int,
	logger *slog.Logger,
) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pipeline{
		noteRepo:   noteRepo,
		mediaRepo:  mediaRepo,
		store:      store,
		registry:   registry,
		completion: completion,
		prompts:    prompts,
		notifier:   notifier,
		logger:     logger,
		workers:    workers,
		jobs:       make(chan job, queueSize),
	}
}

// Run starts the worker goroutines. They drain the queue until Shutdown
// closes it.
func (p *Pipeline) Run() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
				p.process(ctx, j)
				cancel()
			}
		}()
	}
	p.logger.Info("ingestion pipeline started", "workers", p.workers, "queue_size", cap(p.jobs))
}

// Shutdown stops accepting work and waits for in-flight jobs to finish.
func (p *Pipeline) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
}

// Upload stores the raw file, creates a processing media record attached to
// the note, and enqueues extraction without waiting for it. The returned
// note carries its refreshed media list including the new record.
func (p *Pipeline) Upload(ctx context.Context, userID, noteID, name, mimeType string, r io.Reader) (*models.Note, *models.Media, error) {
	note, err := p.ownedNote(ctx, userID, noteID)
	if err != nil {
		return nil, nil, err
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, &domain.ValidationError{Message: fmt.Sprintf("read upload: %v", err)}
	}
	if len(payload) == 0 {
		return nil, nil, &domain.ValidationError{Message: "empty file"}
	}

	key := uuid.NewString() + filepath.Ext(name)
	url, err := p.store.Save(ctx, key, mimeType, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, &domain.UpstreamError{Message: fmt.Sprintf("store upload: %v", err)}
	}

	media := &models.Media{
		NoteID:     noteID,
		Name:       name,
		Type:       mimeType,
		URL:        url,
		Processing: true,
		CreatedAt:  time.Now(),
	}
	if err := p.mediaRepo.Create(ctx, media); err != nil {
		return nil, nil, err
	}

	select {
	case p.jobs <- job{mediaID: media.ID, mimeType: mimeType, payload: payload}:
	default:
		// queue saturated; the record stays visible with a failure stamp,
		// and the response must carry that stamp too
		p.markFailed(media.ID, "ingestion queue full")
		if stamped, err := p.mediaRepo.GetByID(ctx, media.ID); err == nil {
			media = stamped
		}
	}

	p.logger.Info("media uploaded",
		"media_id", media.ID,
		"note_id", noteID,
		"type", mimeType,
		"bytes", len(payload),
	)

	all, err := p.mediaRepo.ListByNote(ctx, noteID)
	if err != nil {
		return nil, nil, err
	}
	note.Media = all

	return note, media, nil
}

// process runs one queued job to completion or failure.
func (p *Pipeline) process(ctx context.Context, j job) {
	media, err := p.mediaRepo.GetByID(ctx, j.mediaID)
	if err != nil {
		p.logger.Error("ingest job lost its media record", "media_id", j.mediaID, "error", err)
		return
	}

	transcript, summary, err := p.extractAndSummarize(ctx, media, j.mimeType, j.payload)
	if err != nil {
		p.markFailed(media.ID, err.Error())
		return
	}

	if err := p.finalize(ctx, media, transcript, summary); err != nil {
		p.logger.Error("finalize media failed", "media_id", media.ID, "error", err)
	}
}

func (p *Pipeline) extractAndSummarize(ctx context.Context, media *models.Media, mimeType string, payload []byte) (*models.Transcript, string, error) {
	extractor, ok := p.registry.Lookup(mimeType)
	if !ok {
		return nil, "", &domain.UnsupportedMediaError{Message: fmt.Sprintf("unsupported media type %q", mimeType)}
	}

	transcript, err := extractor.Extract(ctx, media, payload)
	if err != nil {
		return nil, "", err
	}

	summary, err := p.summarizeIfLong(ctx, transcript.Plain())
	if err != nil {
		return nil, "", err
	}

	return transcript, summary, nil
}

// summarizeIfLong requests an AI summary for transcripts above the
// threshold; shorter ones get the fixed sentinel. Not token-metered.
func (p *Pipeline) summarizeIfLong(ctx context.Context, text string) (string, error) {
	if len(text) <= config.SummarizeThresholdChars {
		return shortTranscriptSummary, nil
	}
	return p.completion.Complete(ctx, p.prompts.Summarize.System, text)
}

// finalize persists the transcript and summary and flips processing off.
// This is the only transition of the processing flag.
func (p *Pipeline) finalize(ctx context.Context, media *models.Media, transcript *models.Transcript, summary string) error {
	media.Transcript = transcript
	media.Summary = &summary
	media.Processing = false
	media.FailedAt = nil
	media.Error = nil

	if err := p.mediaRepo.Update(ctx, media); err != nil {
		return err
	}

	p.notifier.Publish(media.NoteID, "media_ready")
	p.logger.Info("media ingested", "media_id", media.ID, "note_id", media.NoteID)

	return nil
}

// markFailed stamps the terminal failure state. processing stays true; the
// failedAt timestamp is what tells clients the attempt is over. It runs on
// its own context: the job's context is often already dead by the time a
// failure is stamped (timeouts, cancelled requests), and a record that
// cannot be stamped would look stuck forever.
func (p *Pipeline) markFailed(mediaID, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), markFailedTimeout)
	defer cancel()

	media, err := p.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		p.logger.Error("mark failed: media gone", "media_id", mediaID, "error", err)
		return
	}

	now := time.Now()
	media.FailedAt = &now
	media.Error = &reason
	if err := p.mediaRepo.Update(ctx, media); err != nil {
		p.logger.Error("mark failed: update failed", "media_id", mediaID, "error", err)
		return
	}

	p.logger.Warn("media ingestion failed", "media_id", mediaID, "reason", reason)
}

// ProcessSync runs extraction and summarization inline for an existing
// media record and returns it finalized. Serves the synchronous transcript
// endpoint.
func (p *Pipeline) ProcessSync(ctx context.Context, userID, mediaID, mimeType string, payload []byte) (*models.Media, error) {
	media, err := p.ownedMedia(ctx, userID, mediaID)
	if err != nil {
		return nil, err
	}

	transcript, summary, err := p.extractAndSummarize(ctx, media, mimeType, payload)
	if err != nil {
		p.markFailed(media.ID, err.Error())
		return nil, err
	}

	if err := p.finalize(ctx, media, transcript, summary); err != nil {
		return nil, err
	}
	return media, nil
}

// TranscribeAudio transcribes remote audio for an existing media record and
// finalizes it. Serves the audio transcription endpoint.
func (p *Pipeline) TranscribeAudio(ctx context.Context, userID, mediaID, audioURL string) (*models.Media, error) {
	media, err := p.ownedMedia(ctx, userID, mediaID)
	if err != nil {
		return nil, err
	}

	extractor, ok := p.registry.Lookup("audio/*")
	if !ok {
		return nil, &domain.UnsupportedMediaError{Message: "audio transcription unavailable"}
	}

	target := *media
	if audioURL != "" {
		target.URL = audioURL
	}

	transcript, err := extractor.Extract(ctx, &target, nil)
	if err != nil {
		p.markFailed(media.ID, err.Error())
		return nil, err
	}

	summary, err := p.summarizeIfLong(ctx, transcript.Plain())
	if err != nil {
		p.markFailed(media.ID, err.Error())
		return nil, err
	}

	if err := p.finalize(ctx, media, transcript, summary); err != nil {
		return nil, err
	}
	return media, nil
}

// GetMedia returns one media record, ownership-checked through its note.
func (p *Pipeline) GetMedia(ctx context.Context, userID, noteID, mediaID string) (*models.Media, error) {
	if _, err := p.ownedNote(ctx, userID, noteID); err != nil {
		return nil, err
	}

	media, err := p.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if media.NoteID != noteID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", mediaID)}
	}
	return media, nil
}

// DeleteMedia removes a media record and best-effort deletes its blob. A
// failed blob delete is logged but never blocks removing the record. The
// returned note carries the remaining media.
func (p *Pipeline) DeleteMedia(ctx context.Context, userID, noteID, mediaID string) (*models.Note, error) {
	note, err := p.ownedNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	media, err := p.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if media.NoteID != noteID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", mediaID)}
	}

	if err := p.store.Delete(ctx, storage.KeyFromURL(media.URL)); err != nil {
		p.logger.Warn("blob delete failed, removing record anyway",
			"media_id", mediaID,
			"url", media.URL,
			"error", err,
		)
	}

	if err := p.mediaRepo.Delete(ctx, mediaID); err != nil {
		return nil, err
	}

	remaining, err := p.mediaRepo.ListByNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	note.Media = remaining

	return note, nil
}

func (p *Pipeline) ownedNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	note, err := p.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("note %s not found", noteID)}
	}
	return note, nil
}

func (p *Pipeline) ownedMedia(ctx context.Context, userID, mediaID string) (*models.Media, error) {
	media, err := p.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if _, err := p.ownedNote(ctx, userID, media.NoteID); err != nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", mediaID)}
	}
	return media, nil
}
