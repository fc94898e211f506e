package ingest

import (
	"context"

	"notable/internal/domain/models"
	"notable/internal/domain/services"
)

// audioExtractor transcribes from the media's stored URL; the payload is
// already in the object store by the time extraction runs.
type audioExtractor struct {
	transcriber services.Transcriber
}

func (e *audioExtractor) Extract(ctx context.Context, media *models.Media, _ []byte) (*models.Transcript, error) {
	text, err := e.transcriber.TranscribeURL(ctx, media.URL)
	if err != nil {
		return nil, err
	}
	return &models.Transcript{Text: text}, nil
}
