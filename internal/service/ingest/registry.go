package ingest

import (
	"context"
	"strings"

	"notable/internal/domain/models"
	"notable/internal/domain/services"
)

// Extractor converts one media kind's payload into a transcript. payload is
// the raw uploaded bytes; extractors for remote media (audio) may ignore it
// and work from the media's stored URL instead.
type Extractor interface {
	Extract(ctx context.Context, media *models.Media, payload []byte) (*models.Transcript, error)
}

// Registry dispatches extraction by MIME type.
type Registry struct {
	byType map[string]Extractor
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]Extractor)}
}

// Register binds an extractor to one or more MIME types. The pseudo-type
// "audio/*" matches any audio subtype.
func (r *Registry) Register(e Extractor, mimeTypes ...string) {
	for _, t := range mimeTypes {
		r.byType[t] = e
	}
}

// Lookup resolves the extractor for a MIME type. Parameters after ";" are
// ignored.
func (r *Registry) Lookup(mimeType string) (Extractor, bool) {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	if e, ok := r.byType[mimeType]; ok {
		return e, true
	}
	if strings.HasPrefix(mimeType, "audio/") {
		if e, ok := r.byType["audio/*"]; ok {
			return e, true
		}
	}
	return nil, false
}

// DefaultRegistry wires every supported media kind: plain text, PDF, Word
// documents, slide decks, and audio.
func DefaultRegistry(transcriber services.Transcriber) *Registry {
	policy := newSanitizer()

	r := NewRegistry()
	r.Register(&textExtractor{policy: policy}, "text/plain")
	r.Register(&pdfExtractor{}, "application/pdf")
	r.Register(&docxExtractor{policy: policy},
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword",
	)
	r.Register(&pptxExtractor{policy: policy},
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/vnd.ms-powerpoint",
	)
	r.Register(&audioExtractor{transcriber: transcriber}, "audio/*")
	return r
}
