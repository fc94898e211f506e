package ingest

import (
	"context"

	"github.com/microcosm-cc/bluemonday"

	"notable/internal/domain/models"
)

// textExtractor passes plain text through the sanitizer unchanged otherwise.
type textExtractor struct {
	policy *bluemonday.Policy
}

func (e *textExtractor) Extract(_ context.Context, _ *models.Media, payload []byte) (*models.Transcript, error) {
	return &models.Transcript{Text: e.policy.Sanitize(string(payload))}, nil
}
