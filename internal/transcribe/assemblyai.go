// Package transcribe adapts the AssemblyAI API to the Transcriber interface.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"notable/internal/domain"
	"notable/internal/domain/services"
)

// AssemblyAIClient transcribes audio reachable at a URL.
type AssemblyAIClient struct {
	client *aai.Client
	logger *slog.Logger
}

// NewAssemblyAIClient creates a transcription client.
func NewAssemblyAIClient(apiKey string, logger *slog.Logger) (services.Transcriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("assemblyai API key is required")
	}

	return &AssemblyAIClient{
		client: aai.NewClient(apiKey),
		logger: logger,
	}, nil
}

// TranscribeURL submits the audio URL and waits for the finished transcript.
func (c *AssemblyAIClient) TranscribeURL(ctx context.Context, audioURL string) (string, error) {
	params := &aai.TranscriptOptionalParams{
		SpeechModel: "universal",
	}

	transcript, err := c.client.Transcripts.TranscribeFromURL(ctx, audioURL, params)
	if err != nil {
		c.logger.Error("transcription call failed", "error", err)
		return "", &domain.UpstreamError{Message: fmt.Sprintf("transcription service: %v", err)}
	}

	if transcript.Status == aai.TranscriptStatusError {
		msg := "transcription failed"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return "", &domain.UpstreamError{Message: msg}
	}

	if transcript.Text == nil {
		return "", &domain.UpstreamError{Message: "transcription returned no text"}
	}

	return *transcript.Text, nil
}
