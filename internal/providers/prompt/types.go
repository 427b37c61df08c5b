package prompt

import (
	"context"
	"fmt"

	"posterforge/internal/domain"
)

// Synthesizer produces one detailed poster-design prompt for an extracted
// event. Implementations are purely functional beyond the outbound call.
type Synthesizer interface {
	SynthesizePrompt(ctx context.Context, event domain.ExtractedEvent, organizationType string) (string, error)
}

// CaptionRequest carries the inputs for social caption generation.
type CaptionRequest struct {
	EventDescription string
	Platform         string
	Locale           string
}

// Captioner produces a social media caption for an event description.
type Captioner interface {
	Caption(ctx context.Context, req CaptionRequest) (string, error)
}

// SynthesisError normalizes prompt generation failures (transport, provider
// status, absent content) into one tagged error.
type SynthesisError struct {
	Message string
	Err     error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("prompt: %s: %v", e.Message, e.Err)
	}
	return "prompt: " + e.Message
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

func synthesisErr(msg string, err error) *SynthesisError {
	return &SynthesisError{Message: msg, Err: err}
}
