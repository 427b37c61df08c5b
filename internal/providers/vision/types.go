package vision

import (
	"context"
	"fmt"

	"posterforge/internal/domain"
)

// Extractor analyzes an uploaded image and returns every calendar event it
// can discern, in detection order.
type Extractor interface {
	ExtractEvents(ctx context.Context, imageData []byte, mime string) ([]domain.ExtractedEvent, error)
}

// ExtractionError normalizes every extraction failure (transport, provider
// status, empty reply, unparsable payload) into one tagged error so callers
// can abort the batch with a human-readable message.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vision: %s: %v", e.Message, e.Err)
	}
	return "vision: " + e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func extractionErr(msg string, err error) *ExtractionError {
	return &ExtractionError{Message: msg, Err: err}
}
