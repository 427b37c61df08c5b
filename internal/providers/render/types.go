package render

import (
	"context"
	"errors"
	"fmt"

	"posterforge/internal/domain"
)

// Renderer turns a synthesized design prompt into a poster image reference.
// The backend is pluggable; implementations must bound any polling and fail
// with ErrTimeout rather than wait forever.
type Renderer interface {
	RenderPoster(ctx context.Context, prompt string, event domain.ExtractedEvent) (string, error)
}

// ValidAspectRatio reports whether name is one of the aspect ratios every
// backend can map to a concrete output size.
func ValidAspectRatio(name string) bool {
	switch name {
	case "square", "portrait", "landscape":
		return true
	}
	return false
}

// ErrTimeout marks a renderer whose backing provider never reported
// completion within the configured attempt budget. Wrapped inside
// *RenderError so errors.Is(err, ErrTimeout) identifies the subtype.
var ErrTimeout = errors.New("generation timeout")

// RenderError normalizes rendering failures (transport, provider-reported
// failure, timeout) while preserving the underlying cause for diagnostics.
type RenderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render: %s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("render: %s: %s", e.Provider, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func renderErr(provider, msg string, err error) *RenderError {
	return &RenderError{Provider: provider, Message: msg, Err: err}
}
