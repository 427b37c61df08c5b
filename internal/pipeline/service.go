// Package pipeline orchestrates the extraction-to-poster flow: one vision
// pass over the uploaded image, then a strictly sequential prompt+render pass
// per detected event. Event failures are isolated; only extraction failure
// aborts a batch.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"posterforge/internal/domain"
	"posterforge/internal/providers/prompt"
	"posterforge/internal/providers/render"
	"posterforge/internal/providers/vision"
)

// ProgressFunc receives one synchronous notification per event, before that
// event's prompt and render work begins. Calls are ordered and monotonic.
type ProgressFunc func(p domain.Progress)

// Options configures a Service. Extractor, Synthesizer and Renderer are
// required; Analytics and Logger are optional.
type Options struct {
	Extractor   vision.Extractor
	Synthesizer prompt.Synthesizer
	Renderer    render.Renderer
	Analytics   domain.AnalyticsRepository
	Logger      *zerolog.Logger
	Now         func() time.Time
}

// Service runs poster generation batches. Safe for concurrent use; all state
// is per-call.
type Service struct {
	extractor   vision.Extractor
	synthesizer prompt.Synthesizer
	renderer    render.Renderer
	analytics   domain.AnalyticsRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService validates the required collaborators and applies defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Extractor == nil {
		return nil, fmt.Errorf("pipeline: extractor is required")
	}
	if opts.Synthesizer == nil {
		return nil, fmt.Errorf("pipeline: synthesizer is required")
	}
	if opts.Renderer == nil {
		return nil, fmt.Errorf("pipeline: renderer is required")
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		extractor:   opts.Extractor,
		synthesizer: opts.Synthesizer,
		renderer:    opts.Renderer,
		analytics:   opts.Analytics,
		logger:      logger,
		now:         now,
	}, nil
}

// ProcessImage runs one full batch: extract events from the image, then for
// each event synthesize a prompt and render a poster. The returned result is
// always well formed; Success is false only when extraction itself fails.
// Cancellation mid-batch stops before the next event and returns the events
// completed so far with Cancelled set, so callers can tell a truncated batch
// from a short one.
func (s *Service) ProcessImage(ctx context.Context, imageData []byte, mime, organizationType, organizationID string, onProgress ProgressFunc) domain.ProcessingResult {
	start := s.now()

	events, err := s.extractor.ExtractEvents(ctx, imageData, mime)
	if err != nil {
		s.logger.Error().Err(err).Str("org_id", organizationID).Msg("pipeline: extraction failed")
		return domain.ProcessingResult{
			Success:        false,
			Error:          err.Error(),
			ProcessingTime: s.since(start),
		}
	}

	processed := make([]domain.ProcessedEvent, 0, len(events))
	successful := 0
	cancelled := false

	for i, event := range events {
		if ctx.Err() != nil {
			s.logger.Warn().Str("org_id", organizationID).Int("completed", i).Msg("pipeline: batch cancelled")
			cancelled = true
			break
		}
		if onProgress != nil {
			onProgress(domain.Progress{
				Current: i + 1,
				Total:   len(events),
				Event:   event.Name,
			})
		}
		record := s.processEvent(ctx, event, organizationType)
		if record.Status == domain.StatusImageGenerated {
			successful++
		}
		processed = append(processed, record)
	}

	result := domain.ProcessingResult{
		Success:          true,
		Events:           processed,
		TotalEvents:      len(events),
		SuccessfulEvents: successful,
		FailedEvents:     len(processed) - successful,
		Cancelled:        cancelled,
		ProcessingTime:   s.since(start),
	}

	s.logger.Info().
		Str("org_id", organizationID).
		Int("total", result.TotalEvents).
		Int("ok", result.SuccessfulEvents).
		Int("failed", result.FailedEvents).
		Int64("elapsed_ms", result.ProcessingTime).
		Msg("pipeline: batch complete")

	s.recordStats(organizationID, result)
	return result
}

// Regenerate re-runs prompt synthesis and rendering for one already-extracted
// event, leaving the extraction fields untouched.
func (s *Service) Regenerate(ctx context.Context, event domain.ExtractedEvent, organizationType string) domain.ProcessedEvent {
	return s.processEvent(ctx, event, organizationType)
}

// processEvent runs the two-step generation for a single event. A panic in a
// provider adapter is contained here so one bad event cannot take down the
// batch.
func (s *Service) processEvent(ctx context.Context, event domain.ExtractedEvent, organizationType string) (record domain.ProcessedEvent) {
	started := s.now()
	record = domain.ProcessedEvent{
		ExtractedEvent: event,
		Status:         domain.StatusExtracted,
		CreatedAt:      started,
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("event_id", event.ID).Interface("panic", r).Msg("pipeline: event processing panicked")
			record.Status = domain.StatusFailed
		}
	}()

	generated, err := s.synthesizer.SynthesizePrompt(ctx, event, organizationType)
	if err != nil {
		s.logger.Warn().Err(err).Str("event_id", event.ID).Msg("pipeline: prompt synthesis failed")
		record.Status = domain.StatusFailed
		return record
	}
	record.Prompt = generated
	record.Status = domain.StatusPromptGenerated

	url, err := s.renderer.RenderPoster(ctx, generated, event)
	if err != nil {
		s.logger.Warn().Err(err).Str("event_id", event.ID).Msg("pipeline: render failed")
		record.Status = domain.StatusFailed
		return record
	}
	record.ImageURL = url
	record.Status = domain.StatusImageGenerated
	record.ProcessingTime = s.since(started)
	return record
}

// recordStats hands the batch outcome to the analytics sink without blocking
// or failing the response path.
func (s *Service) recordStats(organizationID string, result domain.ProcessingResult) {
	if s.analytics == nil {
		return
	}
	stats := domain.BatchStats{
		OrganizationID:   organizationID,
		TotalEvents:      result.TotalEvents,
		SuccessfulEvents: result.SuccessfulEvents,
		FailedEvents:     result.FailedEvents,
		ProcessingTime:   time.Duration(result.ProcessingTime) * time.Millisecond,
		Timestamp:        s.now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.analytics.RecordBatch(ctx, stats); err != nil {
			s.logger.Warn().Err(err).Str("org_id", organizationID).Msg("pipeline: analytics record failed")
		}
	}()
}

func (s *Service) since(t time.Time) int64 {
	return s.now().Sub(t).Milliseconds()
}
