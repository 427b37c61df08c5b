package domain

import "time"

// EventType enumerates the closed set of calendar entry kinds the vision
// extractor may report.
type EventType string

const (
	EventTypeHoliday     EventType = "holiday"
	EventTypeFestival    EventType = "festival"
	EventTypeVacation    EventType = "vacation"
	EventTypeCelebration EventType = "celebration"
	EventTypeAcademic    EventType = "academic"
	EventTypeCultural    EventType = "cultural"
)

// Importance enumerates the extractor's priority ranking for an event.
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// ValidEventType reports whether the value belongs to the closed type set.
func ValidEventType(v string) bool {
	switch EventType(v) {
	case EventTypeHoliday, EventTypeFestival, EventTypeVacation,
		EventTypeCelebration, EventTypeAcademic, EventTypeCultural:
		return true
	}
	return false
}

// ValidImportance reports whether the value belongs to the closed importance set.
func ValidImportance(v string) bool {
	switch Importance(v) {
	case ImportanceHigh, ImportanceMedium, ImportanceLow:
		return true
	}
	return false
}

// ExtractedEvent is one calendar entry detected in an uploaded image. It is
// created once per batch by the extractor and never mutated afterwards; a
// regenerate call re-derives prompt and poster but leaves these fields alone.
// Date and Day are opaque human-readable text, not parsed calendar values.
type ExtractedEvent struct {
	ID          string     `json:"id" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Date        string     `json:"date" validate:"required"`
	Day         string     `json:"day" validate:"required"`
	Type        EventType  `json:"type" validate:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Importance  Importance `json:"importance"`
	Colors      []string   `json:"colors"`
	Keywords    []string   `json:"keywords"`
}

// EventStatus is the per-event processing state. Transitions are strictly
// forward: extracted -> prompt_generated -> image_generated, with failed as
// the terminal state reachable from extracted or prompt_generated.
type EventStatus string

const (
	StatusExtracted       EventStatus = "extracted"
	StatusPromptGenerated EventStatus = "prompt_generated"
	StatusImageGenerated  EventStatus = "image_generated"
	StatusFailed          EventStatus = "failed"
)

// ProcessedEvent is an ExtractedEvent plus the processing state owned by the
// pipeline for the duration of one batch. The pipeline is the sole writer;
// once the batch returns, the record is a snapshot.
type ProcessedEvent struct {
	ExtractedEvent
	Prompt         string      `json:"prompt,omitempty"`
	ImageURL       string      `json:"imageUrl,omitempty"`
	Status         EventStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	ProcessingTime int64       `json:"processingTime,omitempty"` // milliseconds, set on success only
}

// ProcessingResult is the aggregate outcome of one batch. Created once at
// batch end and immutable afterwards. When Success is false no per-event
// records are present and Error carries the extraction failure.
type ProcessingResult struct {
	Success          bool             `json:"success"`
	Events           []ProcessedEvent `json:"events,omitempty"`
	TotalEvents      int              `json:"totalEvents"`
	SuccessfulEvents int              `json:"successfulEvents"`
	FailedEvents     int              `json:"failedEvents"`
	Cancelled        bool             `json:"cancelled,omitempty"`
	ProcessingTime   int64            `json:"processingTime"` // milliseconds
	Error            string           `json:"error,omitempty"`
}

// Progress is reported once per event, synchronously, in processing order.
type Progress struct {
	Current int    `json:"current"` // 1-based event index
	Total   int    `json:"total"`
	Event   string `json:"event"` // human-readable label
}

// BatchStats is the record handed to the analytics recorder after a batch.
type BatchStats struct {
	OrganizationID   string
	TotalEvents      int
	SuccessfulEvents int
	FailedEvents     int
	ProcessingTime   time.Duration
	Timestamp        time.Time
}
