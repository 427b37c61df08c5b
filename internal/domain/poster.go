package domain

import "time"

// Poster is a persisted, successfully rendered event poster.
type Poster struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	EventID        string    `json:"event_id"`
	EventName      string    `json:"event_name"`
	EventDate      string    `json:"event_date"`
	EventType      string    `json:"event_type"`
	Prompt         string    `json:"prompt"`
	ImageURL       string    `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
}
