package domain

import "context"

// PosterRepository handles persistence for rendered posters.
type PosterRepository interface {
	SaveAll(ctx context.Context, organizationID string, events []ProcessedEvent) error
	ListByOrganization(ctx context.Context, organizationID string, limit int) ([]Poster, error)
}

// AnalyticsRepository records batch-level processing outcomes.
type AnalyticsRepository interface {
	RecordBatch(ctx context.Context, stats BatchStats) error
}
