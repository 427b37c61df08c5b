package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"posterforge/internal/domain"
)

// AnalyticsRepositoryPG implements domain.AnalyticsRepository using PostgreSQL.
type AnalyticsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{pool: pool}
}

// RecordBatch appends one batch outcome row.
func (r *AnalyticsRepositoryPG) RecordBatch(ctx context.Context, stats domain.BatchStats) error {
	query := `
INSERT INTO poster_batches (organization_id, total_events, successful_events, failed_events, processing_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := r.pool.Exec(ctx, query,
		stats.OrganizationID,
		stats.TotalEvents,
		stats.SuccessfulEvents,
		stats.FailedEvents,
		stats.ProcessingTime.Milliseconds(),
		stats.Timestamp,
	)
	return err
}
