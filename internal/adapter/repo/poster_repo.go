package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"posterforge/internal/domain"
)

// PosterRepositoryPG implements domain.PosterRepository using PostgreSQL.
type PosterRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPosterRepository constructs a new poster repository instance.
func NewPosterRepository(pool *pgxpool.Pool) *PosterRepositoryPG {
	return &PosterRepositoryPG{pool: pool}
}

// SaveAll persists every successfully rendered event in the batch. Events
// without an image are skipped; they have nothing durable to show.
func (r *PosterRepositoryPG) SaveAll(ctx context.Context, organizationID string, events []domain.ProcessedEvent) error {
	query := `
INSERT INTO posters (id, organization_id, event_id, event_name, event_date, event_type, prompt, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

	for _, event := range events {
		if event.Status != domain.StatusImageGenerated {
			continue
		}
		e := event
		if _, err := r.pool.Exec(ctx, query,
			uuid.NewString(),
			organizationID,
			e.ID,
			e.Name,
			e.Date,
			string(e.Type),
			e.Prompt,
			e.ImageURL,
		); err != nil {
			return err
		}
	}

	return nil
}

// ListByOrganization returns the most recent posters for the organization.
func (r *PosterRepositoryPG) ListByOrganization(ctx context.Context, organizationID string, limit int) ([]domain.Poster, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, organization_id, event_id, event_name, event_date, event_type, prompt, image_url, created_at
FROM posters
WHERE organization_id = $1
ORDER BY created_at DESC
LIMIT $2;
`, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posters []domain.Poster
	for rows.Next() {
		var p domain.Poster
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.EventID, &p.EventName, &p.EventDate, &p.EventType, &p.Prompt, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		posters = append(posters, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posters, nil
}
