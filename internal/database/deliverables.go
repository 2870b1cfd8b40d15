package database

import (
	"context"
	"fmt"

	"tickbug-backend/internal/models"
)

const deliverableColumns = `id, project_id, name, description, display_order, created_by, created_at, updated_at`

func scanDeliverable(row scanner) (models.Deliverable, error) {
	var d models.Deliverable
	err := row.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Description, &d.DisplayOrder, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// CreateDeliverable appends the deliverable after its siblings:
// display_order = max(sibling order) + 1, or 0 for the first one.
func (q *Queries) CreateDeliverable(ctx context.Context, d models.Deliverable) (models.Deliverable, error) {
	var next int
	if err := q.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order), -1) + 1 FROM deliverables WHERE project_id = $1`,
		d.ProjectID,
	).Scan(&next); err != nil {
		return models.Deliverable{}, fmt.Errorf("failed to compute deliverable order: %w", err)
	}

	now := q.now()
	var id int64
	err := q.q.QueryRowContext(ctx, `
		INSERT INTO deliverables (project_id, name, description, display_order, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, d.ProjectID, d.Name, d.Description, next, d.CreatedBy, now, now).Scan(&id)
	if err != nil {
		return models.Deliverable{}, fmt.Errorf("failed to create deliverable: %w", err)
	}
	return q.GetDeliverable(ctx, id)
}

func (q *Queries) GetDeliverable(ctx context.Context, id int64) (models.Deliverable, error) {
	d, err := scanDeliverable(q.q.QueryRowContext(ctx, `SELECT `+deliverableColumns+` FROM deliverables WHERE id = $1`, id))
	if err != nil {
		return models.Deliverable{}, notFound(err)
	}
	return d, nil
}

func (q *Queries) ListDeliverables(ctx context.Context, projectID int64) ([]models.Deliverable, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+deliverableColumns+`
		FROM deliverables
		WHERE project_id = $1
		ORDER BY display_order ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliverables: %w", err)
	}
	defer rows.Close()

	var out []models.Deliverable
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deliverable: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateDeliverable(ctx context.Context, id int64, name, description string) error {
	return q.execOne(ctx, `
		UPDATE deliverables SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, name, description, q.now(), id)
}

// ReorderDeliverables sets display_order to each id's index. Ids outside the
// project are skipped; siblings missing from the list keep their old order.
func (q *Queries) ReorderDeliverables(ctx context.Context, projectID int64, ids []int64) error {
	for i, id := range ids {
		if _, err := q.q.ExecContext(ctx,
			`UPDATE deliverables SET display_order = $1 WHERE id = $2 AND project_id = $3`,
			i, id, projectID,
		); err != nil {
			return fmt.Errorf("failed to reorder deliverable %d: %w", id, err)
		}
	}
	return nil
}
