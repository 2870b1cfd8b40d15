package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tickbug-backend/internal/models"
)

const activityColumns = `id, user_id, project_id, target_type, target_id, action, details, created_at`

func scanActivity(row scanner) (models.ActivityEntry, error) {
	var e models.ActivityEntry
	var details sql.NullString
	if err := row.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.TargetType, &e.TargetID, &e.Action, &details, &e.CreatedAt); err != nil {
		return models.ActivityEntry{}, err
	}
	if details.Valid && details.String != "" {
		e.Details = []byte(details.String)
	}
	return e, nil
}

// InsertActivity appends to the log. There is no update or single-row
// delete; rows only go away with their project.
func (q *Queries) InsertActivity(ctx context.Context, e models.ActivityEntry) error {
	var details sql.NullString
	if len(e.Details) > 0 {
		details = sql.NullString{String: string(e.Details), Valid: true}
	}
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO activity_log (user_id, project_id, target_type, target_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.UserID, e.ProjectID, string(e.TargetType), e.TargetID, string(e.Action), details, q.now())
	if err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}

// ListActivity returns a page of the project's log, newest first.
func (q *Queries) ListActivity(ctx context.Context, projectID int64, limit, offset int) ([]models.ActivityEntry, error) {
	return q.listActivity(ctx, `
		SELECT `+activityColumns+`
		FROM activity_log
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, projectID, limit, offset)
}

// ActivityBetween returns entries in [from, to), oldest first.
func (q *Queries) ActivityBetween(ctx context.Context, projectID int64, from, to time.Time) ([]models.ActivityEntry, error) {
	return q.listActivity(ctx, `
		SELECT `+activityColumns+`
		FROM activity_log
		WHERE project_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at ASC, id ASC
	`, projectID, from.UTC(), to.UTC())
}

func (q *Queries) CountActivity(ctx context.Context, projectID int64) (int, error) {
	var n int
	err := q.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_log WHERE project_id = $1`, projectID).Scan(&n)
	return n, err
}

func (q *Queries) listActivity(ctx context.Context, query string, args ...any) ([]models.ActivityEntry, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var out []models.ActivityEntry
	for rows.Next() {
		e, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
