package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tickbug-backend/internal/models"
)

// GroupCount is one row of a grouped ticket count. Key is a status id,
// priority id, user id (0 for unassigned) or deliverable id depending on
// the query that produced it.
type GroupCount struct {
	Key       int64
	Label     string
	Total     int
	Completed int
}

func (q *Queries) groupCounts(ctx context.Context, query string, args ...any) ([]GroupCount, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupCount
	for rows.Next() {
		var g GroupCount
		var key sql.NullInt64
		var label sql.NullString
		if err := rows.Scan(&key, &label, &g.Total, &g.Completed); err != nil {
			return nil, err
		}
		g.Key = key.Int64
		g.Label = label.String
		out = append(out, g)
	}
	return out, rows.Err()
}

// TicketsByStatus includes every status, with zero counts for unused ones.
func (q *Queries) TicketsByStatus(ctx context.Context, projectID int64) ([]GroupCount, error) {
	out, err := q.groupCounts(ctx, `
		SELECT s.id, s.name, COUNT(t.id), COUNT(t.id)
		FROM statuses s
		LEFT JOIN (
			SELECT t.id, t.status_id FROM tickets t
			JOIN deliverables d ON d.id = t.deliverable_id
			WHERE d.project_id = $1
		) t ON t.status_id = s.id
		GROUP BY s.id, s.name
		ORDER BY s.id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets by status: %w", err)
	}
	for i := range out {
		if models.Status(out[i].Key) != models.StatusComplete {
			out[i].Completed = 0
		}
	}
	return out, nil
}

func (q *Queries) TicketsByPriority(ctx context.Context, projectID int64) ([]GroupCount, error) {
	out, err := q.groupCounts(ctx, `
		SELECT p.id, p.name, COUNT(t.id),
		       COALESCE(SUM(CASE WHEN t.status_id = $1 THEN 1 ELSE 0 END), 0)
		FROM priorities p
		LEFT JOIN (
			SELECT t.id, t.priority_id, t.status_id FROM tickets t
			JOIN deliverables d ON d.id = t.deliverable_id
			WHERE d.project_id = $2
		) t ON t.priority_id = p.id
		GROUP BY p.id, p.name
		ORDER BY p.id
	`, int(models.StatusComplete), projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets by priority: %w", err)
	}
	return out, nil
}

// TicketsByAssignee reports unassigned tickets under key 0.
func (q *Queries) TicketsByAssignee(ctx context.Context, projectID int64) ([]GroupCount, error) {
	out, err := q.groupCounts(ctx, `
		SELECT t.assigned_to, u.email, COUNT(t.id),
		       COALESCE(SUM(CASE WHEN t.status_id = $1 THEN 1 ELSE 0 END), 0)
		FROM tickets t
		JOIN deliverables d ON d.id = t.deliverable_id
		LEFT JOIN users u ON u.id = t.assigned_to
		WHERE d.project_id = $2
		GROUP BY t.assigned_to, u.email
		ORDER BY COUNT(t.id) DESC, t.assigned_to
	`, int(models.StatusComplete), projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets by assignee: %w", err)
	}
	return out, nil
}

func (q *Queries) TicketsByDeliverable(ctx context.Context, projectID int64) ([]GroupCount, error) {
	out, err := q.groupCounts(ctx, `
		SELECT d.id, d.name, COUNT(t.id),
		       COALESCE(SUM(CASE WHEN t.status_id = $1 THEN 1 ELSE 0 END), 0)
		FROM deliverables d
		LEFT JOIN tickets t ON t.deliverable_id = d.id
		WHERE d.project_id = $2
		GROUP BY d.id, d.name, d.display_order
		ORDER BY d.display_order, d.id
	`, int(models.StatusComplete), projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets by deliverable: %w", err)
	}
	return out, nil
}

func (q *Queries) countByUser(ctx context.Context, query string, args ...any) (map[int64]int, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var userID int64
		var n int
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, err
		}
		out[userID] = n
	}
	return out, rows.Err()
}

// TicketsCreatedBetween counts tickets created in [from, to) per creator.
func (q *Queries) TicketsCreatedBetween(ctx context.Context, projectID int64, from, to time.Time) (map[int64]int, error) {
	out, err := q.countByUser(ctx, `
		SELECT t.created_by, COUNT(*)
		FROM tickets t
		JOIN deliverables d ON d.id = t.deliverable_id
		WHERE d.project_id = $1 AND t.created_at >= $2 AND t.created_at < $3
		GROUP BY t.created_by
	`, projectID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to count created tickets: %w", err)
	}
	return out, nil
}

// CommentsBetween counts comments written in [from, to) per author.
func (q *Queries) CommentsBetween(ctx context.Context, projectID int64, from, to time.Time) (map[int64]int, error) {
	out, err := q.countByUser(ctx, `
		SELECT c.user_id, COUNT(*)
		FROM comments c
		JOIN tickets t ON t.id = c.ticket_id
		JOIN deliverables d ON d.id = t.deliverable_id
		WHERE d.project_id = $1 AND c.created_at >= $2 AND c.created_at < $3
		GROUP BY c.user_id
	`, projectID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return out, nil
}
