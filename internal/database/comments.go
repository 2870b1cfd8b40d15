package database

import (
	"context"
	"database/sql"
	"fmt"

	"tickbug-backend/internal/models"
)

const commentSelect = `
	SELECT c.id, c.ticket_id, d.project_id, c.user_id, c.description, c.url, c.created_at, c.updated_at
	FROM comments c
	JOIN tickets t ON t.id = c.ticket_id
	JOIN deliverables d ON d.id = t.deliverable_id
`

func scanComment(row scanner) (models.Comment, error) {
	var c models.Comment
	var url sql.NullString
	err := row.Scan(&c.ID, &c.TicketID, &c.ProjectID, &c.UserID, &c.Description, &url, &c.CreatedAt, &c.UpdatedAt)
	c.URL = url.String
	return c, err
}

func (q *Queries) CreateComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	now := q.now()
	var id int64
	err := q.q.QueryRowContext(ctx, `
		INSERT INTO comments (ticket_id, user_id, description, url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, c.TicketID, c.UserID, c.Description, nullString(c.URL), now, now).Scan(&id)
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to create comment: %w", err)
	}
	return q.GetComment(ctx, id)
}

func (q *Queries) GetComment(ctx context.Context, id int64) (models.Comment, error) {
	c, err := scanComment(q.q.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return models.Comment{}, notFound(err)
	}
	return c, nil
}

func (q *Queries) ListComments(ctx context.Context, ticketID int64) ([]models.Comment, error) {
	rows, err := q.q.QueryContext(ctx, commentSelect+` WHERE c.ticket_id = $1 ORDER BY c.created_at ASC, c.id ASC`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateComment(ctx context.Context, id int64, description, url string) error {
	return q.execOne(ctx, `
		UPDATE comments SET description = $1, url = $2, updated_at = $3
		WHERE id = $4
	`, description, nullString(url), q.now(), id)
}
