package database

import (
	"context"
	"database/sql"
	"fmt"

	"tickbug-backend/internal/models"
)

const ticketSelect = `
	SELECT t.id, t.deliverable_id, d.project_id, t.title, t.description, t.url, t.status_id, t.priority_id,
	       t.assigned_to, t.created_by, t.display_order, t.created_at, t.updated_at
	FROM tickets t
	JOIN deliverables d ON d.id = t.deliverable_id
`

func scanTicket(row scanner) (models.Ticket, error) {
	var t models.Ticket
	var url sql.NullString
	err := row.Scan(&t.ID, &t.DeliverableID, &t.ProjectID, &t.Title, &t.Description, &url, &t.Status, &t.Priority,
		&t.AssignedTo, &t.CreatedBy, &t.DisplayOrder, &t.CreatedAt, &t.UpdatedAt)
	t.URL = url.String
	return t, err
}

func (q *Queries) nextTicketOrder(ctx context.Context, deliverableID int64) (int, error) {
	var next int
	if err := q.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order), -1) + 1 FROM tickets WHERE deliverable_id = $1`,
		deliverableID,
	).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute ticket order: %w", err)
	}
	return next, nil
}

// CreateTicket appends the ticket to its deliverable: the first ticket gets
// order 0, later ones max(sibling order) + 1.
func (q *Queries) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	next, err := q.nextTicketOrder(ctx, t.DeliverableID)
	if err != nil {
		return models.Ticket{}, err
	}

	now := q.now()
	var id int64
	err = q.q.QueryRowContext(ctx, `
		INSERT INTO tickets (deliverable_id, title, description, url, status_id, priority_id, assigned_to, created_by, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, t.DeliverableID, t.Title, t.Description, nullString(t.URL), int(t.Status), int(t.Priority),
		t.AssignedTo, t.CreatedBy, next, now, now).Scan(&id)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("failed to create ticket: %w", err)
	}
	return q.GetTicket(ctx, id)
}

// GetTicket also resolves the owning project through the deliverable. It
// performs no permission check.
func (q *Queries) GetTicket(ctx context.Context, id int64) (models.Ticket, error) {
	t, err := scanTicket(q.q.QueryRowContext(ctx, ticketSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return models.Ticket{}, notFound(err)
	}
	return t, nil
}

func (q *Queries) ListTickets(ctx context.Context, deliverableID int64) ([]models.Ticket, error) {
	return q.listTickets(ctx, ticketSelect+` WHERE t.deliverable_id = $1 ORDER BY t.display_order ASC, t.id ASC`, deliverableID)
}

func (q *Queries) ListProjectTickets(ctx context.Context, projectID int64) ([]models.Ticket, error) {
	return q.listTickets(ctx, ticketSelect+` WHERE d.project_id = $1 ORDER BY d.display_order ASC, t.display_order ASC, t.id ASC`, projectID)
}

func (q *Queries) listTickets(ctx context.Context, query string, args ...any) ([]models.Ticket, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTicket writes every mutable column from t.
func (q *Queries) UpdateTicket(ctx context.Context, t models.Ticket) error {
	return q.execOne(ctx, `
		UPDATE tickets
		SET title = $1, description = $2, url = $3, status_id = $4, priority_id = $5, assigned_to = $6, updated_at = $7
		WHERE id = $8
	`, t.Title, t.Description, nullString(t.URL), int(t.Status), int(t.Priority), t.AssignedTo, q.now(), t.ID)
}

// MoveTicket re-parents a ticket, appending it to the target deliverable.
func (q *Queries) MoveTicket(ctx context.Context, ticketID, deliverableID int64) error {
	next, err := q.nextTicketOrder(ctx, deliverableID)
	if err != nil {
		return err
	}
	return q.execOne(ctx, `
		UPDATE tickets SET deliverable_id = $1, display_order = $2, updated_at = $3
		WHERE id = $4
	`, deliverableID, next, q.now(), ticketID)
}

// ReorderTickets sets display_order to each id's index within the
// deliverable. Ids from other deliverables are skipped.
func (q *Queries) ReorderTickets(ctx context.Context, deliverableID int64, ids []int64) error {
	for i, id := range ids {
		if _, err := q.q.ExecContext(ctx,
			`UPDATE tickets SET display_order = $1 WHERE id = $2 AND deliverable_id = $3`,
			i, id, deliverableID,
		); err != nil {
			return fmt.Errorf("failed to reorder ticket %d: %w", id, err)
		}
	}
	return nil
}

// TicketParticipants returns the ticket creator, its assignee and everyone
// who commented on it, without duplicates.
func (q *Queries) TicketParticipants(ctx context.Context, ticketID int64) ([]int64, error) {
	t, err := q.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	commenters, err := q.queryIDs(ctx, `SELECT DISTINCT user_id FROM comments WHERE ticket_id = $1`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commenters: %w", err)
	}
	seen := map[int64]bool{}
	var out []int64
	for _, id := range append([]int64{t.CreatedBy, t.Assignee()}, commenters...) {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
