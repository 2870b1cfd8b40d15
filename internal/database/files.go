package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tickbug-backend/internal/models"
)

const fileColumns = `f.id, f.filename, f.filepath, f.filesize, f.mime_type, f.uploaded_by, f.created_at`

func scanFile(row scanner) (models.File, error) {
	var f models.File
	err := row.Scan(&f.ID, &f.Filename, &f.Filepath, &f.Filesize, &f.MimeType, &f.UploadedBy, &f.CreatedAt)
	return f, err
}

func (q *Queries) CreateFile(ctx context.Context, f models.File) (models.File, error) {
	var id int64
	err := q.q.QueryRowContext(ctx, `
		INSERT INTO files (filename, filepath, filesize, mime_type, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, f.Filename, f.Filepath, f.Filesize, f.MimeType, f.UploadedBy, q.now()).Scan(&id)
	if err != nil {
		return models.File{}, fmt.Errorf("failed to create file: %w", err)
	}
	return q.GetFile(ctx, id)
}

func (q *Queries) LinkTicketFile(ctx context.Context, ticketID, fileID int64) error {
	if _, err := q.q.ExecContext(ctx, `INSERT INTO ticket_files (ticket_id, file_id) VALUES ($1, $2)`, ticketID, fileID); err != nil {
		return fmt.Errorf("failed to attach file to ticket: %w", err)
	}
	return nil
}

func (q *Queries) LinkCommentFile(ctx context.Context, commentID, fileID int64) error {
	if _, err := q.q.ExecContext(ctx, `INSERT INTO comment_files (comment_id, file_id) VALUES ($1, $2)`, commentID, fileID); err != nil {
		return fmt.Errorf("failed to attach file to comment: %w", err)
	}
	return nil
}

func (q *Queries) GetFile(ctx context.Context, id int64) (models.File, error) {
	f, err := scanFile(q.q.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files f WHERE f.id = $1`, id))
	if err != nil {
		return models.File{}, notFound(err)
	}
	return f, nil
}

// GetFileAttachment resolves the ticket or comment a file belongs to and the
// project above it.
func (q *Queries) GetFileAttachment(ctx context.Context, fileID int64) (models.FileAttachment, error) {
	var a models.FileAttachment
	err := q.q.QueryRowContext(ctx, `
		SELECT tf.ticket_id, d.project_id
		FROM ticket_files tf
		JOIN tickets t ON t.id = tf.ticket_id
		JOIN deliverables d ON d.id = t.deliverable_id
		WHERE tf.file_id = $1
	`, fileID).Scan(&a.TicketID, &a.ProjectID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.FileAttachment{}, fmt.Errorf("failed to resolve ticket file: %w", err)
	}

	err = q.q.QueryRowContext(ctx, `
		SELECT cf.comment_id, d.project_id
		FROM comment_files cf
		JOIN comments c ON c.id = cf.comment_id
		JOIN tickets t ON t.id = c.ticket_id
		JOIN deliverables d ON d.id = t.deliverable_id
		WHERE cf.file_id = $1
	`, fileID).Scan(&a.CommentID, &a.ProjectID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.FileAttachment{}, fmt.Errorf("failed to resolve comment file: %w", err)
	}
	return models.FileAttachment{}, nil
}

func (q *Queries) ListTicketFiles(ctx context.Context, ticketID int64) ([]models.File, error) {
	return q.listFiles(ctx, `
		SELECT `+fileColumns+`
		FROM files f JOIN ticket_files tf ON tf.file_id = f.id
		WHERE tf.ticket_id = $1
		ORDER BY f.created_at ASC, f.id ASC
	`, ticketID)
}

func (q *Queries) ListCommentFiles(ctx context.Context, commentID int64) ([]models.File, error) {
	return q.listFiles(ctx, `
		SELECT `+fileColumns+`
		FROM files f JOIN comment_files cf ON cf.file_id = f.id
		WHERE cf.comment_id = $1
		ORDER BY f.created_at ASC, f.id ASC
	`, commentID)
}

func (q *Queries) listFiles(ctx context.Context, query string, args ...any) ([]models.File, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var out []models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
