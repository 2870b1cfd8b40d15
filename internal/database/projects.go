package database

import (
	"context"
	"fmt"

	"tickbug-backend/internal/models"
)

const projectColumns = `id, name, description, theme_color, archived, created_by, created_at, updated_at`

func scanProject(row scanner) (models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ThemeColor, &p.Archived, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	now := q.now()
	var id int64
	err := q.q.QueryRowContext(ctx, `
		INSERT INTO projects (name, description, theme_color, archived, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.Name, p.Description, p.ThemeColor, false, p.CreatedBy, now, now).Scan(&id)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return q.GetProject(ctx, id)
}

func (q *Queries) GetProject(ctx context.Context, id int64) (models.Project, error) {
	p, err := scanProject(q.q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return models.Project{}, notFound(err)
	}
	return p, nil
}

func (q *Queries) UpdateProject(ctx context.Context, id int64, name, description, color string) error {
	return q.execOne(ctx, `
		UPDATE projects SET name = $1, description = $2, theme_color = $3, updated_at = $4
		WHERE id = $5
	`, name, description, color, q.now(), id)
}

func (q *Queries) SetProjectArchived(ctx context.Context, id int64, archived bool) error {
	return q.execOne(ctx, `
		UPDATE projects SET archived = $1, updated_at = $2
		WHERE id = $3
	`, archived, q.now(), id)
}

// ListProjectsForUser returns the user's projects in their own display order.
func (q *Queries) ListProjectsForUser(ctx context.Context, userID int64, includeArchived bool) ([]models.ProjectListing, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.theme_color, p.archived, p.created_by, p.created_at, p.updated_at,
		       pu.role, pu.display_order
		FROM projects p
		JOIN project_users pu ON pu.project_id = p.id
		WHERE pu.user_id = $1
		ORDER BY pu.display_order ASC, p.id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []models.ProjectListing
	for rows.Next() {
		var l models.ProjectListing
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.ThemeColor, &l.Archived, &l.CreatedBy,
			&l.CreatedAt, &l.UpdatedAt, &l.Role, &l.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if l.Archived && !includeArchived {
			continue
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
