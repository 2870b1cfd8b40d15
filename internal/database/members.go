package database

import (
	"context"
	"database/sql"
	"fmt"

	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/models"
)

func scanMembership(row scanner, extra ...any) (models.Membership, error) {
	var m models.Membership
	var prefs sql.NullString
	dest := append([]any{&m.ProjectID, &m.UserID, &m.Role, &prefs, &m.DisplayOrder, &m.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Membership{}, err
	}
	m.Preferences = models.DecodeNotificationPreferences([]byte(prefs.String))
	return m, nil
}

// AddMember inserts a membership at the end of the user's project ordering.
// Preferences are left NULL so that defaults apply until the member saves
// their own.
func (q *Queries) AddMember(ctx context.Context, projectID, userID int64, role authz.Role) error {
	var next int
	if err := q.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order), -1) + 1 FROM project_users WHERE user_id = $1`,
		userID,
	).Scan(&next); err != nil {
		return fmt.Errorf("failed to compute member order: %w", err)
	}

	_, err := q.q.ExecContext(ctx, `
		INSERT INTO project_users (project_id, user_id, role, display_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, projectID, userID, string(role), next, q.now())
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// GetMembership is the role lookup. ErrNotFound means no access at all,
// which is distinct from the Viewer role.
func (q *Queries) GetMembership(ctx context.Context, projectID, userID int64) (models.Membership, error) {
	m, err := scanMembership(q.q.QueryRowContext(ctx, `
		SELECT project_id, user_id, role, notification_preferences, display_order, created_at
		FROM project_users
		WHERE project_id = $1 AND user_id = $2
	`, projectID, userID))
	if err != nil {
		return models.Membership{}, notFound(err)
	}
	return m, nil
}

func (q *Queries) ListMembers(ctx context.Context, projectID int64) ([]models.Member, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT pu.project_id, pu.user_id, pu.role, pu.notification_preferences, pu.display_order, pu.created_at,
		       u.email, u.first_name, u.last_name
		FROM project_users pu
		JOIN users u ON u.id = pu.user_id
		WHERE pu.project_id = $1
		ORDER BY u.last_name ASC, u.first_name ASC, u.id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		var mem models.Member
		m, err := scanMembership(rows, &mem.Email, &mem.FirstName, &mem.LastName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		mem.Membership = m
		out = append(out, mem)
	}
	return out, rows.Err()
}

func (q *Queries) CountOwners(ctx context.Context, projectID int64) (int, error) {
	var n int
	err := q.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM project_users WHERE project_id = $1 AND role = $2`,
		projectID, string(authz.RoleOwner),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return n, nil
}

func (q *Queries) UpdateMemberRole(ctx context.Context, projectID, userID int64, role authz.Role) error {
	return q.execOne(ctx,
		`UPDATE project_users SET role = $1 WHERE project_id = $2 AND user_id = $3`,
		string(role), projectID, userID)
}

func (q *Queries) RemoveMember(ctx context.Context, projectID, userID int64) error {
	return q.execOne(ctx,
		`DELETE FROM project_users WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
}

func (q *Queries) UpdateMemberPreferences(ctx context.Context, projectID, userID int64, prefs models.NotificationPreferences) error {
	return q.execOne(ctx,
		`UPDATE project_users SET notification_preferences = $1 WHERE project_id = $2 AND user_id = $3`,
		prefs.Encode(), projectID, userID)
}

// SetMemberDisplayOrder positions a project in one user's project list.
// Unknown project ids are ignored.
func (q *Queries) SetMemberDisplayOrder(ctx context.Context, userID, projectID int64, order int) error {
	_, err := q.q.ExecContext(ctx,
		`UPDATE project_users SET display_order = $1 WHERE user_id = $2 AND project_id = $3`,
		order, userID, projectID)
	return err
}
