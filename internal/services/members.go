package services

import (
	"context"
	"errors"

	"tickbug-backend/internal/activity"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/notify"
)

func (s *ProjectService) Members(ctx context.Context, actorID, projectID int64) ([]models.Member, error) {
	var out []models.Member
	err := s.read(ctx, func(q *database.Queries) error {
		if _, err := s.project(ctx, q, projectID); err != nil {
			return err
		}
		if _, err := s.authorize(ctx, q, projectID, actorID, authz.ViewProject, 0); err != nil {
			return err
		}
		var err error
		out, err = q.ListMembers(ctx, projectID)
		return err
	})
	return out, err
}

// AddMember grants an existing user a role in the project. Only an Owner
// may grant Owner.
func (s *ProjectService) AddMember(ctx context.Context, actorID, projectID int64, req models.AddMemberRequest) (models.Member, error) {
	role, ok := authz.ParseRole(req.Role)
	if !ok {
		return models.Member{}, validationError("unknown role %q", req.Role)
	}

	var added models.Member
	err := s.run(ctx, func(u *unit) error {
		p, err := s.project(ctx, u.q, projectID)
		if err != nil {
			return err
		}
		actor, err := s.role(ctx, u.q, projectID, actorID)
		if err != nil {
			return err
		}
		if err := authz.CheckGrant(actor.Role, role); err != nil {
			return err
		}

		user, err := u.q.GetUserByEmail(ctx, models.NormalizeEmail(req.Email))
		if errors.Is(err, database.ErrNotFound) {
			return notFound("user with that email")
		}
		if err != nil {
			return err
		}
		if _, err := u.q.GetMembership(ctx, projectID, user.ID); err == nil {
			return conflict("%s is already a member of this project", user.Email)
		} else if !errors.Is(err, database.ErrNotFound) {
			return err
		}

		if err := u.q.AddMember(ctx, projectID, user.ID, role); err != nil {
			return err
		}
		m, err := u.q.GetMembership(ctx, projectID, user.ID)
		if err != nil {
			return err
		}
		added = models.Member{Membership: m, Email: user.Email, FirstName: user.FirstName, LastName: user.LastName}

		if err := s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: projectID, TargetType: models.TargetUser,
			TargetID: user.ID, Action: models.ActionAdded,
			Details: map[string]string{"email": user.Email, "role": role.String()},
		}); err != nil {
			return err
		}
		s.notify(u, notify.Event{
			Kind:      models.NotifyMemberAdded,
			ActorID:   actorID,
			ProjectID: projectID,
			Audience:  notify.Users,
			UserIDs:   []int64{user.ID},
			Subject:   "You were added to " + p.Name,
			Headline:  "You now have access to " + p.Name + " as " + role.String() + ".",
			Path:      projectPath(projectID),
		})
		return nil
	})
	return added, err
}

func (s *ProjectService) ChangeMemberRole(ctx context.Context, actorID, projectID, userID int64, roleName string) error {
	role, ok := authz.ParseRole(roleName)
	if !ok {
		return validationError("unknown role %q", roleName)
	}

	return s.run(ctx, func(u *unit) error {
		if _, err := s.project(ctx, u.q, projectID); err != nil {
			return err
		}
		actor, err := s.role(ctx, u.q, projectID, actorID)
		if err != nil {
			return err
		}
		target, err := u.q.GetMembership(ctx, projectID, userID)
		if errors.Is(err, database.ErrNotFound) {
			return notFound("member")
		}
		if err != nil {
			return err
		}
		owners, err := u.q.CountOwners(ctx, projectID)
		if err != nil {
			return err
		}
		if err := authz.CheckRoleChange(actor.Role, target.Role, role, owners); err != nil {
			return err
		}
		if target.Role == role {
			return nil
		}
		if err := u.q.UpdateMemberRole(ctx, projectID, userID, role); err != nil {
			return err
		}
		return s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: projectID, TargetType: models.TargetUser,
			TargetID: userID, Action: models.ActionRoleChanged,
			Details: activity.Diff{"role": {From: target.Role.String(), To: role.String()}},
		})
	})
}

// RemoveMember revokes a membership. Members may remove themselves; the
// last Owner may not be removed by anyone.
func (s *ProjectService) RemoveMember(ctx context.Context, actorID, projectID, userID int64) error {
	return s.run(ctx, func(u *unit) error {
		if _, err := s.project(ctx, u.q, projectID); err != nil {
			return err
		}
		actor, err := s.role(ctx, u.q, projectID, actorID)
		if err != nil {
			return err
		}
		target, err := u.q.GetMembership(ctx, projectID, userID)
		if errors.Is(err, database.ErrNotFound) {
			return notFound("member")
		}
		if err != nil {
			return err
		}
		owners, err := u.q.CountOwners(ctx, projectID)
		if err != nil {
			return err
		}
		if err := authz.CheckRemoval(actorID, actor.Role, userID, target.Role, owners); err != nil {
			return err
		}
		if err := u.q.RemoveMember(ctx, projectID, userID); err != nil {
			return err
		}
		return s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: projectID, TargetType: models.TargetUser,
			TargetID: userID, Action: models.ActionRemoved,
			Details: map[string]string{"role": target.Role.String()},
		})
	})
}

// UpdatePreferences replaces the actor's own notification settings for the
// project.
func (s *ProjectService) UpdatePreferences(ctx context.Context, actorID, projectID int64, prefs models.NotificationPreferences) (models.NotificationPreferences, error) {
	err := s.run(ctx, func(u *unit) error {
		if _, err := s.role(ctx, u.q, projectID, actorID); err != nil {
			return err
		}
		return u.q.UpdateMemberPreferences(ctx, projectID, actorID, prefs)
	})
	return prefs, err
}
