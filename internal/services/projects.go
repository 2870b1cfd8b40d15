package services

import (
	"context"
	"log/slog"
	"strings"

	"tickbug-backend/internal/activity"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/models"
)

const maxActivityPage = 200

type ProjectService struct {
	*core
}

func (s *ProjectService) Create(ctx context.Context, actorID int64, req models.ProjectRequest) (models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Project{}, validationError("project name is required")
	}

	var project models.Project
	err := s.run(ctx, func(u *unit) error {
		var err error
		project, err = u.q.CreateProject(ctx, models.Project{
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			ThemeColor:  models.NormalizeThemeColor(req.ThemeColor),
			CreatedBy:   actorID,
		})
		if err != nil {
			return err
		}
		if err := u.q.AddMember(ctx, project.ID, actorID, authz.RoleOwner); err != nil {
			return err
		}
		return s.record(ctx, u, activity.Event{
			UserID:     actorID,
			ProjectID:  project.ID,
			TargetType: models.TargetProject,
			TargetID:   project.ID,
			Action:     models.ActionCreated,
			Details:    map[string]string{"name": project.Name},
		})
	})
	return project, err
}

func (s *ProjectService) List(ctx context.Context, actorID int64, includeArchived bool) ([]models.ProjectListing, error) {
	var out []models.ProjectListing
	err := s.read(ctx, func(q *database.Queries) error {
		var err error
		out, err = q.ListProjectsForUser(ctx, actorID, includeArchived)
		return err
	})
	return out, err
}

// Reorder rewrites the actor's own project ordering. Ids of projects the
// actor does not belong to are ignored.
func (s *ProjectService) Reorder(ctx context.Context, actorID int64, ids []int64) error {
	return s.run(ctx, func(u *unit) error {
		for i, id := range ids {
			if err := u.q.SetMemberDisplayOrder(ctx, actorID, id, i); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns the project with its deliverables and their tickets.
func (s *ProjectService) Get(ctx context.Context, actorID, projectID int64) (models.ProjectDetail, error) {
	var out models.ProjectDetail
	err := s.read(ctx, func(q *database.Queries) error {
		p, err := s.project(ctx, q, projectID)
		if err != nil {
			return err
		}
		m, err := s.authorize(ctx, q, p.ID, actorID, authz.ViewProject, 0)
		if err != nil {
			return err
		}
		deliverables, err := loadDeliverables(ctx, q, p.ID)
		if err != nil {
			return err
		}
		out = models.ProjectDetail{Project: p, Role: m.Role.String(), Deliverables: deliverables}
		return nil
	})
	return out, err
}

func loadDeliverables(ctx context.Context, q *database.Queries, projectID int64) ([]models.DeliverableWithTickets, error) {
	deliverables, err := q.ListDeliverables(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tickets, err := q.ListProjectTickets(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byDeliverable := make(map[int64][]models.Ticket)
	for _, t := range tickets {
		byDeliverable[t.DeliverableID] = append(byDeliverable[t.DeliverableID], t)
	}
	out := make([]models.DeliverableWithTickets, 0, len(deliverables))
	for _, d := range deliverables {
		ts := byDeliverable[d.ID]
		if ts == nil {
			ts = []models.Ticket{}
		}
		out = append(out, models.DeliverableWithTickets{Deliverable: d, Tickets: ts})
	}
	return out, nil
}

func (s *ProjectService) Update(ctx context.Context, actorID, projectID int64, req models.ProjectRequest) (models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Project{}, validationError("project name is required")
	}

	var project models.Project
	err := s.run(ctx, func(u *unit) error {
		before, err := s.project(ctx, u.q, projectID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, projectID, actorID, authz.EditProject, 0); err != nil {
			return err
		}

		color := models.NormalizeThemeColor(req.ThemeColor)
		if strings.TrimSpace(req.ThemeColor) == "" {
			color = before.ThemeColor
		}
		description := strings.TrimSpace(req.Description)
		if err := u.q.UpdateProject(ctx, projectID, name, description, color); err != nil {
			return err
		}

		diff := activity.Diff{}
		diff.Add("name", before.Name, name)
		diff.Add("description", before.Description, description)
		diff.Add("theme_color", before.ThemeColor, color)
		if !diff.Empty() {
			if err := s.record(ctx, u, activity.Event{
				UserID: actorID, ProjectID: projectID, TargetType: models.TargetProject,
				TargetID: projectID, Action: models.ActionUpdated, Details: diff,
			}); err != nil {
				return err
			}
		}
		project, err = u.q.GetProject(ctx, projectID)
		return err
	})
	return project, err
}

func (s *ProjectService) Archive(ctx context.Context, actorID, projectID int64) error {
	return s.setArchived(ctx, actorID, projectID, true)
}

func (s *ProjectService) Unarchive(ctx context.Context, actorID, projectID int64) error {
	return s.setArchived(ctx, actorID, projectID, false)
}

func (s *ProjectService) setArchived(ctx context.Context, actorID, projectID int64, archived bool) error {
	return s.run(ctx, func(u *unit) error {
		p, err := s.project(ctx, u.q, projectID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, projectID, actorID, authz.ArchiveProject, 0); err != nil {
			return err
		}
		if p.Archived == archived {
			return nil
		}
		if err := u.q.SetProjectArchived(ctx, projectID, archived); err != nil {
			return err
		}
		action := models.ActionArchived
		if !archived {
			action = models.ActionUnarchived
		}
		return s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: projectID, TargetType: models.TargetProject,
			TargetID: projectID, Action: action,
		})
	})
}

// Delete removes the project and everything under it, including its
// activity log. Stored files are unlinked after commit.
func (s *ProjectService) Delete(ctx context.Context, actorID, projectID int64) error {
	var removed database.Removed
	err := s.run(ctx, func(u *unit) error {
		if _, err := s.project(ctx, u.q, projectID); err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, projectID, actorID, authz.DeleteProject, 0); err != nil {
			return err
		}
		var err error
		removed, err = u.q.DeleteProjectCascade(ctx, projectID)
		if err != nil {
			return err
		}
		s.unlink(u, removed.Paths)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("project deleted",
		slog.Int64("project_id", projectID),
		slog.Int("deliverables", removed.Deliverables),
		slog.Int("tickets", removed.Tickets),
		slog.Int("files", removed.Files),
	)
	return nil
}

// Activity lists the project log, newest first.
func (s *ProjectService) Activity(ctx context.Context, actorID, projectID int64, limit, offset int) ([]models.ActivityEntry, error) {
	if limit <= 0 || limit > maxActivityPage {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var out []models.ActivityEntry
	err := s.read(ctx, func(q *database.Queries) error {
		if _, err := s.project(ctx, q, projectID); err != nil {
			return err
		}
		if _, err := s.authorize(ctx, q, projectID, actorID, authz.ViewProject, 0); err != nil {
			return err
		}
		var err error
		out, err = q.ListActivity(ctx, projectID, limit, offset)
		return err
	})
	return out, err
}
