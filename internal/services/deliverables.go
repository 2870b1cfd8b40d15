package services

import (
	"context"
	"strings"

	"tickbug-backend/internal/activity"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/notify"
)

type DeliverableService struct {
	*core
}

func (s *DeliverableService) List(ctx context.Context, actorID, projectID int64) ([]models.DeliverableWithTickets, error) {
	var out []models.DeliverableWithTickets
	err := s.read(ctx, func(q *database.Queries) error {
		if _, err := s.project(ctx, q, projectID); err != nil {
			return err
		}
		if _, err := s.authorize(ctx, q, projectID, actorID, authz.ViewProject, 0); err != nil {
			return err
		}
		var err error
		out, err = loadDeliverables(ctx, q, projectID)
		return err
	})
	return out, err
}

func (s *DeliverableService) Create(ctx context.Context, actorID, projectID int64, req models.DeliverableRequest) (models.Deliverable, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Deliverable{}, validationError("deliverable name is required")
	}

	var d models.Deliverable
	err := s.run(ctx, func(u *unit) error {
		if _, err := s.project(ctx, u.q, projectID); err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, projectID, actorID, authz.CreateDeliverable, 0); err != nil {
			return err
		}
		var err error
		d, err = u.q.CreateDeliverable(ctx, models.Deliverable{
			ProjectID:   projectID,
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			CreatedBy:   actorID,
		})
		if err != nil {
			return err
		}
		if err := s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: projectID, TargetType: models.TargetDeliverable,
			TargetID: d.ID, Action: models.ActionCreated,
			Details: map[string]string{"name": d.Name},
		}); err != nil {
			return err
		}
		s.notify(u, notify.Event{
			Kind:      models.NotifyDeliverableCreated,
			ActorID:   actorID,
			ProjectID: projectID,
			Audience:  notify.Members,
			Subject:   "New deliverable: " + d.Name,
			Headline:  "A new deliverable, " + d.Name + ", was added.",
			Body:      d.Description,
			Path:      projectPath(projectID),
		})
		return nil
	})
	return d, err
}

func (s *DeliverableService) Update(ctx context.Context, actorID, deliverableID int64, req models.DeliverableRequest) (models.Deliverable, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Deliverable{}, validationError("deliverable name is required")
	}

	var d models.Deliverable
	err := s.run(ctx, func(u *unit) error {
		before, err := s.deliverable(ctx, u.q, deliverableID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, before.ProjectID, actorID, authz.EditDeliverable, 0); err != nil {
			return err
		}
		description := strings.TrimSpace(req.Description)
		if err := u.q.UpdateDeliverable(ctx, deliverableID, name, description); err != nil {
			return err
		}

		diff := activity.Diff{}
		diff.Add("name", before.Name, name)
		diff.Add("description", before.Description, description)
		if !diff.Empty() {
			if err := s.record(ctx, u, activity.Event{
				UserID: actorID, ProjectID: before.ProjectID, TargetType: models.TargetDeliverable,
				TargetID: deliverableID, Action: models.ActionUpdated, Details: diff,
			}); err != nil {
				return err
			}
		}
		d, err = u.q.GetDeliverable(ctx, deliverableID)
		return err
	})
	return d, err
}

// Delete removes the deliverable with its tickets, comments and files. The
// project and sibling deliverables are untouched.
func (s *DeliverableService) Delete(ctx context.Context, actorID, deliverableID int64) error {
	return s.run(ctx, func(u *unit) error {
		d, err := s.deliverable(ctx, u.q, deliverableID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, d.ProjectID, actorID, authz.DeleteDeliverable, 0); err != nil {
			return err
		}
		removed, err := u.q.DeleteDeliverableCascade(ctx, deliverableID)
		if err != nil {
			return err
		}
		s.unlink(u, removed.Paths)
		return s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: d.ProjectID, TargetType: models.TargetDeliverable,
			TargetID: deliverableID, Action: models.ActionDeleted,
			Details: map[string]any{"name": d.Name, "tickets": removed.Tickets, "files": removed.Files},
		})
	})
}

// Reorder assigns display_order by position in ids. The list is not checked
// against the project's actual deliverables; ids from other projects are
// skipped and omitted siblings keep their order.
func (s *DeliverableService) Reorder(ctx context.Context, actorID, projectID int64, ids []int64) error {
	return s.run(ctx, func(u *unit) error {
		if _, err := s.project(ctx, u.q, projectID); err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, projectID, actorID, authz.ReorderDeliverables, 0); err != nil {
			return err
		}
		if err := u.q.ReorderDeliverables(ctx, projectID, ids); err != nil {
			return err
		}
		return s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: projectID, TargetType: models.TargetProject,
			TargetID: projectID, Action: models.ActionReordered,
			Details: map[string][]int64{"deliverables": ids},
		})
	})
}
