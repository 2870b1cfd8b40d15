package services

import (
	"context"
	"database/sql"
	"strings"

	"tickbug-backend/internal/activity"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/notify"
)

type TicketService struct {
	*core
}

// assigneeValue is the activity-log form of an assignee: the user id, or
// null when unassigned.
func assigneeValue(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullUser(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func (s *TicketService) List(ctx context.Context, actorID, deliverableID int64) ([]models.Ticket, error) {
	var out []models.Ticket
	err := s.read(ctx, func(q *database.Queries) error {
		d, err := s.deliverable(ctx, q, deliverableID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, q, d.ProjectID, actorID, authz.ViewProject, 0); err != nil {
			return err
		}
		out, err = q.ListTickets(ctx, deliverableID)
		return err
	})
	return out, err
}

// Get returns the ticket with its comments and attachments.
func (s *TicketService) Get(ctx context.Context, actorID, ticketID int64) (models.TicketDetail, error) {
	var out models.TicketDetail
	err := s.read(ctx, func(q *database.Queries) error {
		t, err := s.ticket(ctx, q, ticketID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, q, t.ProjectID, actorID, authz.ViewProject, 0); err != nil {
			return err
		}
		comments, err := loadComments(ctx, q, ticketID)
		if err != nil {
			return err
		}
		files, err := q.ListTicketFiles(ctx, ticketID)
		if err != nil {
			return err
		}
		if files == nil {
			files = []models.File{}
		}
		out = models.TicketDetail{Ticket: t, Comments: comments, Files: files}
		return nil
	})
	return out, err
}

func (s *TicketService) Create(ctx context.Context, actorID, deliverableID int64, req models.TicketRequest) (models.Ticket, error) {
	t := models.Ticket{
		DeliverableID: deliverableID,
		Status:        models.StatusNew,
		Priority:      models.PriorityImportant,
		CreatedBy:     actorID,
	}
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if t.Title == "" {
		return models.Ticket{}, validationError("ticket title is required")
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	if req.URL != nil {
		t.URL = strings.TrimSpace(*req.URL)
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if err := validateTicket(t); err != nil {
		return models.Ticket{}, err
	}
	if req.AssignedTo != nil {
		t.AssignedTo = nullUser(*req.AssignedTo)
	}

	var created models.Ticket
	err := s.run(ctx, func(u *unit) error {
		d, err := s.deliverable(ctx, u.q, deliverableID)
		if err != nil {
			return err
		}
		m, err := s.authorize(ctx, u.q, d.ProjectID, actorID, authz.CreateTicket, 0)
		if err != nil {
			return err
		}
		if assignee := t.Assignee(); assignee != 0 {
			if !authz.CanPerform(authz.AssignTicket, m.Role) {
				return permissionDenied()
			}
			if err := s.requireMember(ctx, u.q, d.ProjectID, assignee); err != nil {
				return err
			}
		}

		created, err = u.q.CreateTicket(ctx, t)
		if err != nil {
			return err
		}
		if err := s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: d.ProjectID, TargetType: models.TargetTicket,
			TargetID: created.ID, Action: models.ActionCreated,
			Details: map[string]any{
				"title":       created.Title,
				"deliverable": d.Name,
				"status":      created.Status,
				"priority":    created.Priority,
				"assigned_to": assigneeValue(created.Assignee()),
			},
		}); err != nil {
			return err
		}

		s.notify(u, notify.Event{
			Kind:      models.NotifyTicketCreated,
			ActorID:   actorID,
			ProjectID: d.ProjectID,
			Audience:  notify.Members,
			Subject:   "New ticket: " + created.Title,
			Headline:  "A new " + created.Priority.String() + " ticket was filed in " + d.Name + ".",
			Body:      created.Title,
			Path:      ticketPath(created.ID),
		})
		if assignee := created.Assignee(); assignee != 0 {
			s.notify(u, assignedEvent(actorID, created))
		}
		return nil
	})
	return created, err
}

func validateTicket(t models.Ticket) error {
	if !t.Status.Valid() {
		return validationError("invalid ticket status")
	}
	if !t.Priority.Valid() {
		return validationError("invalid ticket priority")
	}
	return nil
}

func assignedEvent(actorID int64, t models.Ticket) notify.Event {
	return notify.Event{
		Kind:      models.NotifyTicketAssigned,
		ActorID:   actorID,
		ProjectID: t.ProjectID,
		TicketID:  t.ID,
		Audience:  notify.Users,
		UserIDs:   []int64{t.Assignee()},
		Subject:   "Assigned to you: " + t.Title,
		Headline:  "A ticket was assigned to you.",
		Body:      t.Title,
		Path:      ticketPath(t.ID),
	}
}

// statusEvent notifies the creator and the previous and current assignees.
func statusEvent(actorID int64, before, after models.Ticket) notify.Event {
	return notify.Event{
		Kind:      models.NotifyTicketStatusChanged,
		ActorID:   actorID,
		ProjectID: after.ProjectID,
		TicketID:  after.ID,
		Audience:  notify.Users,
		UserIDs:   []int64{after.CreatedBy, before.Assignee(), after.Assignee()},
		Subject:   after.Title + " is now " + after.Status.String(),
		Headline:  "Status changed from " + before.Status.String() + " to " + after.Status.String() + ".",
		Body:      after.Title,
		Path:      ticketPath(after.ID),
	}
}

// Update applies the non-nil fields of req. Only status, priority, title
// and assignment are diffed into the activity log.
func (s *TicketService) Update(ctx context.Context, actorID, ticketID int64, req models.TicketRequest) (models.Ticket, error) {
	var updated models.Ticket
	err := s.run(ctx, func(u *unit) error {
		before, err := s.ticket(ctx, u.q, ticketID)
		if err != nil {
			return err
		}
		m, err := s.authorize(ctx, u.q, before.ProjectID, actorID, authz.EditTicket, before.CreatedBy)
		if err != nil {
			return err
		}

		after := before
		if req.Title != nil {
			after.Title = strings.TrimSpace(*req.Title)
			if after.Title == "" {
				return validationError("ticket title is required")
			}
		}
		if req.Description != nil {
			after.Description = strings.TrimSpace(*req.Description)
		}
		if req.URL != nil {
			after.URL = strings.TrimSpace(*req.URL)
		}
		if req.Status != nil {
			after.Status = *req.Status
		}
		if req.Priority != nil {
			after.Priority = *req.Priority
		}
		if err := validateTicket(after); err != nil {
			return err
		}
		if req.AssignedTo != nil {
			after.AssignedTo = nullUser(*req.AssignedTo)
		}
		reassigned := after.Assignee() != before.Assignee()
		if reassigned {
			if !authz.CanPerform(authz.AssignTicket, m.Role) {
				return permissionDenied()
			}
			if after.Assignee() != 0 {
				if err := s.requireMember(ctx, u.q, after.ProjectID, after.Assignee()); err != nil {
					return err
				}
			}
		}

		if after.Title == before.Title && after.Description == before.Description && after.URL == before.URL &&
			after.Status == before.Status && after.Priority == before.Priority && !reassigned {
			updated = before
			return nil
		}
		if err := u.q.UpdateTicket(ctx, after); err != nil {
			return err
		}

		diff := activity.Diff{}
		diff.Add("title", before.Title, after.Title)
		diff.Add("status", before.Status, after.Status)
		diff.Add("priority", before.Priority, after.Priority)
		diff.Add("assigned_to", assigneeValue(before.Assignee()), assigneeValue(after.Assignee()))
		var details any
		if !diff.Empty() {
			details = diff
		}
		if err := s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: after.ProjectID, TargetType: models.TargetTicket,
			TargetID: ticketID, Action: models.ActionUpdated, Details: details,
		}); err != nil {
			return err
		}

		updated, err = u.q.GetTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		switch {
		case reassigned || after.Status != before.Status:
			if reassigned && updated.Assignee() != 0 {
				s.notify(u, assignedEvent(actorID, updated))
			}
			if after.Status != before.Status {
				s.notify(u, statusEvent(actorID, before, updated))
			}
		default:
			s.notify(u, notify.Event{
				Kind:      models.NotifyTicketUpdated,
				ActorID:   actorID,
				ProjectID: updated.ProjectID,
				TicketID:  updated.ID,
				Audience:  notify.Participants,
				Subject:   "Ticket updated: " + updated.Title,
				Headline:  "A ticket you follow was updated.",
				Body:      updated.Title,
				Path:      ticketPath(updated.ID),
			})
		}
		return nil
	})
	return updated, err
}

// Assign sets or clears the assignee. A zero or nil user id unassigns.
func (s *TicketService) Assign(ctx context.Context, actorID, ticketID int64, userID *int64) (models.Ticket, error) {
	var next int64
	if userID != nil {
		next = *userID
	}

	var updated models.Ticket
	err := s.run(ctx, func(u *unit) error {
		before, err := s.ticket(ctx, u.q, ticketID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, before.ProjectID, actorID, authz.AssignTicket, 0); err != nil {
			return err
		}
		if before.Assignee() == next {
			updated = before
			return nil
		}
		if next != 0 {
			if err := s.requireMember(ctx, u.q, before.ProjectID, next); err != nil {
				return err
			}
		}

		after := before
		after.AssignedTo = nullUser(next)
		if err := u.q.UpdateTicket(ctx, after); err != nil {
			return err
		}
		if err := s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: before.ProjectID, TargetType: models.TargetTicket,
			TargetID: ticketID, Action: models.ActionAssigned,
			Details: activity.Diff{"assigned_to": {From: assigneeValue(before.Assignee()), To: assigneeValue(next)}},
		}); err != nil {
			return err
		}

		updated, err = u.q.GetTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if next != 0 {
			s.notify(u, assignedEvent(actorID, updated))
		}
		return nil
	})
	return updated, err
}

func (s *TicketService) ChangeStatus(ctx context.Context, actorID, ticketID int64, status models.Status) (models.Ticket, error) {
	if !status.Valid() {
		return models.Ticket{}, validationError("invalid ticket status")
	}

	var updated models.Ticket
	err := s.run(ctx, func(u *unit) error {
		before, err := s.ticket(ctx, u.q, ticketID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, before.ProjectID, actorID, authz.ChangeTicketStatus, 0); err != nil {
			return err
		}
		if before.Status == status {
			updated = before
			return nil
		}

		after := before
		after.Status = status
		if err := u.q.UpdateTicket(ctx, after); err != nil {
			return err
		}
		if err := s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: before.ProjectID, TargetType: models.TargetTicket,
			TargetID: ticketID, Action: models.ActionStatusChanged,
			Details: activity.Diff{"status": {From: before.Status, To: status}},
		}); err != nil {
			return err
		}

		updated, err = u.q.GetTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		s.notify(u, statusEvent(actorID, before, updated))
		return nil
	})
	return updated, err
}

// Move re-parents the ticket to another deliverable of the same project,
// appending it after the existing tickets there.
func (s *TicketService) Move(ctx context.Context, actorID, ticketID, deliverableID int64) (models.Ticket, error) {
	var updated models.Ticket
	err := s.run(ctx, func(u *unit) error {
		t, err := s.ticket(ctx, u.q, ticketID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, t.ProjectID, actorID, authz.EditTicket, t.CreatedBy); err != nil {
			return err
		}
		if t.DeliverableID == deliverableID {
			updated = t
			return nil
		}
		from, err := s.deliverable(ctx, u.q, t.DeliverableID)
		if err != nil {
			return err
		}
		to, err := s.deliverable(ctx, u.q, deliverableID)
		if err != nil {
			return err
		}
		if to.ProjectID != t.ProjectID {
			return validationError("tickets can only move within their project")
		}

		if err := u.q.MoveTicket(ctx, ticketID, deliverableID); err != nil {
			return err
		}
		if err := s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: t.ProjectID, TargetType: models.TargetTicket,
			TargetID: ticketID, Action: models.ActionUpdated,
			Details: activity.Diff{"deliverable": {From: from.Name, To: to.Name}},
		}); err != nil {
			return err
		}
		updated, err = u.q.GetTicket(ctx, ticketID)
		return err
	})
	return updated, err
}

// Reorder assigns display_order by position in ids within one deliverable.
// The list is not checked for completeness.
func (s *TicketService) Reorder(ctx context.Context, actorID, deliverableID int64, ids []int64) error {
	return s.run(ctx, func(u *unit) error {
		d, err := s.deliverable(ctx, u.q, deliverableID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, d.ProjectID, actorID, authz.ReorderTickets, 0); err != nil {
			return err
		}
		if err := u.q.ReorderTickets(ctx, deliverableID, ids); err != nil {
			return err
		}
		return s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: d.ProjectID, TargetType: models.TargetDeliverable,
			TargetID: deliverableID, Action: models.ActionReordered,
			Details: map[string][]int64{"tickets": ids},
		})
	})
}

// Delete removes the ticket with its comments and attachments.
func (s *TicketService) Delete(ctx context.Context, actorID, ticketID int64) error {
	return s.run(ctx, func(u *unit) error {
		t, err := s.ticket(ctx, u.q, ticketID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, t.ProjectID, actorID, authz.DeleteTicket, t.CreatedBy); err != nil {
			return err
		}
		removed, err := u.q.DeleteTicketCascade(ctx, ticketID)
		if err != nil {
			return err
		}
		s.unlink(u, removed.Paths)
		return s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: t.ProjectID, TargetType: models.TargetTicket,
			TargetID: ticketID, Action: models.ActionDeleted,
			Details: map[string]any{"title": t.Title, "comments": removed.Comments, "files": removed.Files},
		})
	})
}
