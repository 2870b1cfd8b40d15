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

type CommentService struct {
	*core
}

func loadComments(ctx context.Context, q *database.Queries, ticketID int64) ([]models.CommentDetail, error) {
	comments, err := q.ListComments(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	out := make([]models.CommentDetail, 0, len(comments))
	for _, c := range comments {
		files, err := q.ListCommentFiles(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if files == nil {
			files = []models.File{}
		}
		out = append(out, models.CommentDetail{Comment: c, Files: files})
	}
	return out, nil
}

func (s *CommentService) List(ctx context.Context, actorID, ticketID int64) ([]models.CommentDetail, error) {
	var out []models.CommentDetail
	err := s.read(ctx, func(q *database.Queries) error {
		t, err := s.ticket(ctx, q, ticketID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, q, t.ProjectID, actorID, authz.ViewProject, 0); err != nil {
			return err
		}
		out, err = loadComments(ctx, q, ticketID)
		return err
	})
	return out, err
}

func normalizeComment(req models.CommentRequest) (string, string, error) {
	description := strings.TrimSpace(req.Description)
	url := strings.TrimSpace(req.URL)
	if description == "" && url == "" {
		return "", "", validationError("comment text or a URL is required")
	}
	return description, url, nil
}

func (s *CommentService) Add(ctx context.Context, actorID, ticketID int64, req models.CommentRequest) (models.Comment, error) {
	description, url, err := normalizeComment(req)
	if err != nil {
		return models.Comment{}, err
	}

	var created models.Comment
	err = s.run(ctx, func(u *unit) error {
		t, err := s.ticket(ctx, u.q, ticketID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, t.ProjectID, actorID, authz.AddComment, 0); err != nil {
			return err
		}
		created, err = u.q.CreateComment(ctx, models.Comment{
			TicketID:    ticketID,
			UserID:      actorID,
			Description: description,
			URL:         url,
		})
		if err != nil {
			return err
		}
		if err := s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: t.ProjectID, TargetType: models.TargetComment,
			TargetID: created.ID, Action: models.ActionCreated,
			Details: map[string]any{"ticket_id": ticketID, "ticket": t.Title},
		}); err != nil {
			return err
		}
		s.notify(u, notify.Event{
			Kind:      models.NotifyCommentAdded,
			ActorID:   actorID,
			ProjectID: t.ProjectID,
			TicketID:  ticketID,
			Audience:  notify.Participants,
			Subject:   "New comment on " + t.Title,
			Headline:  "Someone commented on a ticket you follow.",
			Body:      excerpt(description),
			Path:      ticketPath(ticketID),
		})
		return nil
	})
	return created, err
}

// excerpt shortens comment text for mail bodies.
func excerpt(s string) string {
	const max = 280
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

// Edit rewrites a comment. Only its author may do so.
func (s *CommentService) Edit(ctx context.Context, actorID, commentID int64, req models.CommentRequest) (models.Comment, error) {
	description, url, err := normalizeComment(req)
	if err != nil {
		return models.Comment{}, err
	}

	var updated models.Comment
	err = s.run(ctx, func(u *unit) error {
		c, err := s.comment(ctx, u.q, commentID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, c.ProjectID, actorID, authz.EditComment, c.UserID); err != nil {
			return err
		}
		if err := u.q.UpdateComment(ctx, commentID, description, url); err != nil {
			return err
		}

		diff := activity.Diff{}
		diff.Add("description", c.Description, description)
		diff.Add("url", c.URL, url)
		if !diff.Empty() {
			if err := s.record(ctx, u, activity.Event{
				UserID: actorID, ProjectID: c.ProjectID, TargetType: models.TargetComment,
				TargetID: commentID, Action: models.ActionUpdated, Details: diff,
			}); err != nil {
				return err
			}
		}
		updated, err = u.q.GetComment(ctx, commentID)
		return err
	})
	return updated, err
}

func (s *CommentService) Delete(ctx context.Context, actorID, commentID int64) error {
	return s.run(ctx, func(u *unit) error {
		c, err := s.comment(ctx, u.q, commentID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, u.q, c.ProjectID, actorID, authz.DeleteComment, c.UserID); err != nil {
			return err
		}
		removed, err := u.q.DeleteCommentCascade(ctx, commentID)
		if err != nil {
			return err
		}
		s.unlink(u, removed.Paths)
		return s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: c.ProjectID, TargetType: models.TargetComment,
			TargetID: commentID, Action: models.ActionDeleted,
			Details: map[string]any{"ticket_id": c.TicketID, "files": removed.Files},
		})
	})
}
