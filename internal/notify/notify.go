// Package notify turns project events into emails for the members who
// want them.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tickbug-backend/internal/database"
	"tickbug-backend/internal/effects"
	"tickbug-backend/internal/mailer"
	"tickbug-backend/internal/models"
)

// Audience selects how the candidate recipients of an event are found.
type Audience int

const (
	// Users notifies exactly Event.UserIDs.
	Users Audience = iota
	// Members notifies everyone in the project.
	Members
	// Participants notifies the ticket's creator, assignee and commenters.
	Participants
)

type Event struct {
	Kind      models.NotificationKind
	ActorID   int64
	ProjectID int64
	TicketID  int64
	Audience  Audience
	UserIDs   []int64

	Subject  string
	Headline string
	Body     string
	// Path is appended to the base URL to build the link in the email.
	Path string
}

type Notifier struct {
	db      *database.DB
	mail    mailer.Transport
	baseURL string
	enabled bool
	logger  *slog.Logger
}

func New(db *database.DB, mail mailer.Transport, baseURL string, enabled bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		db:      db,
		mail:    mail,
		baseURL: strings.TrimRight(baseURL, "/"),
		enabled: enabled,
		logger:  logger,
	}
}

// Queue schedules delivery of e after the surrounding transaction commits.
func (n *Notifier) Queue(q *effects.Queue, e Event) {
	if n == nil || !n.enabled {
		return
	}
	q.Add("notify:"+string(e.Kind), func(ctx context.Context) error {
		return n.Deliver(ctx, e)
	})
}

// Recipients resolves the audience, drops the actor and non-members, and
// applies each member's preferences for this project.
func (n *Notifier) Recipients(ctx context.Context, e Event) ([]models.User, error) {
	q := n.db.Queries()

	var candidates []int64
	switch e.Audience {
	case Users:
		candidates = e.UserIDs
	case Members:
		members, err := q.ListMembers(ctx, e.ProjectID)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			candidates = append(candidates, m.UserID)
		}
	case Participants:
		ids, err := q.TicketParticipants(ctx, e.TicketID)
		if err != nil {
			return nil, err
		}
		candidates = ids
	}

	seen := make(map[int64]bool, len(candidates))
	var ids []int64
	for _, id := range candidates {
		if id == 0 || id == e.ActorID || seen[id] {
			continue
		}
		seen[id] = true

		m, err := q.GetMembership(ctx, e.ProjectID, id)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !m.Preferences.Allows(e.Kind) {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := q.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// Deliver sends e to every recipient. It attempts all of them and returns
// the joined failures.
func (n *Notifier) Deliver(ctx context.Context, e Event) error {
	recipients, err := n.Recipients(ctx, e)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil
	}

	var project string
	if p, err := n.db.Queries().GetProject(ctx, e.ProjectID); err == nil {
		project = p.Name
	}

	var errs []error
	for _, u := range recipients {
		html, text, err := render(view{
			Name:     u.FullName(),
			Project:  project,
			Headline: e.Headline,
			Body:     e.Body,
			Link:     n.link(e.Path),
		})
		if err != nil {
			return fmt.Errorf("render %s: %w", e.Kind, err)
		}
		msg := mailer.Message{To: u.Email, Subject: e.Subject, HTML: html, Text: text}
		if err := n.mail.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("send to user %d: %w", u.ID, err))
			continue
		}
		n.logger.Debug("notification sent", slog.String("kind", string(e.Kind)), slog.Int64("user_id", u.ID))
	}
	return errors.Join(errs...)
}

// QueuePasswordReset schedules the reset email. It ignores member
// preferences and the global notification switch.
func (n *Notifier) QueuePasswordReset(q *effects.Queue, u models.User, token string) {
	q.Add("mail:password_reset", func(ctx context.Context) error {
		html, text, err := render(view{
			Name:     u.FullName(),
			Headline: "A password reset was requested for your account.",
			Body:     "The link below is valid for a limited time. Ignore this email if you did not ask for it.",
			Link:     n.link("/reset-password?token=" + token),
		})
		if err != nil {
			return err
		}
		return n.mail.Send(ctx, mailer.Message{To: u.Email, Subject: "Reset your TickBug password", HTML: html, Text: text})
	})
}

func (n *Notifier) link(path string) string {
	if path == "" {
		return ""
	}
	return n.baseURL + path
}
