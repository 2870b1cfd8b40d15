// Package services implements the application's operations. Each exported
// method checks permissions, runs its writes in one transaction and hands
// best-effort work to a post-commit effect queue.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tickbug-backend/internal/activity"
	"tickbug-backend/internal/auth"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/config"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/effects"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/notify"
	"tickbug-backend/internal/storage"
)

type Deps struct {
	DB       *database.DB
	Config   *config.Config
	Activity *activity.Recorder
	Notifier *notify.Notifier
	Files    storage.Store
	Tokens   *auth.Issuer
	Logger   *slog.Logger
}

type core struct {
	db       *database.DB
	cfg      *config.Config
	activity *activity.Recorder
	notifier *notify.Notifier
	files    storage.Store
	tokens   *auth.Issuer
	logger   *slog.Logger
	now      func() time.Time
}

type Services struct {
	Users        *UserService
	Projects     *ProjectService
	Deliverables *DeliverableService
	Tickets      *TicketService
	Comments     *CommentService
	Files        *FileService
	Reports      *ReportService
}

func New(d Deps) *Services {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &core{
		db:       d.DB,
		cfg:      d.Config,
		activity: d.Activity,
		notifier: d.Notifier,
		files:    d.Files,
		tokens:   d.Tokens,
		logger:   logger,
		now:      time.Now,
	}
	return &Services{
		Users:        &UserService{c},
		Projects:     &ProjectService{c},
		Deliverables: &DeliverableService{c},
		Tickets:      &TicketService{c},
		Comments:     &CommentService{c},
		Files:        &FileService{c},
		Reports:      &ReportService{c},
	}
}

// unit is the state of one unit of work: the transaction-bound queries and
// the effects to run once it commits.
type unit struct {
	q       *database.Queries
	effects *effects.Queue
}

// run executes fn in a transaction. Effects queued by fn run only after a
// successful commit and are discarded otherwise.
func (c *core) run(ctx context.Context, fn func(u *unit) error) error {
	queue := &effects.Queue{}
	err := c.db.WithTx(ctx, func(q *database.Queries) error {
		return fn(&unit{q: q, effects: queue})
	})
	if err != nil {
		queue.Discard()
		return classify(err)
	}
	queue.Flush(context.WithoutCancel(ctx), c.logger)
	return nil
}

// read runs fn on the pool without a transaction.
func (c *core) read(ctx context.Context, fn func(q *database.Queries) error) error {
	return classify(fn(c.db.Queries()))
}

// role resolves the actor's membership. No row means no access.
func (c *core) role(ctx context.Context, q *database.Queries, projectID, actorID int64) (models.Membership, error) {
	m, err := q.GetMembership(ctx, projectID, actorID)
	if errors.Is(err, database.ErrNotFound) {
		return models.Membership{}, permissionDenied()
	}
	if err != nil {
		return models.Membership{}, err
	}
	return m, nil
}

// authorize resolves the role and checks the action. ownerID is the
// creator of the target for actions with ownership overrides.
func (c *core) authorize(ctx context.Context, q *database.Queries, projectID, actorID int64, action authz.Action, ownerID int64) (models.Membership, error) {
	m, err := c.role(ctx, q, projectID, actorID)
	if err != nil {
		return models.Membership{}, err
	}
	if err := authz.Check(action, m.Role, authz.Subject{ActorID: actorID, OwnerID: ownerID}); err != nil {
		return models.Membership{}, permissionDenied()
	}
	return m, nil
}

func (c *core) record(ctx context.Context, u *unit, e activity.Event) error {
	return c.activity.Record(ctx, u.q, e)
}

func (c *core) notify(u *unit, e notify.Event) {
	c.notifier.Queue(u.effects, e)
}

// unlink schedules removal of stored bytes after commit.
func (c *core) unlink(u *unit, paths []string) {
	for _, p := range paths {
		key := p
		u.effects.Add("unlink:"+key, func(ctx context.Context) error {
			return c.files.Remove(ctx, key)
		})
	}
}

func (c *core) project(ctx context.Context, q *database.Queries, id int64) (models.Project, error) {
	p, err := q.GetProject(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Project{}, notFound("project")
	}
	return p, err
}

func (c *core) deliverable(ctx context.Context, q *database.Queries, id int64) (models.Deliverable, error) {
	d, err := q.GetDeliverable(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Deliverable{}, notFound("deliverable")
	}
	return d, err
}

func (c *core) ticket(ctx context.Context, q *database.Queries, id int64) (models.Ticket, error) {
	t, err := q.GetTicket(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Ticket{}, notFound("ticket")
	}
	return t, err
}

func (c *core) comment(ctx context.Context, q *database.Queries, id int64) (models.Comment, error) {
	cm, err := q.GetComment(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Comment{}, notFound("comment")
	}
	return cm, err
}

// requireMember fails unless userID belongs to the project.
func (c *core) requireMember(ctx context.Context, q *database.Queries, projectID, userID int64) error {
	_, err := q.GetMembership(ctx, projectID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return validationError("assignee must be a member of the project")
	}
	return err
}

func projectPath(id int64) string {
	return fmt.Sprintf("/projects/%d", id)
}

func ticketPath(id int64) string {
	return fmt.Sprintf("/tickets/%d", id)
}
