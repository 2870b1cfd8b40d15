package services_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/activity"
	"tickbug-backend/internal/auth"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/config"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/database/databasetest"
	"tickbug-backend/internal/mailer"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/notify"
	"tickbug-backend/internal/services"
	"tickbug-backend/internal/storage"
)

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

// count returns how many messages went to addr with a subject starting
// with prefix.
func (o *outbox) count(addr, prefix string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, m := range o.sent {
		if m.To == addr && strings.HasPrefix(m.Subject, prefix) {
			n++
		}
	}
	return n
}

// logBuffer collects service log output for assertions.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *logBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *logBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

type env struct {
	db   *database.DB
	svc  *services.Services
	mail *outbox
	logs *logBuffer
	dir  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := databasetest.Open(t)
	logs := &logBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))

	cfg := &config.Config{
		BaseURL:              "http://tickbug.test",
		JWTSecret:            "test-secret",
		TokenTTL:             time.Hour,
		PasswordResetTTL:     time.Hour,
		ActivityLogEnabled:   true,
		NotificationsEnabled: true,
		UploadDir:            t.TempDir(),
		MaxUploadBytes:       1 << 20,
	}
	store, err := storage.NewLocalStore(cfg.UploadDir)
	require.NoError(t, err)

	mail := &outbox{}
	svc := services.New(services.Deps{
		DB:       db,
		Config:   cfg,
		Activity: activity.NewRecorder(true),
		Notifier: notify.New(db, mail, cfg.BaseURL, true, logger),
		Files:    store,
		Tokens:   auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Logger:   logger,
	})
	return &env{db: db, svc: svc, mail: mail, logs: logs, dir: cfg.UploadDir}
}

func (e *env) user(t *testing.T, email string) models.User {
	t.Helper()
	u, err := e.db.Queries().CreateUser(context.Background(), email, "hash", strings.Split(email, "@")[0], "Test")
	require.NoError(t, err)
	return u
}

// join adds a member without going through the service, so no activity
// entry or notification is produced.
func (e *env) join(t *testing.T, projectID, userID int64, role authz.Role) {
	t.Helper()
	require.NoError(t, e.db.Queries().AddMember(context.Background(), projectID, userID, role))
}

func (e *env) project(t *testing.T, owner models.User, name string) models.Project {
	t.Helper()
	p, err := e.svc.Projects.Create(context.Background(), owner.ID, models.ProjectRequest{Name: name})
	require.NoError(t, err)
	return p
}

func (e *env) deliverable(t *testing.T, actor models.User, projectID int64, name string) models.Deliverable {
	t.Helper()
	d, err := e.svc.Deliverables.Create(context.Background(), actor.ID, projectID, models.DeliverableRequest{Name: name})
	require.NoError(t, err)
	return d
}

func (e *env) ticket(t *testing.T, actor models.User, deliverableID int64, title string) models.Ticket {
	t.Helper()
	tk, err := e.svc.Tickets.Create(context.Background(), actor.ID, deliverableID, models.TicketRequest{Title: &title})
	require.NoError(t, err)
	return tk
}

func ptr[T any](v T) *T {
	return &v
}

func kindOf(err error) services.Kind {
	return services.KindOf(err)
}
