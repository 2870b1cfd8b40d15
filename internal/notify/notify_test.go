package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/database/databasetest"
	"tickbug-backend/internal/effects"
	"tickbug-backend/internal/mailer"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/notify"
)

type recorder struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail map[string]bool
}

func (r *recorder) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recorder) to() []string {
	var out []string
	for _, m := range r.sent {
		out = append(out, m.To)
	}
	return out
}

type world struct {
	db      *database.DB
	project models.Project
	owner   models.User
	dev     models.User
	tester  models.User
	outside models.User
}

func setup(t *testing.T) world {
	t.Helper()
	ctx := context.Background()
	db := databasetest.Open(t)
	q := db.Queries()

	mk := func(email, first string) models.User {
		u, err := q.CreateUser(ctx, email, "hash", first, "Test")
		require.NoError(t, err)
		return u
	}
	w := world{db: db, owner: mk("owner@example.com", "Olive"), dev: mk("dev@example.com", "Dev"), tester: mk("tester@example.com", "Tess"), outside: mk("out@example.com", "Otto")}

	p, err := q.CreateProject(ctx, models.Project{Name: "Launch", ThemeColor: models.DefaultThemeColor, CreatedBy: w.owner.ID})
	require.NoError(t, err)
	w.project = p
	require.NoError(t, q.AddMember(ctx, p.ID, w.owner.ID, authz.RoleOwner))
	require.NoError(t, q.AddMember(ctx, p.ID, w.dev.ID, authz.RoleDeveloper))
	require.NoError(t, q.AddMember(ctx, p.ID, w.tester.ID, authz.RoleTester))
	return w
}

func TestRecipientsExcludeActorAndNonMembers(t *testing.T) {
	w := setup(t)
	n := notify.New(w.db, &recorder{}, "http://localhost", true, nil)

	got, err := n.Recipients(context.Background(), notify.Event{
		Kind:      models.NotifyTicketStatusChanged,
		ActorID:   w.dev.ID,
		ProjectID: w.project.ID,
		Audience:  notify.Users,
		UserIDs:   []int64{w.owner.ID, w.dev.ID, w.outside.ID, w.owner.ID, 0},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, w.owner.ID, got[0].ID)
}

func TestRecipientsRespectPreferences(t *testing.T) {
	ctx := context.Background()
	w := setup(t)

	prefs := models.DefaultNotificationPreferences()
	prefs.TicketCreated = false
	require.NoError(t, w.db.Queries().UpdateMemberPreferences(ctx, w.project.ID, w.tester.ID, prefs))

	n := notify.New(w.db, &recorder{}, "http://localhost", true, nil)
	got, err := n.Recipients(ctx, notify.Event{
		Kind:      models.NotifyTicketCreated,
		ActorID:   w.owner.ID,
		ProjectID: w.project.ID,
		Audience:  notify.Members,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, w.dev.ID, got[0].ID)
}

func TestQueueDeliversAfterFlush(t *testing.T) {
	w := setup(t)
	rec := &recorder{fail: map[string]bool{"owner@example.com": true}}
	n := notify.New(w.db, rec, "https://bugs.example.com/", true, nil)

	var q effects.Queue
	n.Queue(&q, notify.Event{
		Kind:      models.NotifyDeliverableCreated,
		ActorID:   w.tester.ID,
		ProjectID: w.project.ID,
		Audience:  notify.Members,
		Subject:   "New deliverable",
		Headline:  "MVP was added",
		Path:      "/projects/1",
	})
	assert.Empty(t, rec.sent)

	// The failing owner mailbox does not stop delivery to the developer.
	q.Flush(context.Background(), nil)
	assert.Equal(t, []string{"dev@example.com"}, rec.to())
	assert.Contains(t, rec.sent[0].HTML, "https://bugs.example.com/projects/1")
	assert.Contains(t, rec.sent[0].Text, "Launch")
}

func TestDisabledNotifierQueuesNothing(t *testing.T) {
	w := setup(t)
	n := notify.New(w.db, &recorder{}, "", false, nil)

	var q effects.Queue
	n.Queue(&q, notify.Event{Kind: models.NotifyTicketCreated, ProjectID: w.project.ID, Audience: notify.Members})
	assert.Zero(t, q.Len())
}
