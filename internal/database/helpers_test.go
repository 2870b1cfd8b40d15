package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "tickbug.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func countRows(t *testing.T, db *DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.db.QueryRow(query, args...).Scan(&n))
	return n
}

type fixture struct {
	user        models.User
	project     models.Project
	deliverable models.Deliverable
}

func seedProject(t *testing.T, q *Queries, email string) fixture {
	t.Helper()
	ctx := context.Background()

	u, err := q.CreateUser(ctx, email, "hash", "Ada", "Lovelace")
	require.NoError(t, err)
	p, err := q.CreateProject(ctx, models.Project{Name: "Launch", ThemeColor: models.DefaultThemeColor, CreatedBy: u.ID})
	require.NoError(t, err)
	require.NoError(t, q.AddMember(ctx, p.ID, u.ID, authz.RoleOwner))
	d, err := q.CreateDeliverable(ctx, models.Deliverable{ProjectID: p.ID, Name: "MVP", CreatedBy: u.ID})
	require.NoError(t, err)

	return fixture{user: u, project: p, deliverable: d}
}

func seedTicket(t *testing.T, q *Queries, deliverableID, userID int64, title string) models.Ticket {
	t.Helper()
	tk, err := q.CreateTicket(context.Background(), models.Ticket{
		DeliverableID: deliverableID,
		Title:         title,
		Status:        models.StatusNew,
		Priority:      models.PriorityImportant,
		CreatedBy:     userID,
	})
	require.NoError(t, err)
	return tk
}

// attach creates a file row and links it to a ticket or a comment.
func attach(t *testing.T, q *Queries, userID, ticketID, commentID int64, path string) models.File {
	t.Helper()
	ctx := context.Background()
	f, err := q.CreateFile(ctx, models.File{Filename: "a.txt", Filepath: path, Filesize: 3, MimeType: "text/plain", UploadedBy: userID})
	require.NoError(t, err)
	if ticketID != 0 {
		require.NoError(t, q.LinkTicketFile(ctx, ticketID, f.ID))
	} else {
		require.NoError(t, q.LinkCommentFile(ctx, commentID, f.ID))
	}
	return f
}
