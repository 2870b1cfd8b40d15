package activity_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/activity"
	"tickbug-backend/internal/database/databasetest"
	"tickbug-backend/internal/models"
)

func TestRecordWritesDetails(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	q := db.Queries()

	u, err := q.CreateUser(ctx, "ada@example.com", "hash", "Ada", "L")
	require.NoError(t, err)
	p, err := q.CreateProject(ctx, models.Project{Name: "Launch", ThemeColor: models.DefaultThemeColor, CreatedBy: u.ID})
	require.NoError(t, err)

	diff := activity.Diff{}
	diff.Add("title", "old", "new")
	diff.Add("priority", "Critical", "Critical")

	r := activity.NewRecorder(true)
	require.NoError(t, r.Record(ctx, q, activity.Event{
		UserID: u.ID, ProjectID: p.ID, TargetType: models.TargetTicket, TargetID: 9,
		Action: models.ActionUpdated, Details: diff,
	}))

	entries, err := q.ListActivity(ctx, p.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var got map[string]models.FieldChange
	require.NoError(t, json.Unmarshal(entries[0].Details, &got))
	assert.Equal(t, map[string]models.FieldChange{"title": {From: "old", To: "new"}}, got)
}

func TestDisabledRecorderWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	q := db.Queries()

	u, err := q.CreateUser(ctx, "ada@example.com", "hash", "Ada", "L")
	require.NoError(t, err)
	p, err := q.CreateProject(ctx, models.Project{Name: "Launch", ThemeColor: models.DefaultThemeColor, CreatedBy: u.ID})
	require.NoError(t, err)

	r := activity.NewRecorder(false)
	require.NoError(t, r.Record(ctx, q, activity.Event{UserID: u.ID, ProjectID: p.ID, TargetType: models.TargetProject, TargetID: p.ID, Action: models.ActionCreated}))

	n, err := q.CountActivity(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
