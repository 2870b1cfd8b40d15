package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/database/databasetest"
	"tickbug-backend/internal/models"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed, total int
		want             float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{3, 3, 100},
		{1, 8, 12.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompletionRate(tt.completed, tt.total), "%d/%d", tt.completed, tt.total)
	}
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	w, err := ParseWindow("", "", now)
	require.NoError(t, err)
	assert.Equal(t, now, w.To)
	assert.Equal(t, now.Add(-DefaultWindow), w.From)

	w, err = ParseWindow("2026-03-01", "2026-03-02", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), w.To)

	_, err = ParseWindow("2026-03-05", "2026-03-01", now)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = ParseWindow("yesterday", "", now)
	assert.Error(t, err)
}

func TestBuildSummary(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	q := db.Queries()

	u, err := q.CreateUser(ctx, "ada@example.com", "hash", "Ada", "Lovelace")
	require.NoError(t, err)
	p, err := q.CreateProject(ctx, models.Project{Name: "Launch", ThemeColor: models.DefaultThemeColor, CreatedBy: u.ID})
	require.NoError(t, err)
	require.NoError(t, q.AddMember(ctx, p.ID, u.ID, authz.RoleOwner))
	d, err := q.CreateDeliverable(ctx, models.Deliverable{ProjectID: p.ID, Name: "MVP", CreatedBy: u.ID})
	require.NoError(t, err)

	for i, status := range []models.Status{models.StatusComplete, models.StatusNew, models.StatusInProgress} {
		tk, err := q.CreateTicket(ctx, models.Ticket{DeliverableID: d.ID, Title: "t", Status: status, Priority: models.PriorityCritical, CreatedBy: u.ID})
		require.NoError(t, err)
		if i == 0 {
			tk.AssignedTo.Int64, tk.AssignedTo.Valid = u.ID, true
			require.NoError(t, q.UpdateTicket(ctx, tk))
		}
	}

	s, err := BuildSummary(ctx, q, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalTickets)
	assert.Equal(t, 1, s.CompletedTickets)
	assert.Equal(t, 33.3, s.CompletionRate)
	assert.Len(t, s.ByStatus, len(models.Statuses))
	assert.Len(t, s.ByPriority, len(models.Priorities))

	require.Len(t, s.ByDeliverable, 1)
	assert.Equal(t, "MVP", s.ByDeliverable[0].Label)
	assert.Equal(t, 33.3, s.ByDeliverable[0].CompletionRate)

	require.Len(t, s.ByAssignee, 2)
	assert.Equal(t, "Unassigned", s.ByAssignee[0].Label)
	assert.Equal(t, 2, s.ByAssignee[0].Total)
	assert.Equal(t, "Ada Lovelace", s.ByAssignee[1].Label)
	assert.Equal(t, 100.0, s.ByAssignee[1].CompletionRate)
}
