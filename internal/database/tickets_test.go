package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/models"
)

func TestCreateTicketDisplayOrder(t *testing.T) {
	db := openTestDB(t)
	q := db.Queries()
	fx := seedProject(t, q, "ada@example.com")

	first := seedTicket(t, q, fx.deliverable.ID, fx.user.ID, "first")
	assert.Equal(t, 0, first.DisplayOrder)
	assert.Equal(t, fx.project.ID, first.ProjectID)

	second := seedTicket(t, q, fx.deliverable.ID, fx.user.ID, "second")
	assert.Equal(t, 1, second.DisplayOrder)

	// Gaps are tolerated: the next ticket goes after the current max.
	_, err := db.db.Exec(`UPDATE tickets SET display_order = 7 WHERE id = $1`, second.ID)
	require.NoError(t, err)

	third := seedTicket(t, q, fx.deliverable.ID, fx.user.ID, "third")
	assert.Equal(t, 8, third.DisplayOrder)
}

func TestReorderTicketsScopedToDeliverable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	q := db.Queries()
	fx := seedProject(t, q, "ada@example.com")

	other, err := q.CreateDeliverable(ctx, models.Deliverable{ProjectID: fx.project.ID, Name: "Later", CreatedBy: fx.user.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, other.DisplayOrder)

	a := seedTicket(t, q, fx.deliverable.ID, fx.user.ID, "a")
	b := seedTicket(t, q, fx.deliverable.ID, fx.user.ID, "b")
	foreign := seedTicket(t, q, other.ID, fx.user.ID, "foreign")

	require.NoError(t, q.ReorderTickets(ctx, fx.deliverable.ID, []int64{b.ID, foreign.ID, a.ID}))

	list, err := q.ListTickets(ctx, fx.deliverable.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	got, err := q.GetTicket(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.DisplayOrder)
}

func TestMoveTicketAppends(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	q := db.Queries()
	fx := seedProject(t, q, "ada@example.com")

	target, err := q.CreateDeliverable(ctx, models.Deliverable{ProjectID: fx.project.ID, Name: "Later", CreatedBy: fx.user.ID})
	require.NoError(t, err)
	seedTicket(t, q, target.ID, fx.user.ID, "existing")
	moving := seedTicket(t, q, fx.deliverable.ID, fx.user.ID, "moving")

	require.NoError(t, q.MoveTicket(ctx, moving.ID, target.ID))

	got, err := q.GetTicket(ctx, moving.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, got.DeliverableID)
	assert.Equal(t, 1, got.DisplayOrder)
}

func TestTicketParticipants(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	q := db.Queries()
	fx := seedProject(t, q, "ada@example.com")

	dev, err := q.CreateUser(ctx, "dev@example.com", "hash", "Dev", "One")
	require.NoError(t, err)
	tk := seedTicket(t, q, fx.deliverable.ID, fx.user.ID, "t")
	tk.AssignedTo = nullInt(dev.ID)
	require.NoError(t, q.UpdateTicket(ctx, tk))

	_, err = q.CreateComment(ctx, models.Comment{TicketID: tk.ID, UserID: dev.ID, Description: "on it"})
	require.NoError(t, err)

	ids, err := q.TicketParticipants(ctx, tk.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{fx.user.ID, dev.ID}, ids)
}

func TestGetTicketNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Queries().GetTicket(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
