package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/services"
)

func TestCommentOwnership(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	dev := e.user(t, "dev@example.com")
	designer := e.user(t, "designer@example.com")
	p := e.project(t, owner, "Talk")
	e.join(t, p.ID, dev.ID, authz.RoleDeveloper)
	e.join(t, p.ID, designer.ID, authz.RoleDesigner)
	d := e.deliverable(t, owner, p.ID, "One")
	tk := e.ticket(t, owner, d.ID, "Discuss")

	_, err := e.svc.Comments.Add(ctx, dev.ID, tk.ID, models.CommentRequest{})
	assert.Equal(t, services.KindValidation, kindOf(err))

	c, err := e.svc.Comments.Add(ctx, dev.ID, tk.ID, models.CommentRequest{Description: "first"})
	require.NoError(t, err)
	assert.Equal(t, 1, e.mail.count(owner.Email, "New comment on Discuss"))

	// Not even an Owner may edit someone else's words.
	_, err = e.svc.Comments.Edit(ctx, owner.ID, c.ID, models.CommentRequest{Description: "rewritten"})
	assert.Equal(t, services.KindPermission, kindOf(err))

	edited, err := e.svc.Comments.Edit(ctx, dev.ID, c.ID, models.CommentRequest{Description: "first, edited"})
	require.NoError(t, err)
	assert.Equal(t, "first, edited", edited.Description)

	err = e.svc.Comments.Delete(ctx, designer.ID, c.ID)
	assert.Equal(t, services.KindPermission, kindOf(err))
	require.NoError(t, e.svc.Comments.Delete(ctx, owner.ID, c.ID))

	comments, err := e.svc.Comments.List(ctx, owner.ID, tk.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestDeleteDeliverableKeepsSiblings(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.user(t, "owner@example.com")
	p := e.project(t, owner, "Siblings")
	gone := e.deliverable(t, owner, p.ID, "Gone")
	kept := e.deliverable(t, owner, p.ID, "Kept")
	e.ticket(t, owner, gone.ID, "bye")
	e.ticket(t, owner, kept.ID, "stay")

	require.NoError(t, e.svc.Deliverables.Delete(ctx, owner.ID, gone.ID))

	list, err := e.svc.Deliverables.List(ctx, owner.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)
	require.Len(t, list[0].Tickets, 1)
	assert.Equal(t, "stay", list[0].Tickets[0].Title)

	entries, err := e.svc.Projects.Activity(ctx, owner.ID, p.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionDeleted, entries[0].Action)
	assert.Equal(t, models.TargetDeliverable, entries[0].TargetType)
}
