package support

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
	"bilingual-lms/pkg/testutil"
)

func TestTicketLifecycle(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log())
	ctx := context.Background()
	user := testutil.Student(t, db)

	tk := &models.Ticket{UserID: user.ID, Title: "Video does not load", Message: "Lesson 3 video stays black"}
	out, err := svc.Open(ctx, tk)
	require.NoError(t, err)
	assert.Equal(t, store.Created, out)
	assert.Equal(t, models.TicketOpen, tk.Status)

	started, err := svc.Start(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketInProgress, started.Status)

	_, err = svc.Start(ctx, tk.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resolved, err := svc.Resolve(ctx, tk.ID, "  Fixed the encoding  ")
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, resolved.Status)
	require.NotNil(t, resolved.AdminReply)
	assert.Equal(t, "Fixed the encoding", *resolved.AdminReply)
	assert.NotNil(t, resolved.ResolvedAt)

	_, err = svc.Resolve(ctx, tk.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Start(ctx, tk.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResolveFromOpen(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log())
	ctx := context.Background()
	user := testutil.Student(t, db)

	tk := &models.Ticket{UserID: user.ID, Title: "Invoice", Message: "Need an invoice"}
	_, err := svc.Open(ctx, tk)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, tk.ID, " ")
	assert.ErrorIs(t, err, ErrEmptyReply)
	res, err := svc.Resolve(ctx, tk.ID, "Sent by email")
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, res.Status)

	_, err = svc.Start(ctx, 999)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestOpenRules(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(db, testutil.Log())
	ctx := context.Background()
	user := testutil.Student(t, db)

	_, err := svc.Open(ctx, &models.Ticket{UserID: user.ID, Title: "x", Message: "y", Status: models.TicketResolved})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Open(ctx, &models.Ticket{UserID: user.ID, Title: "", Message: "y"})
	assert.ErrorIs(t, err, models.ErrValidation)

	key := "import-1"
	out, err := svc.Open(ctx, &models.Ticket{UserID: user.ID, Title: "Imported", Message: "m", ExternalKey: &key})
	require.NoError(t, err)
	assert.Equal(t, store.Created, out)
	out, err = svc.Open(ctx, &models.Ticket{UserID: user.ID, Title: "Imported", Message: "m", ExternalKey: &key})
	require.NoError(t, err)
	assert.Equal(t, store.AlreadyExists, out)

	open, err := svc.ByStatus(ctx, models.TicketOpen)
	require.NoError(t, err)
	assert.Len(t, open, 1)
	mine, err := svc.ByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
