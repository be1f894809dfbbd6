package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/draftboard/internal/autosave"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/repository"
	"github.com/alexanderramin/draftboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_Save(t *testing.T) {
	env := setupEnv(t)
	gw := NewGateway(NewNoteService(env.notes, env.projects))
	ctx := context.Background()

	n := testutil.NewTestNote("Old")
	require.NoError(t, env.notes.Create(ctx, n))

	title := "New"
	require.NoError(t, gw.Save(ctx, n.ID, autosave.Patch{
		Fields:    []autosave.Field{autosave.FieldTitle},
		NotePatch: domain.NotePatch{Title: &title},
	}))

	got, err := env.notes.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
}

func TestGateway_TranslatesNotFound(t *testing.T) {
	env := setupEnv(t)
	gw := NewGateway(NewNoteService(env.notes, env.projects))
	ctx := context.Background()

	title := "x"
	err := gw.Save(ctx, "missing", autosave.Patch{NotePatch: domain.NotePatch{Title: &title}})
	assert.ErrorIs(t, err, autosave.ErrNoteNotFound)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = gw.Delete(ctx, "missing")
	assert.ErrorIs(t, err, autosave.ErrNoteNotFound)
}

func TestGateway_ProjectErrorIsRetryable(t *testing.T) {
	env := setupEnv(t)
	gw := NewGateway(NewNoteService(env.notes, env.projects))
	ctx := context.Background()

	n := testutil.NewTestNote("Note")
	require.NoError(t, env.notes.Create(ctx, n))

	missing := "gone"
	err := gw.Save(ctx, n.ID, autosave.Patch{NotePatch: domain.NotePatch{ProjectID: &missing}})
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.NotErrorIs(t, err, autosave.ErrNoteNotFound)
}

func TestGateway_SessionRoundTrip(t *testing.T) {
	env := setupEnv(t)
	gw := NewGateway(NewNoteService(env.notes, env.projects))
	ctx := context.Background()

	n := testutil.NewTestNote("Draft")
	require.NoError(t, env.notes.Create(ctx, n))
	stored, err := env.notes.GetByID(ctx, n.ID)
	require.NoError(t, err)

	// Long delays keep the timers out of the way; Close flushes.
	sess := autosave.NewSession(gw, autosave.Options{Delays: autosave.Delays{
		Text: time.Hour, Structural: time.Hour, Canvas: time.Hour,
	}})
	require.NoError(t, sess.Load(ctx, stored))

	require.NoError(t, sess.SetTitle("Checkout redesign"))
	require.NoError(t, sess.SetTags([]string{"ux", "checkout"}))
	cv, err := sess.AddCanvas("Flow", domain.CanvasData{})
	require.NoError(t, err)
	require.NoError(t, sess.Close(ctx))

	got, err := env.notes.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Checkout redesign", got.Title)
	assert.Equal(t, []string{"checkout", "ux"}, got.Tags)
	assert.Contains(t, got.CanvasData, cv.ID)
	assert.Contains(t, got.CanvasData, "Flow")
}

func TestGateway_SessionDelete(t *testing.T) {
	env := setupEnv(t)
	gw := NewGateway(NewNoteService(env.notes, env.projects))
	ctx := context.Background()

	n := testutil.NewTestNote("Doomed")
	require.NoError(t, env.notes.Create(ctx, n))

	sess := autosave.NewSession(gw, autosave.Options{})
	require.NoError(t, sess.Load(ctx, n))
	require.NoError(t, sess.SetTitle("edited then dropped"))
	require.NoError(t, sess.Delete(ctx))

	_, err := env.notes.GetByID(ctx, n.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
