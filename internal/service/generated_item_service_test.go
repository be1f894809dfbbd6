package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItems(t *testing.T, env testEnv) (*domain.Note, []domain.GeneratedItem) {
	t.Helper()
	items := []domain.GeneratedItem{
		testutil.NewTestItem("Saved cards"),
		testutil.NewTestItem("One-click checkout"),
		testutil.NewTestItem("Guest checkout"),
	}
	n := testutil.NewTestNote("Checkout", testutil.WithGeneratedFeatures(items...))
	require.NoError(t, env.notes.Create(context.Background(), n))
	return n, items
}

func TestGeneratedItemService_SetSelected(t *testing.T) {
	env := setupEnv(t)
	svc := NewGeneratedItemService(testutil.NewTestUoW(env.db), env.observer)
	ctx := context.Background()
	n, items := seedItems(t, env)

	got, err := svc.SetSelected(ctx, n.ID, domain.ItemFeature, []string{"1", items[2].ID}, true)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Selected)
	assert.False(t, got[1].Selected)
	assert.True(t, got[2].Selected)

	got, err = svc.SetSelected(ctx, n.ID, domain.ItemFeature, []string{"3"}, false)
	require.NoError(t, err)
	assert.False(t, got[2].Selected)

	stored, err := env.notes.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, stored.GeneratedFeatures[0].Selected)
	assert.Empty(t, stored.GeneratedTasks)

	assert.Equal(t, "select-items", env.observer.last().Name)
}

func TestGeneratedItemService_SetSelected_Errors(t *testing.T) {
	env := setupEnv(t)
	svc := NewGeneratedItemService(testutil.NewTestUoW(env.db))
	ctx := context.Background()
	n, _ := seedItems(t, env)

	_, err := svc.SetSelected(ctx, n.ID, domain.ItemFeature, []string{"1", "9"}, true)
	assert.ErrorContains(t, err, `no generated item "9"`)

	stored, err := env.notes.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, stored.GeneratedFeatures[0].Selected, "a bad ref leaves the list untouched")

	_, err = svc.SetSelected(ctx, n.ID, "epic", []string{"1"}, true)
	assert.ErrorContains(t, err, "invalid item kind")

	_, err = svc.SetSelected(ctx, n.ID, domain.ItemTask, []string{"1"}, true)
	assert.Error(t, err, "the task list is empty")
}

func TestGeneratedItemService_AddSelectedToDestination(t *testing.T) {
	env := setupEnv(t)
	svc := NewGeneratedItemService(testutil.NewTestUoW(env.db))
	ctx := context.Background()
	n, items := seedItems(t, env)

	_, err := svc.SetSelected(ctx, n.ID, domain.ItemFeature, []string{"1", "2"}, true)
	require.NoError(t, err)

	added, err := svc.AddSelectedToDestination(ctx, n.ID, domain.ItemFeature, " roadmap ")
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, items[0].ID, added[0].ID)
	assert.Equal(t, "roadmap", added[0].AddedTo)

	again, err := svc.AddSelectedToDestination(ctx, n.ID, domain.ItemFeature, "backlog")
	require.NoError(t, err)
	assert.Empty(t, again, "items are added once")

	stored, err := env.notes.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, stored.GeneratedFeatures[1].Added)
	assert.Equal(t, "roadmap", stored.GeneratedFeatures[1].AddedTo)
	assert.False(t, stored.GeneratedFeatures[2].Added)

	_, err = svc.AddSelectedToDestination(ctx, n.ID, domain.ItemFeature, "  ")
	assert.ErrorContains(t, err, "destination is required")
}

func TestGeneratedItemService_RollsBackOnWriteFailure(t *testing.T) {
	env := setupEnv(t)
	boom := errors.New("disk full")
	svc := NewGeneratedItemService(&testutil.FailingUoW{DB: env.db, FailOn: 1, Match: "UPDATE notes", Err: boom})
	ctx := context.Background()
	n, _ := seedItems(t, env)

	_, err := svc.SetSelected(ctx, n.ID, domain.ItemFeature, []string{"1"}, true)
	assert.ErrorIs(t, err, boom)

	stored, err := env.notes.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, stored.GeneratedFeatures[0].Selected)
}
