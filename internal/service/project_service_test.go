package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/repository"
	"github.com/alexanderramin/draftboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_CreateAndGet(t *testing.T) {
	env := setupEnv(t)
	svc := NewProjectService(env.projects, env.observer)
	ctx := context.Background()

	p := &domain.Project{Name: "Payments", ShortID: "PAY01"}
	require.NoError(t, svc.Create(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, domain.ProjectActive, p.Status)

	byShort, err := svc.Get(ctx, "PAY01")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byShort.ID)

	byID, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Payments", byID.Name)

	_, err = svc.Get(ctx, "NOPE01")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.Equal(t, []string{"create-project"}, env.observer.names())
}

func TestProjectService_Create_Validation(t *testing.T) {
	env := setupEnv(t)
	svc := NewProjectService(env.projects)
	ctx := context.Background()

	assert.ErrorContains(t, svc.Create(ctx, &domain.Project{ShortID: "PAY01"}), "name is required")
	assert.ErrorContains(t, svc.Create(ctx, &domain.Project{Name: "x"}), "short ID is required")
	assert.ErrorContains(t, svc.Create(ctx, &domain.Project{Name: "x", ShortID: "pay1"}), "must be 3-6 uppercase letters")
}

func TestProjectService_Delete_RequiresArchive(t *testing.T) {
	env := setupEnv(t)
	svc := NewProjectService(env.projects)
	ctx := context.Background()

	p := testutil.NewTestProject("Core")
	require.NoError(t, env.projects.Create(ctx, p))
	n := testutil.NewTestNote("Linked", testutil.WithProject(p.ID))
	require.NoError(t, env.notes.Create(ctx, n))

	assert.ErrorContains(t, svc.Delete(ctx, p.ID, false), "must be archived")

	require.NoError(t, svc.Archive(ctx, p.ID))
	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, svc.Delete(ctx, p.ID, false))

	kept, err := env.notes.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.ProjectID, "notes survive their project unlinked")
}

func TestProjectService_Delete_Force(t *testing.T) {
	env := setupEnv(t)
	svc := NewProjectService(env.projects)
	ctx := context.Background()

	p := testutil.NewTestProject("Core")
	require.NoError(t, env.projects.Create(ctx, p))

	require.NoError(t, svc.Delete(ctx, p.ID, true))
	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all)
}
