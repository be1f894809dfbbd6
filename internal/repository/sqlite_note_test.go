package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)
	ctx := context.Background()

	due := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	feature := testutil.NewTestItem("Bulk export")
	feature.Selected = true
	note := testutil.NewTestNote("Checkout PRD",
		testutil.WithContent(`{"type":"doc","content":[]}`),
		testutil.WithTags("payments", "q3", "payments"),
		testutil.WithPriority(domain.PriorityHigh),
		testutil.WithGeneratedFeatures(feature),
		testutil.WithCanvasData(`[]`),
	)
	note.Metadata.DueDate = &due
	note.Metadata.TargetRelease = "v2.4"
	note.Metadata.Stakeholders = []string{"design", "eng"}
	require.NoError(t, repo.Create(ctx, note))

	fetched, err := repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Checkout PRD", fetched.Title)
	assert.Equal(t, `{"type":"doc","content":[]}`, fetched.Content)
	assert.Equal(t, []string{"payments", "q3"}, fetched.Tags)
	assert.Nil(t, fetched.ProjectID)
	assert.Equal(t, domain.NoteDraft, fetched.Metadata.Status)
	assert.Equal(t, domain.PriorityHigh, fetched.Metadata.Priority)
	assert.Equal(t, "v2.4", fetched.Metadata.TargetRelease)
	require.NotNil(t, fetched.Metadata.DueDate)
	assert.True(t, due.Equal(*fetched.Metadata.DueDate))
	assert.Equal(t, []string{"design", "eng"}, fetched.Metadata.Stakeholders)
	require.Len(t, fetched.GeneratedFeatures, 1)
	assert.Equal(t, feature, fetched.GeneratedFeatures[0])
	assert.Empty(t, fetched.GeneratedTasks)
	assert.NotNil(t, fetched.GeneratedTasks)
	assert.Equal(t, `[]`, fetched.CanvasData)
}

func TestNoteRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoteRepo_List_Filters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)
	projects := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("Platform")
	require.NoError(t, projects.Create(ctx, proj))

	base := time.Now().UTC().Truncate(time.Second)
	a := testutil.NewTestNote("A", testutil.WithProject(proj.ID), testutil.WithTags("infra"),
		testutil.WithUpdatedAt(base.Add(-2*time.Hour)))
	b := testutil.NewTestNote("B", testutil.WithTags("infra", "ux"),
		testutil.WithNoteStatus(domain.NoteApproved), testutil.WithUpdatedAt(base.Add(-time.Hour)))
	c := testutil.NewTestNote("C", testutil.WithUpdatedAt(base))
	for _, n := range []*domain.Note{a, b, c} {
		require.NoError(t, repo.Create(ctx, n))
	}

	all, err := repo.List(ctx, NoteFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"C", "B", "A"}, titles(all), "most recently updated first")

	byProject, err := repo.List(ctx, NoteFilter{ProjectID: proj.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, titles(byProject))

	byTag, err := repo.List(ctx, NoteFilter{Tag: "infra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(byTag))

	byStatus, err := repo.List(ctx, NoteFilter{Status: domain.NoteApproved})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, titles(byStatus))

	limited, err := repo.List(ctx, NoteFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, titles(limited))

	byPrefix, err := repo.List(ctx, NoteFilter{IDPrefix: b.ID[:8]})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, titles(byPrefix))

	wildcard, err := repo.List(ctx, NoteFilter{IDPrefix: "%"})
	require.NoError(t, err)
	assert.Empty(t, wildcard, "LIKE wildcards are matched literally")
}

func TestNoteRepo_ApplyPatch_OnlyTouchesSetFields(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)
	ctx := context.Background()

	note := testutil.NewTestNote("Original", testutil.WithContent("body"), testutil.WithTags("keep"))
	require.NoError(t, repo.Create(ctx, note))

	title := "Renamed"
	tags := []string{"b", "a", "b"}
	require.NoError(t, repo.ApplyPatch(ctx, note.ID, domain.NotePatch{Title: &title, Tags: &tags}))

	fetched, err := repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fetched.Title)
	assert.Equal(t, []string{"a", "b"}, fetched.Tags)
	assert.Equal(t, "body", fetched.Content)
	assert.False(t, fetched.UpdatedAt.Before(note.UpdatedAt))
}

func TestNoteRepo_ApplyPatch_MetadataItemsAndCanvas(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)
	ctx := context.Background()

	note := testutil.NewTestNote("Note")
	require.NoError(t, repo.Create(ctx, note))

	meta := domain.NoteMetadata{
		Status:       domain.NoteInReview,
		Priority:     domain.PriorityCritical,
		Stakeholders: []string{"legal"},
	}
	tasks := []domain.GeneratedItem{testutil.NewTestItem("Write migration")}
	canvas := `[{"id":"c1","name":"Flow"}]`
	require.NoError(t, repo.ApplyPatch(ctx, note.ID, domain.NotePatch{
		Metadata:       &meta,
		GeneratedTasks: &tasks,
		CanvasData:     &canvas,
	}))

	fetched, err := repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NoteInReview, fetched.Metadata.Status)
	assert.Equal(t, domain.PriorityCritical, fetched.Metadata.Priority)
	assert.Equal(t, []string{"legal"}, fetched.Metadata.Stakeholders)
	assert.Equal(t, tasks, fetched.GeneratedTasks)
	assert.Equal(t, canvas, fetched.CanvasData)
}

func TestNoteRepo_ApplyPatch_LinkAndUnlinkProject(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)
	projects := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	proj := testutil.NewTestProject("Growth")
	require.NoError(t, projects.Create(ctx, proj))
	note := testutil.NewTestNote("Note")
	require.NoError(t, repo.Create(ctx, note))

	pid := proj.ID
	require.NoError(t, repo.ApplyPatch(ctx, note.ID, domain.NotePatch{ProjectID: &pid}))
	fetched, err := repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.ProjectID)
	assert.Equal(t, proj.ID, *fetched.ProjectID)

	empty := ""
	require.NoError(t, repo.ApplyPatch(ctx, note.ID, domain.NotePatch{ProjectID: &empty}))
	fetched, err = repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.ProjectID)
}

func TestNoteRepo_ApplyPatch_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)

	title := "x"
	err := repo.ApplyPatch(context.Background(), "missing", domain.NotePatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoteRepo_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)
	ctx := context.Background()

	note := testutil.NewTestNote("Gone")
	require.NoError(t, repo.Create(ctx, note))
	require.NoError(t, repo.Delete(ctx, note.ID))

	_, err := repo.GetByID(ctx, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, note.ID), ErrNotFound)
}

func titles(notes []*domain.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}
