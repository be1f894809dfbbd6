package autosave

import (
	"math"
	"testing"

	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues_CanonicalTagsAreASet(t *testing.T) {
	a := Values{Tags: []string{"b", "a", "a"}}
	b := Values{Tags: []string{"a", "b"}}
	assert.Equal(t, a.Canonical(FieldTags), b.Canonical(FieldTags))
	assert.Equal(t, `["a","b"]`, a.Canonical(FieldTags))
}

func TestValues_CanonicalNilAndEmptyAgree(t *testing.T) {
	var a Values
	b := Values{
		Tags:     []string{},
		Features: []domain.GeneratedItem{},
		Tasks:    []domain.GeneratedItem{},
		Metadata: domain.NoteMetadata{Stakeholders: []string{}},
	}
	for _, f := range AllFields {
		assert.Equal(t, a.Canonical(f), b.Canonical(f), f.String())
	}
}

func TestValues_CloneIsIndependent(t *testing.T) {
	v := Values{Tags: []string{"a"}, Metadata: domain.NoteMetadata{Stakeholders: []string{"x"}}}
	c := v.Clone()
	c.Tags[0] = "changed"
	c.Metadata.Stakeholders[0] = "changed"
	assert.Equal(t, "a", v.Tags[0])
	assert.Equal(t, "x", v.Metadata.Stakeholders[0])
}

func TestSnapshot_Diff(t *testing.T) {
	base := Values{Title: "t", Tags: []string{"a"}}
	snap := NewSnapshot(base)

	fields, _ := snap.Diff(base)
	assert.Empty(t, fields)

	changed := base.Clone()
	changed.Title = "t2"
	changed.ProjectID = "p1"
	fields, canon := snap.Diff(changed)
	assert.Equal(t, []Field{FieldTitle, FieldProject}, fields)
	assert.Equal(t, "t2", canon[FieldTitle])
	assert.Equal(t, "p1", canon[FieldProject])
}

func TestDetector_PassIsOptimistic(t *testing.T) {
	d := NewDetector(NewSnapshot(Values{Title: "old"}), nil)
	v := Values{Title: "new"}

	p := d.Pass("n1", v)
	require.NotNil(t, p)
	assert.Equal(t, []Field{FieldTitle}, p.patch.Fields)
	require.NotNil(t, p.patch.Title)
	assert.Equal(t, "new", *p.patch.Title)
	assert.Nil(t, p.patch.Content, "unchanged fields stay out of the patch")

	assert.Nil(t, d.Pass("n1", v), "same change is not issued twice")
}

func TestDetector_Rollback(t *testing.T) {
	d := NewDetector(NewSnapshot(Values{Title: "old"}), nil)

	failed := d.Pass("n1", Values{Title: "new"})
	require.NotNil(t, failed)
	assert.Equal(t, []Field{FieldTitle}, d.Rollback(failed))
	snap := d.Snapshot()
	assert.Equal(t, "old", snap.Get(FieldTitle))

	// The same values are issued again after the rollback.
	assert.NotNil(t, d.Pass("n1", Values{Title: "new"}))
}

func TestDetector_RollbackSkipsFieldsAdvancedSince(t *testing.T) {
	d := NewDetector(NewSnapshot(Values{Title: "v0"}), nil)

	first := d.Pass("n1", Values{Title: "v1"})
	second := d.Pass("n1", Values{Title: "v2"})
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.Empty(t, d.Rollback(first))
	snap := d.Snapshot()
	assert.Equal(t, "v2", snap.Get(FieldTitle))
}

func TestPatch_CarriesCanonicalCanvasData(t *testing.T) {
	d := NewDetector(NewSnapshot(Values{}), nil)
	v := Values{Canvases: nil, Tags: []string{"z", "a"}}
	v.Canvases = append(v.Canvases, domain.Canvas{ID: "c1", Name: "Flow"})

	p := d.Pass("n1", v)
	require.NotNil(t, p)
	assert.Equal(t, []Field{FieldTags, FieldCanvases}, p.patch.Fields)
	assert.Equal(t, []string{"a", "z"}, *p.patch.Tags)
	require.NotNil(t, p.patch.CanvasData)
	assert.Contains(t, *p.patch.CanvasData, `"id":"c1"`)
	assert.Equal(t, []string{"tags", "canvases"}, p.patch.FieldNames())
}

func TestDetector_SkipsUnencodableCanvases(t *testing.T) {
	stored := canvas.Collection{{ID: "c1", Name: "Flow"}}
	d := NewDetector(NewSnapshot(Values{Title: "old", Canvases: stored}), nil)

	v := Values{Title: "new", Canvases: canvas.Collection{
		{ID: "c1", Name: "Flow"},
		{ID: "c2", Name: "Bad", Data: domain.CanvasData{Elements: []domain.Element{{"x": math.Inf(-1)}}}},
	}}
	p := d.Pass("n1", v)
	require.NotNil(t, p)
	assert.Equal(t, []Field{FieldTitle}, p.patch.Fields)
	assert.Nil(t, p.patch.CanvasData, "an unencodable collection never becomes a blank write")

	snap := d.Snapshot()
	assert.Equal(t, NewSnapshot(Values{Canvases: stored}).Get(FieldCanvases), snap.Get(FieldCanvases))
}
