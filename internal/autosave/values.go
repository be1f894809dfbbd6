package autosave

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/alexanderramin/draftboard/internal/domain"
)

// Values are the editable fields of a note.
type Values struct {
	Title     string
	Content   string
	Tags      []string
	ProjectID string
	Metadata  domain.NoteMetadata
	Features  []domain.GeneratedItem
	Tasks     []domain.GeneratedItem
	Canvases  canvas.Collection
}

func valuesFromNote(n *domain.Note, canvases canvas.Collection) Values {
	return Values{
		Title:     n.Title,
		Content:   n.Content,
		Tags:      domain.NormalizeTags(n.Tags),
		ProjectID: domain.StrFromPtr(n.ProjectID),
		Metadata:  cloneMetadata(n.Metadata),
		Features:  slices.Clone(n.GeneratedFeatures),
		Tasks:     slices.Clone(n.GeneratedTasks),
		Canvases:  canvases.Clone(),
	}
}

// Clone copies v so the copy shares no slices or maps with it.
func (v Values) Clone() Values {
	out := v
	out.Tags = slices.Clone(v.Tags)
	out.Metadata = cloneMetadata(v.Metadata)
	out.Features = slices.Clone(v.Features)
	out.Tasks = slices.Clone(v.Tasks)
	out.Canvases = v.Canvases.Clone()
	return out
}

// only returns a Values carrying just field f, for handing to the debouncer.
func (v Values) only(f Field) Values {
	var out Values
	out.copyField(f, v)
	return out
}

func (v *Values) copyField(f Field, from Values) {
	switch f {
	case FieldTitle:
		v.Title = from.Title
	case FieldContent:
		v.Content = from.Content
	case FieldTags:
		v.Tags = slices.Clone(from.Tags)
	case FieldProject:
		v.ProjectID = from.ProjectID
	case FieldMetadata:
		v.Metadata = cloneMetadata(from.Metadata)
	case FieldFeatures:
		v.Features = slices.Clone(from.Features)
	case FieldTasks:
		v.Tasks = slices.Clone(from.Tasks)
	case FieldCanvases:
		v.Canvases = from.Canvases.Clone()
	}
}

// Canonical returns the comparable form of field f, or "" when f cannot
// be encoded. Composite fields use a stable serialization: tags are a
// sorted set and map keys are sorted by encoding/json.
func (v Values) Canonical(f Field) string {
	c, _ := v.canonical(f)
	return c
}

func (v Values) canonical(f Field) (string, error) {
	switch f {
	case FieldTitle:
		return v.Title, nil
	case FieldContent:
		return v.Content, nil
	case FieldTags:
		return toJSON(domain.NormalizeTags(v.Tags))
	case FieldProject:
		return v.ProjectID, nil
	case FieldMetadata:
		m := cloneMetadata(v.Metadata)
		if m.Stakeholders == nil {
			m.Stakeholders = []string{}
		}
		return toJSON(m)
	case FieldFeatures:
		return toJSON(nonNil(v.Features))
	case FieldTasks:
		return toJSON(nonNil(v.Tasks))
	case FieldCanvases:
		return canvas.Encode(v.Canvases)
	}
	return "", fmt.Errorf("unknown field %d", f)
}

// patch builds the partial update for fields, taking each value from v.
// Canonical forms already computed by the detector are reused.
func (v Values) patch(fields []Field, canon map[Field]string) domain.NotePatch {
	var p domain.NotePatch
	for _, f := range fields {
		switch f {
		case FieldTitle:
			p.Title = ptr(v.Title)
		case FieldContent:
			p.Content = ptr(v.Content)
		case FieldTags:
			p.Tags = ptr(domain.NormalizeTags(v.Tags))
		case FieldProject:
			p.ProjectID = ptr(v.ProjectID)
		case FieldMetadata:
			p.Metadata = ptr(cloneMetadata(v.Metadata))
		case FieldFeatures:
			p.GeneratedFeatures = ptr(nonNil(slices.Clone(v.Features)))
		case FieldTasks:
			p.GeneratedTasks = ptr(nonNil(slices.Clone(v.Tasks)))
		case FieldCanvases:
			p.CanvasData = ptr(canon[FieldCanvases])
		}
	}
	return p
}

func cloneMetadata(m domain.NoteMetadata) domain.NoteMetadata {
	m.Stakeholders = slices.Clone(m.Stakeholders)
	if m.DueDate != nil {
		d := *m.DueDate
		m.DueDate = &d
	}
	return m
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func ptr[T any](v T) *T {
	return &v
}

func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
