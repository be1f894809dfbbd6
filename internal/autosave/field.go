// Package autosave keeps an open note in memory and persists edits in the
// background: per-field debouncing, change detection against the last saved
// snapshot, canvas reconciliation and a final flush when the editor closes.
package autosave

import "time"

// Field identifies one independently debounced part of a note.
type Field int

const (
	FieldTitle Field = iota
	FieldContent
	FieldTags
	FieldProject
	FieldMetadata
	FieldFeatures
	FieldTasks
	FieldCanvases
	numFields
)

// AllFields lists every tracked field in save order.
var AllFields = []Field{
	FieldTitle, FieldContent, FieldTags, FieldProject,
	FieldMetadata, FieldFeatures, FieldTasks, FieldCanvases,
}

var fieldNames = [numFields]string{
	"title", "content", "tags", "project", "metadata", "features", "tasks", "canvases",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Delays are the quiet periods per field class.
type Delays struct {
	// Text covers title and content.
	Text time.Duration
	// Structural covers tags, project, metadata and the generated lists.
	Structural time.Duration
	// Canvas covers the canvas collection.
	Canvas time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		Text:       800 * time.Millisecond,
		Structural: 500 * time.Millisecond,
		Canvas:     1000 * time.Millisecond,
	}
}

// For returns the quiet period for f.
func (d Delays) For(f Field) time.Duration {
	switch f {
	case FieldTitle, FieldContent:
		return d.Text
	case FieldCanvases:
		return d.Canvas
	default:
		return d.Structural
	}
}

func (d Delays) withDefaults() Delays {
	def := DefaultDelays()
	if d.Text <= 0 {
		d.Text = def.Text
	}
	if d.Structural <= 0 {
		d.Structural = def.Structural
	}
	if d.Canvas <= 0 {
		d.Canvas = def.Canvas
	}
	return d
}
