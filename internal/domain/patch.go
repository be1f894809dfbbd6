package domain

// NotePatch is a partial update of a note. Only non-nil fields are
// written; everything else is left unchanged by the store.
//
// ProjectID pointing at the empty string unlinks the note from its project.
type NotePatch struct {
	Title             *string
	Content           *string
	Tags              *[]string
	ProjectID         *string
	Metadata          *NoteMetadata
	GeneratedFeatures *[]GeneratedItem
	GeneratedTasks    *[]GeneratedItem
	CanvasData        *string
}

// IsEmpty reports whether the patch changes nothing.
func (p NotePatch) IsEmpty() bool {
	return len(p.FieldNames()) == 0
}

// FieldNames lists the fields the patch sets, in a fixed order.
func (p NotePatch) FieldNames() []string {
	var names []string
	if p.Title != nil {
		names = append(names, "title")
	}
	if p.Content != nil {
		names = append(names, "content")
	}
	if p.Tags != nil {
		names = append(names, "tags")
	}
	if p.ProjectID != nil {
		names = append(names, "project")
	}
	if p.Metadata != nil {
		names = append(names, "metadata")
	}
	if p.GeneratedFeatures != nil {
		names = append(names, "features")
	}
	if p.GeneratedTasks != nil {
		names = append(names, "tasks")
	}
	if p.CanvasData != nil {
		names = append(names, "canvases")
	}
	return names
}

// ApplyTo copies the set fields onto n.
func (p NotePatch) ApplyTo(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tags != nil {
		n.Tags = NormalizeTags(*p.Tags)
	}
	if p.ProjectID != nil {
		n.ProjectID = StrPtr(*p.ProjectID)
	}
	if p.Metadata != nil {
		n.Metadata = *p.Metadata
	}
	if p.GeneratedFeatures != nil {
		n.GeneratedFeatures = *p.GeneratedFeatures
	}
	if p.GeneratedTasks != nil {
		n.GeneratedTasks = *p.GeneratedTasks
	}
	if p.CanvasData != nil {
		n.CanvasData = *p.CanvasData
	}
}
