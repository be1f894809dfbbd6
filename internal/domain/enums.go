package domain

import "slices"

type NoteStatus string

const (
	NoteDraft    NoteStatus = "draft"
	NoteInReview NoteStatus = "in_review"
	NoteApproved NoteStatus = "approved"
	NoteArchived NoteStatus = "archived"
)

// NoteStatuses lists the statuses in workflow order.
var NoteStatuses = []NoteStatus{NoteDraft, NoteInReview, NoteApproved, NoteArchived}

func (s NoteStatus) Valid() bool { return slices.Contains(NoteStatuses, s) }

type Priority string

// PriorityNone means the priority is unset.
const (
	PriorityNone     Priority = ""
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var Priorities = []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) Valid() bool { return slices.Contains(Priorities, p) }

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
)

func (s ProjectStatus) Valid() bool { return s == ProjectActive || s == ProjectArchived }

// ItemKind distinguishes the two AI-suggested item lists on a note.
type ItemKind string

const (
	ItemFeature ItemKind = "feature"
	ItemTask    ItemKind = "task"
)

func (k ItemKind) Valid() bool { return k == ItemFeature || k == ItemTask }

// ValidNoteStatuses and ValidPriorities index the accepted strings for
// flag and front matter validation.
var (
	ValidNoteStatuses = stringSet(NoteStatuses)
	ValidPriorities   = stringSet(Priorities)
)

func stringSet[T ~string](vals []T) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[string(v)] = true
	}
	return m
}
