package canvas

import (
	"fmt"
	"time"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/richtext"
	"github.com/google/uuid"
)

// DefaultName is the placeholder name of a canvas nobody has named yet.
const DefaultName = "Untitled Canvas"

// FromDiagrams turns the diagram nodes of a content tree into canvases.
// Diagrams without an id are skipped; callers assign ids first.
func FromDiagrams(diagrams []richtext.Diagram, now time.Time) Collection {
	out := make(Collection, 0, len(diagrams))
	for _, d := range diagrams {
		if d.ID == "" {
			continue
		}
		out = append(out, domain.Canvas{
			ID:        d.ID,
			Name:      d.Name,
			Data:      DataFrom(d.Data),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out
}

// Merge folds inline canvases into the sidebar collection. Sidebar-only
// canvases are kept in place; inline canvases update the sidebar entry with
// the same id or are appended. A non-placeholder sidebar name wins over a
// placeholder or empty inline name. updatedAt only moves when an entry
// actually changes, so merging the same inputs twice is a no-op.
func Merge(sidebar, inline Collection, now time.Time) Collection {
	merged := make(Collection, 0, len(sidebar)+len(inline))
	index := make(map[string]int, len(sidebar)+len(inline))
	for _, cv := range sidebar {
		if _, dup := index[cv.ID]; dup {
			continue
		}
		index[cv.ID] = len(merged)
		merged = append(merged, cv)
	}

	for _, in := range inline {
		i, ok := index[in.ID]
		if !ok {
			if in.CreatedAt.IsZero() {
				in.CreatedAt = now
			}
			if in.UpdatedAt.IsZero() {
				in.UpdatedAt = now
			}
			index[in.ID] = len(merged)
			merged = append(merged, in)
			continue
		}

		existing := merged[i]
		name := resolveName(existing.Name, in.Name)
		if name == existing.Name && sameData(existing.Data, in.Data) {
			continue
		}
		existing.Name = name
		existing.Data = in.Data
		existing.UpdatedAt = now
		merged[i] = existing
	}
	return merged
}

func resolveName(existing, inline string) string {
	if existing != "" && existing != DefaultName && (inline == "" || inline == DefaultName) {
		return existing
	}
	return inline
}

func sameData(a, b domain.CanvasData) bool {
	ea, errA := Encode(Collection{{Data: a}})
	eb, errB := Encode(Collection{{Data: b}})
	return errA == nil && errB == nil && ea == eb
}

// Reconciler keeps the authoritative merged collection for one note. It is
// not safe for concurrent use; the owning session serializes access.
type Reconciler struct {
	current Collection
	last    string
	now     func() time.Time
}

// NewReconciler starts from the collection loaded from storage.
func NewReconciler(initial Collection, now func() time.Time) *Reconciler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	r := &Reconciler{now: now}
	r.SetSidebar(initial)
	return r
}

// SetSidebar replaces the known collection.
func (r *Reconciler) SetSidebar(c Collection) {
	r.current = c.Clone()
	r.last, _ = Encode(r.current)
}

// Current returns a copy of the merged collection.
func (r *Reconciler) Current() Collection {
	return r.current.Clone()
}

// Serialized returns the canonical encoding of the merged collection.
func (r *Reconciler) Serialized() string {
	return r.last
}

// Reconcile merges the inline canvases into the known collection. changed
// is false when the result serializes identically to the previous one, in
// which case nothing downstream should happen. A merge that cannot be
// encoded is dropped and the collection stays as it was.
func (r *Reconciler) Reconcile(inline Collection) (Collection, bool) {
	merged := Merge(r.current, inline, r.now())
	enc, err := Encode(merged)
	if err != nil || enc == r.last {
		return r.Current(), false
	}
	r.current = merged
	r.last = enc
	return r.Current(), true
}

// Add appends a sidebar canvas. Missing ids and names are filled in. Data
// that cannot be stored, such as NaN coordinates, is rejected and leaves
// the collection unchanged.
func (r *Reconciler) Add(cv domain.Canvas) (domain.Canvas, error) {
	now := r.now()
	if cv.ID == "" || r.current.Find(cv.ID) >= 0 {
		cv.ID = uuid.NewString()
	}
	if cv.Name == "" {
		cv.Name = DefaultName
	}
	if cv.CreatedAt.IsZero() {
		cv.CreatedAt = now
	}
	cv.UpdatedAt = now
	cv.Data = prepare(cv.Data)
	next := append(r.current[:len(r.current):len(r.current)], cv)
	enc, err := Encode(next)
	if err != nil {
		return domain.Canvas{}, fmt.Errorf("canvas %q: %w", cv.Name, err)
	}
	r.current = next
	r.last = enc
	return cv, nil
}

// Rename sets the name of canvas id.
func (r *Reconciler) Rename(id, name string) bool {
	i := r.current.Find(id)
	if i < 0 {
		return false
	}
	if r.current[i].Name == name {
		return true
	}
	r.current[i].Name = name
	r.current[i].UpdatedAt = r.now()
	r.last, _ = Encode(r.current)
	return true
}

// RemoveFromSidebar drops canvas id from the collection.
func (r *Reconciler) RemoveFromSidebar(id string) bool {
	i := r.current.Find(id)
	if i < 0 {
		return false
	}
	r.current = append(r.current[:i:i], r.current[i+1:]...)
	r.last, _ = Encode(r.current)
	return true
}
