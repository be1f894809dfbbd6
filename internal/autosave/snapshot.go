package autosave

import "log/slog"

// Snapshot is the canonical form of every field as last handed to the
// gateway. It is only ever compared against, never shown.
type Snapshot struct {
	canon [numFields]string
}

// NewSnapshot captures v.
func NewSnapshot(v Values) Snapshot {
	var s Snapshot
	for _, f := range AllFields {
		s.canon[f] = v.Canonical(f)
	}
	return s
}

// Get returns the stored canonical form of f.
func (s *Snapshot) Get(f Field) string {
	return s.canon[f]
}

// Set overwrites the stored canonical form of f.
func (s *Snapshot) Set(f Field, canon string) {
	s.canon[f] = canon
}

// Diff lists the fields whose canonical form in v differs from the
// snapshot, in save order, together with those canonical forms. Fields
// that cannot be encoded are left out.
func (s *Snapshot) Diff(v Values) ([]Field, map[Field]string) {
	fields, canon, _ := s.diff(v)
	return fields, canon
}

func (s *Snapshot) diff(v Values) (fields []Field, canon map[Field]string, failed map[Field]error) {
	for _, f := range AllFields {
		c, err := v.canonical(f)
		if err != nil {
			if failed == nil {
				failed = make(map[Field]error)
			}
			failed[f] = err
			continue
		}
		if c == s.canon[f] {
			continue
		}
		if canon == nil {
			canon = make(map[Field]string)
		}
		fields = append(fields, f)
		canon[f] = c
	}
	return fields, canon, failed
}

// pendingSave is one gateway call prepared by the detector.
type pendingSave struct {
	noteID string
	fields []Field
	patch  Patch
	// applied holds the optimistic snapshot values, prev what they replaced.
	applied map[Field]string
	prev    map[Field]string
	ticket  uint64
}

// Detector decides whether settled values warrant a save.
//
// The snapshot is advanced optimistically when a save is issued so that a
// concurrent pass does not issue the same change twice. If the save fails,
// Rollback restores the previous snapshot values so the next pass retries.
type Detector struct {
	snapshot Snapshot
	logger   *slog.Logger
}

// NewDetector starts from initial. logger may be nil.
func NewDetector(initial Snapshot, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Detector{snapshot: initial, logger: logger}
}

// Snapshot returns a copy of the current snapshot.
func (d *Detector) Snapshot() Snapshot {
	return d.snapshot
}

// Pass compares v against the snapshot. It returns nil when nothing
// changed; otherwise the snapshot already reflects v for the changed fields.
// A field that cannot be encoded is never saved: writing a blank in its
// place would erase the stored value.
func (d *Detector) Pass(noteID string, v Values) *pendingSave {
	fields, canon, failed := d.snapshot.diff(v)
	for f, err := range failed {
		d.logger.Warn("skipping unencodable field", "note_id", noteID, "field", f.String(), "error", err)
	}
	if len(fields) == 0 {
		return nil
	}
	prev := make(map[Field]string, len(fields))
	for _, f := range fields {
		prev[f] = d.snapshot.Get(f)
		d.snapshot.Set(f, canon[f])
	}
	return &pendingSave{
		noteID:  noteID,
		fields:  fields,
		patch:   Patch{Fields: fields, NotePatch: v.patch(fields, canon)},
		applied: canon,
		prev:    prev,
	}
}

// Rollback undoes the optimistic update of a failed save. Fields that have
// since been advanced by a newer save are left alone.
func (d *Detector) Rollback(p *pendingSave) []Field {
	var restored []Field
	for _, f := range p.fields {
		if d.snapshot.Get(f) == p.applied[f] {
			d.snapshot.Set(f, p.prev[f])
			restored = append(restored, f)
		}
	}
	return restored
}
