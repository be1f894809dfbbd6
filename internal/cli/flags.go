package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/spf13/pflag"
)

// enumValue is a pflag.Value restricted to a fixed set of strings.
type enumValue struct {
	value   *string
	allowed map[string]bool
	set     bool
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(target *string, allowed map[string]bool) *enumValue {
	return &enumValue{value: target, allowed: allowed}
}

func (e *enumValue) String() string {
	if e.value == nil {
		return ""
	}
	return *e.value
}

func (e *enumValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if !e.allowed[s] {
		return fmt.Errorf("must be one of %s", e.choices())
	}
	*e.value = s
	e.set = true
	return nil
}

func (e *enumValue) Type() string { return "string" }

func (e *enumValue) choices() string {
	out := make([]string, 0, len(e.allowed))
	for k := range e.allowed {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return strings.Join(out, "|")
}

var itemKinds = map[string]bool{string(domain.ItemFeature): true, string(domain.ItemTask): true}

// metadataFlags are the metadata flags shared by note add and note edit.
type metadataFlags struct {
	status, priority *enumValue
	statusVal        string
	priorityVal      string
	release          string
	due              string
	stakeholders     []string
}

func addMetadataFlags(fs *pflag.FlagSet, m *metadataFlags) {
	m.status = newEnumValue(&m.statusVal, domain.ValidNoteStatuses)
	m.priority = newEnumValue(&m.priorityVal, domain.ValidPriorities)
	fs.Var(m.status, "status", "Note status ("+m.status.choices()+")")
	fs.Var(m.priority, "priority", "Priority ("+m.priority.choices()+")")
	fs.StringVar(&m.release, "release", "", "Target release")
	fs.StringVar(&m.due, "due", "", "Due date (YYYY-MM-DD, empty to clear)")
	fs.StringSliceVar(&m.stakeholders, "stakeholder", nil, "Stakeholder (repeatable, replaces the list)")
}

// apply copies the flags the user set onto meta and reports whether any
// were set.
func (m *metadataFlags) apply(fs *pflag.FlagSet, meta *domain.NoteMetadata) (bool, error) {
	changed := false
	if m.status.set {
		meta.Status = domain.NoteStatus(m.statusVal)
		changed = true
	}
	if m.priority.set {
		meta.Priority = domain.Priority(m.priorityVal)
		changed = true
	}
	if fs.Changed("release") {
		meta.TargetRelease = strings.TrimSpace(m.release)
		changed = true
	}
	if fs.Changed("due") {
		meta.DueDate = nil
		if d := strings.TrimSpace(m.due); d != "" {
			t, err := parseDate(d)
			if err != nil {
				return false, err
			}
			meta.DueDate = &t
		}
		changed = true
	}
	if fs.Changed("stakeholder") {
		meta.Stakeholders = trimAll(m.stakeholders)
		changed = true
	}
	return changed, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
