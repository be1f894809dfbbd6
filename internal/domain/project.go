package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Short ids are 3-6 uppercase letters followed by 2-4 digits: PAY01,
// CORE0234.
var shortIDPattern = regexp.MustCompile(`^[A-Z]{3,6}[0-9]{2,4}$`)

// Project groups notes. A note links to at most one project; deleting the
// project unlinks its notes.
type Project struct {
	ID          string
	ShortID     string
	Name        string
	Description string
	Status      ProjectStatus
	ArchivedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeShortID trims s and upper-cases it, so "pay01 " and "PAY01"
// name the same project.
func NormalizeShortID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Validate checks the fields a new project must carry.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("project name is required")
	}
	switch {
	case p.ShortID == "":
		return errors.New("short ID is required (use --id flag)")
	case !shortIDPattern.MatchString(p.ShortID):
		return fmt.Errorf("short ID %q must be 3-6 uppercase letters followed by 2-4 digits (e.g. PAY01)", p.ShortID)
	}
	if p.Status != "" && !p.Status.Valid() {
		return fmt.Errorf("invalid project status %q", p.Status)
	}
	return nil
}

func (p *Project) IsArchived() bool { return p.Status == ProjectArchived }

// DisplayID prefers the short id and falls back to the first 8 characters
// of the id.
func (p *Project) DisplayID() string {
	if p.ShortID != "" {
		return p.ShortID
	}
	return p.ID[:min(8, len(p.ID))]
}
