package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/draftboard/internal/domain"
)

const dateLayout = "2006-01-02"

// ValidateFrontMatter checks the header fields of a draft. Returns a slice
// of all validation errors found.
func ValidateFrontMatter(fm FrontMatter) []error {
	var errs []error

	if fm.Status != "" && !domain.ValidNoteStatuses[fm.Status] {
		errs = append(errs, fmt.Errorf("status: invalid value %q (expected draft, in_review, approved or archived)", fm.Status))
	}
	if !domain.ValidPriorities[fm.Priority] {
		errs = append(errs, fmt.Errorf("priority: invalid value %q (expected low, medium, high or critical)", fm.Priority))
	}
	if fm.DueDate != "" {
		if _, err := time.Parse(dateLayout, fm.DueDate); err != nil {
			errs = append(errs, fmt.Errorf("due_date: invalid date format %q (expected YYYY-MM-DD)", fm.DueDate))
		}
	}

	return errs
}

// ValidationError bundles every problem found in one draft.
type ValidationError struct {
	Source string
	Errs   []error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%d validation error(s)", len(e.Errs))
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	for _, err := range e.Errs {
		msg += "\n  - " + err.Error()
	}
	return msg
}
