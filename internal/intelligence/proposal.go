package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/google/uuid"
)

// proposedItem is one entry of the JSON list the LLM returns.
type proposedItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// proposalResponse is the JSON object both draft tasks must produce.
type proposalResponse struct {
	Items []proposedItem `json:"items"`
}

func validateProposal(r proposalResponse) error {
	for i, it := range r.Items {
		if strings.TrimSpace(it.Title) == "" {
			return fmt.Errorf("items[%d]: title is required", i)
		}
	}
	return nil
}

// toGeneratedItems converts a validated proposal into unselected items.
// Unknown priorities are dropped rather than failing the whole proposal.
func toGeneratedItems(r proposalResponse, limit int) []domain.GeneratedItem {
	out := make([]domain.GeneratedItem, 0, len(r.Items))
	for _, it := range r.Items {
		if limit > 0 && len(out) == limit {
			break
		}
		prio := domain.Priority(strings.ToLower(strings.TrimSpace(it.Priority)))
		if !prio.Valid() {
			prio = domain.PriorityNone
		}
		out = append(out, domain.GeneratedItem{
			ID:          uuid.New().String(),
			Title:       strings.TrimSpace(it.Title),
			Description: strings.TrimSpace(it.Description),
			Priority:    prio,
		})
	}
	return out
}

// MergeGenerated folds proposed into existing. Items are matched by
// case-insensitive title: a match keeps its id and its selection and added
// flags and takes the new description and priority. Unmatched proposals are
// appended. Existing items that were not proposed again are kept, so user
// decisions are never lost.
func MergeGenerated(existing, proposed []domain.GeneratedItem) []domain.GeneratedItem {
	out := make([]domain.GeneratedItem, len(existing), len(existing)+len(proposed))
	copy(out, existing)

	index := make(map[string]int, len(existing))
	for i, it := range existing {
		index[titleKey(it.Title)] = i
	}
	for _, p := range proposed {
		key := titleKey(p.Title)
		if i, ok := index[key]; ok {
			if p.Description != "" {
				out[i].Description = p.Description
			}
			if p.Priority != "" {
				out[i].Priority = p.Priority
			}
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	return out
}

func titleKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
