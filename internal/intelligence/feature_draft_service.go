package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/llm"
	"golang.org/x/sync/errgroup"
)

// ProposeOptions tunes a proposal run.
type ProposeOptions struct {
	// ExistingFeatures and ExistingTasks are merged with the proposals.
	ExistingFeatures []domain.GeneratedItem
	ExistingTasks    []domain.GeneratedItem
	// SkipFeatures and SkipTasks disable one of the two calls.
	SkipFeatures bool
	SkipTasks    bool
	// MaxItems caps each proposed list. Zero means no cap.
	MaxItems int
}

// FeatureDraftService proposes product features and engineering tasks
// for a note.
type FeatureDraftService interface {
	// Propose asks the model for features and tasks derived from noteText
	// and returns the existing lists merged with the proposals. A skipped
	// list is returned unchanged.
	Propose(ctx context.Context, noteText string, opts ProposeOptions) (features, tasks []domain.GeneratedItem, err error)
}

type featureDraftService struct {
	client llm.LLMClient
}

// NewFeatureDraftService creates a FeatureDraftService backed by an LLM client.
func NewFeatureDraftService(client llm.LLMClient) FeatureDraftService {
	return &featureDraftService{client: client}
}

func (s *featureDraftService) Propose(ctx context.Context, noteText string, opts ProposeOptions) ([]domain.GeneratedItem, []domain.GeneratedItem, error) {
	if strings.TrimSpace(noteText) == "" {
		return nil, nil, fmt.Errorf("note has no text to draft from")
	}

	features := opts.ExistingFeatures
	tasks := opts.ExistingTasks

	g, gctx := errgroup.WithContext(ctx)
	if !opts.SkipFeatures {
		g.Go(func() error {
			proposed, err := s.draft(gctx, llm.TaskFeatureDraft, featureDraftSystemPrompt, noteText, opts.ExistingFeatures, opts.MaxItems)
			if err != nil {
				return fmt.Errorf("drafting features: %w", err)
			}
			features = MergeGenerated(opts.ExistingFeatures, proposed)
			return nil
		})
	}
	if !opts.SkipTasks {
		g.Go(func() error {
			proposed, err := s.draft(gctx, llm.TaskTaskDraft, taskDraftSystemPrompt, noteText, opts.ExistingTasks, opts.MaxItems)
			if err != nil {
				return fmt.Errorf("drafting tasks: %w", err)
			}
			tasks = MergeGenerated(opts.ExistingTasks, proposed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return features, tasks, nil
}

func (s *featureDraftService) draft(ctx context.Context, task llm.TaskType, system, noteText string, existing []domain.GeneratedItem, limit int) ([]domain.GeneratedItem, error) {
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         task,
		SystemPrompt: system,
		UserPrompt:   buildProposalPrompt(noteText, existing, limit),
	})
	if err != nil {
		return nil, err
	}

	parsed, err := llm.ExtractJSON[proposalResponse](resp.Text, validateProposal)
	if err != nil {
		return nil, err
	}
	return toGeneratedItems(parsed, limit), nil
}

func buildProposalPrompt(noteText string, existing []domain.GeneratedItem, limit int) string {
	var b strings.Builder
	b.WriteString("Note:\n")
	b.WriteString(strings.TrimSpace(noteText))
	b.WriteString("\n")
	if len(existing) > 0 {
		b.WriteString("\nAlready listed (do not repeat unless you improve the description):\n")
		for _, it := range existing {
			fmt.Fprintf(&b, "- %s\n", it.Title)
		}
	}
	if limit > 0 {
		fmt.Fprintf(&b, "\nReturn at most %d items.\n", limit)
	}
	return b.String()
}
