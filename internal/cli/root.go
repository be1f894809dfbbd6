package cli

import (
	"log/slog"

	"github.com/alexanderramin/draftboard/internal/autosave"
	"github.com/alexanderramin/draftboard/internal/intelligence"
	"github.com/alexanderramin/draftboard/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Notes    service.NoteService
	Projects service.ProjectService
	Items    service.GeneratedItemService
	Import   service.ImportService

	// Intelligence services are nil when the LLM is disabled.
	Features  intelligence.FeatureDraftService
	Documents intelligence.DocumentService

	// Delays configures autosave sessions opened by edit commands.
	Delays autosave.Delays
	Logger *slog.Logger

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool
	// Prompter asks the user questions. Nil selects the huh prompter.
	Prompter Prompter
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) prompter() Prompter {
	if a.Prompter != nil {
		return a.Prompter
	}
	return huhPrompter{}
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// NewRootCmd creates the top-level "draftboard" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "draftboard",
		Short:         "Product notes with autosave, canvases and AI-drafted features",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newNoteCmd(app),
		newProjectCmd(app),
	)

	return root
}
