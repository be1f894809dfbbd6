package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/draftboard/internal/autosave"
	"github.com/alexanderramin/draftboard/internal/cli/formatter"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/intelligence"
	"github.com/alexanderramin/draftboard/internal/llm"
	"github.com/alexanderramin/draftboard/internal/richtext"
	"github.com/spf13/cobra"
)

func llmDisabledError() error {
	return fmt.Errorf("%w\n%s", llm.ErrDisabled, formatter.Hint("set DRAFTBOARD_LLM_ENABLED=true to enable it"))
}

func newNoteGenerateCmd(app *App) *cobra.Command {
	var (
		featuresOnly bool
		tasksOnly    bool
		maxItems     int
		sections     []string
		brief        string
	)

	cmd := &cobra.Command{
		Use:     "generate NOTE",
		Aliases: []string{"gen"},
		Short:   "Draft features and tasks, or document sections, with AI",
		Long: `Draft product features and engineering tasks from the note text. Items
with the same title as an existing item replace its description and keep
its selection.

With --section the note body is extended instead: each section is written
in order and appended as a heading plus body.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if featuresOnly && tasksOnly {
				return fmt.Errorf("--features-only and --tasks-only are mutually exclusive")
			}
			if len(sections) > 0 {
				if app.Documents == nil {
					return llmDisabledError()
				}
				return runSectionDraft(cmd, app, args[0], brief, sections)
			}
			if app.Features == nil {
				return llmDisabledError()
			}

			return withSession(cmd.Context(), app, args[0], cmd.ErrOrStderr(), func(_ *domain.Note, sess *autosave.Session) error {
				v := sess.Current()
				_, stop := startSpinner(app, cmd, "Drafting features and tasks...")
				features, tasks, err := app.Features.Propose(cmd.Context(), sess.PlainText(), intelligence.ProposeOptions{
					ExistingFeatures: v.Features,
					ExistingTasks:    v.Tasks,
					SkipFeatures:     tasksOnly,
					SkipTasks:        featuresOnly,
					MaxItems:         maxItems,
				})
				stop()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !tasksOnly {
					if err := sess.SetGeneratedFeatures(features); err != nil {
						return err
					}
					fmt.Fprint(out, formatter.FormatItemList(domain.ItemFeature, features))
				}
				if !featuresOnly {
					if err := sess.SetGeneratedTasks(tasks); err != nil {
						return err
					}
					if !tasksOnly {
						fmt.Fprintln(out)
					}
					fmt.Fprint(out, formatter.FormatItemList(domain.ItemTask, tasks))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&featuresOnly, "features-only", false, "Draft features only")
	cmd.Flags().BoolVar(&tasksOnly, "tasks-only", false, "Draft tasks only")
	cmd.Flags().IntVar(&maxItems, "max", 8, "Maximum items per list (0 for no cap)")
	cmd.Flags().StringArrayVar(&sections, "section", nil, "Section title to write (repeatable, in order)")
	cmd.Flags().StringVar(&brief, "brief", "", "Document brief (defaults to the note text)")

	return cmd
}

// runSectionDraft appends generated sections to the note body. Sections
// written before a failure are kept.
func runSectionDraft(cmd *cobra.Command, app *App, ref, brief string, sections []string) error {
	return withSession(cmd.Context(), app, ref, cmd.ErrOrStderr(), func(n *domain.Note, sess *autosave.Session) error {
		if strings.TrimSpace(brief) == "" {
			brief = strings.TrimSpace(n.DisplayTitle() + "\n\n" + sess.PlainText())
		}

		errOut := cmd.ErrOrStderr()
		done := 0
		label, stop := startSpinner(app, cmd, sectionLabel(sections, 0))
		defer stop()
		_, genErr := app.Documents.Generate(cmd.Context(), brief, sections, func(res intelligence.SectionResult) {
			done++
			doc := richtext.ParseOrEmpty(sess.Current().Content, app.logger())
			doc.Content = append(doc.Content, res.Blocks...)
			raw, err := doc.Marshal()
			if err == nil {
				err = sess.SetContent(raw)
			}
			if err != nil {
				app.logger().Warn("appending section failed", "section", res.Title, "error", err)
				return
			}
			fmt.Fprintf(errOut, "%s %s\n", formatter.RenderProgress(done, len(sections), 16), res.Title)
			label(sectionLabel(sections, done))
		})
		stop()
		if genErr != nil {
			if done > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Kept %d of %d sections\n", done, len(sections))
			}
			return genErr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sections to %s\n", done, formatter.Bold(n.DisplayTitle()))
		return nil
	})
}

// startSpinner shows a spinner on stderr when attached to a terminal. The
// returned label func retitles it.
func startSpinner(app *App, cmd *cobra.Command, msg string) (label func(string), stop func()) {
	if !app.interactive() {
		return func(string) {}, func() {}
	}
	s := formatter.NewSpinner(cmd.ErrOrStderr(), msg)
	s.Start()
	return s.SetLabel, s.Stop
}

func sectionLabel(sections []string, next int) string {
	if next >= len(sections) {
		return "Finishing..."
	}
	return fmt.Sprintf("Drafting %q...", sections[next])
}
