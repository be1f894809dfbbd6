package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/alexanderramin/draftboard/internal/cli/formatter"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/importer"
	"github.com/alexanderramin/draftboard/internal/repository"
	"github.com/alexanderramin/draftboard/internal/richtext"
	"github.com/spf13/cobra"
)

func newNoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes", "n"},
		Short:   "Manage notes",
	}

	cmd.AddCommand(
		newNoteAddCmd(app),
		newNoteListCmd(app),
		newNoteShowCmd(app),
		newNoteEditCmd(app),
		newNoteDeleteCmd(app),
		newNoteExportCmd(app),
		newNoteImportCmd(app),
		newNoteGenerateCmd(app),
		newCanvasCmd(app),
		newItemsCmd(app),
	)

	return cmd
}

func newNoteAddCmd(app *App) *cobra.Command {
	var title, project, body string
	var tags []string
	var meta metadataFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new note",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if strings.TrimSpace(title) == "" && app.interactive() {
				var err error
				if title, err = app.prompter().Input("Note title", "Checkout redesign"); err != nil {
					return err
				}
			}

			projectID, err := resolveProjectFlag(ctx, app, project)
			if err != nil {
				return err
			}

			n := &domain.Note{
				Title:     strings.TrimSpace(title),
				Tags:      tags,
				ProjectID: domain.StrPtr(projectID),
			}
			if _, err := meta.apply(cmd.Flags(), &n.Metadata); err != nil {
				return err
			}
			if body != "" {
				if n.Content, n.CanvasData, err = contentFromMarkdown(body); err != nil {
					return err
				}
			}

			if err := app.Notes.Create(ctx, n); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created note %s %s\n", formatter.Bold(n.DisplayTitle()), formatter.TruncID(n.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Note title")
	cmd.Flags().StringVar(&body, "body", "", "Initial body as Markdown")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringVar(&project, "project", "", "Project short ID or ID")
	addMetadataFlags(cmd.Flags(), &meta)

	return cmd
}

func newNoteListCmd(app *App) *cobra.Command {
	var project, tag string
	var limit int
	var status metadataFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectFlag(ctx, app, project)
			if err != nil {
				return err
			}

			notes, err := app.Notes.List(ctx, repository.NoteFilter{
				ProjectID: projectID,
				Tag:       strings.TrimSpace(tag),
				Status:    domain.NoteStatus(status.statusVal),
				Limit:     limit,
			})
			if err != nil {
				return err
			}

			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatNoteList(notes))
			return nil
		},
	}

	status.status = newEnumValue(&status.statusVal, domain.ValidNoteStatuses)
	cmd.Flags().Var(status.status, "status", "Only notes with this status ("+status.status.choices()+")")
	cmd.Flags().StringVar(&project, "project", "", "Only notes linked to this project")
	cmd.Flags().StringVar(&tag, "tag", "", "Only notes with this tag")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of notes (0 = all)")

	return cmd
}

func newNoteShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := resolveNote(ctx, app, args[0])
			if err != nil {
				return err
			}

			detail := formatter.NoteDetail{
				Note:      n,
				PlainText: richtext.PlainText(richtext.ParseOrEmpty(n.Content, app.logger())),
				Canvases:  canvas.Decode(n.CanvasData, app.logger()),
			}
			if id := domain.StrFromPtr(n.ProjectID); id != "" {
				if p, err := app.Projects.Get(ctx, id); err == nil {
					detail.ProjectName = p.Name
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatNoteDetail(detail))
			return nil
		},
	}
}

func newNoteDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm", "remove"},
		Short:   "Delete a note and its canvases",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := resolveNote(ctx, app, args[0])
			if err != nil {
				return err
			}

			ok, err := confirmDestructive(app, yes,
				fmt.Sprintf("Delete %q?", n.DisplayTitle()),
				"The note, its canvases and generated items are removed permanently.")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			if err := app.Notes.Delete(ctx, n.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %s\n", n.DisplayTitle())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newNoteExportCmd(app *App) *cobra.Command {
	var output string
	var sidebar bool

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export a note as Markdown with YAML front matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := resolveNote(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			data, err := importer.ExportMarkdown(n, importer.ExportOptions{SidebarCanvases: sidebar, Logger: app.logger()})
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", n.DisplayTitle(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&sidebar, "sidebar-canvases", false, "Append canvases that are not embedded in the body")

	return cmd
}

func newNoteImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE|GLOB...",
		Short: "Import Markdown drafts as new notes",
		Long: `Import Markdown drafts with optional YAML front matter.

Patterns support ** (e.g. "drafts/**/*.md"). All files are imported in one
transaction: if any file is invalid nothing is imported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Import.Import(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, n := range res.Notes {
				fmt.Fprintf(out, "  %s %s\n", formatter.TruncID(n.ID), n.DisplayTitle())
			}
			fmt.Fprintf(out, "Imported %d notes with %d canvases\n", len(res.Notes), res.Canvases)
			return nil
		},
	}
}

// contentFromMarkdown converts a Markdown body into a content tree. Diagram
// fences get ids and are listed in the returned canvas data.
func contentFromMarkdown(body string) (content, canvasData string, err error) {
	doc := richtext.FromMarkdown([]byte(body))
	richtext.EnsureDiagramIDs(doc)
	if content, err = doc.Marshal(); err != nil {
		return "", "", err
	}
	if diagrams := canvas.FromDiagrams(richtext.DiagramNodes(doc), time.Now().UTC()); len(diagrams) > 0 {
		if canvasData, err = canvas.Encode(diagrams); err != nil {
			return "", "", err
		}
	}
	return content, canvasData, nil
}
