package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alexanderramin/draftboard/internal/autosave"
	"github.com/alexanderramin/draftboard/internal/cli/formatter"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/importer"
	"github.com/alexanderramin/draftboard/internal/richtext"
	"github.com/alexanderramin/draftboard/internal/watch"
	"github.com/spf13/cobra"
)

type editFlags struct {
	title   string
	body    string
	tags    []string
	addTags []string
	project string
	meta    metadataFlags
	watch   string
	editor  bool
}

func newNoteEditCmd(app *App) *cobra.Command {
	var f editFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a note through an autosave session",
		Long: `Edit a note. Field flags are applied to an autosave session which is
flushed when the command ends.

With --watch FILE the note is exported to FILE as Markdown and every save
of that file is fed into the session until Ctrl-C (or until the editor
exits when --editor is set). Pending edits are saved on exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), app, args[0], cmd.ErrOrStderr(), func(n *domain.Note, sess *autosave.Session) error {
				if err := applyEditFlags(cmd, app, sess, &f); err != nil {
					return err
				}
				if f.watch == "" {
					return nil
				}
				return watchDraft(cmd, app, n, sess, &f)
			})
		},
	}

	cmd.Flags().StringVar(&f.title, "title", "", "New title")
	cmd.Flags().StringVar(&f.body, "body", "", "Replace the body with this Markdown")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Replace tags (repeatable)")
	cmd.Flags().StringSliceVar(&f.addTags, "add-tag", nil, "Add a tag (repeatable)")
	cmd.Flags().StringVar(&f.project, "project", "", "Link to project (empty to unlink)")
	addMetadataFlags(cmd.Flags(), &f.meta)
	cmd.Flags().StringVar(&f.watch, "watch", "", "Export to this Markdown file and autosave its changes")
	cmd.Flags().BoolVar(&f.editor, "editor", false, "Open $EDITOR on the watched file and stop when it exits")

	return cmd
}

func applyEditFlags(cmd *cobra.Command, app *App, sess *autosave.Session, f *editFlags) error {
	fs := cmd.Flags()
	cur := sess.Current()

	if fs.Changed("title") {
		if err := sess.SetTitle(strings.TrimSpace(f.title)); err != nil {
			return err
		}
	}
	if fs.Changed("body") {
		raw, err := richtext.FromMarkdown([]byte(f.body)).Marshal()
		if err != nil {
			return err
		}
		if err := sess.SetContent(raw); err != nil {
			return err
		}
	}
	if fs.Changed("tag") || fs.Changed("add-tag") {
		tags := cur.Tags
		if fs.Changed("tag") {
			tags = f.tags
		}
		if err := sess.SetTags(append(append([]string{}, tags...), f.addTags...)); err != nil {
			return err
		}
	}
	if fs.Changed("project") {
		projectID, err := resolveProjectFlag(cmd.Context(), app, f.project)
		if err != nil {
			return err
		}
		if err := sess.SetProject(projectID); err != nil {
			return err
		}
	}

	meta := cur.Metadata
	changed, err := f.meta.apply(fs, &meta)
	if err != nil {
		return err
	}
	if changed {
		if err := sess.SetMetadata(meta); err != nil {
			return err
		}
	}
	return nil
}

// watchDraft exports the session's current state to the watch file and
// mirrors its changes into the session until the user stops.
func watchDraft(cmd *cobra.Command, app *App, base *domain.Note, sess *autosave.Session, f *editFlags) error {
	path, err := filepath.Abs(f.watch)
	if err != nil {
		return err
	}

	current, err := noteFromValues(base, sess.Current())
	if err != nil {
		return err
	}
	draft, err := importer.ExportMarkdown(current, importer.ExportOptions{Logger: app.logger()})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, draft, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	w, err := watch.NewDraftWatcher(path, sess, app.logger())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	w.Start(ctx)

	out := cmd.ErrOrStderr()
	if f.editor {
		if err := runEditor(ctx, path); err != nil {
			fmt.Fprintln(out, formatter.StyleRed.Render("editor: ")+err.Error())
		}
	} else {
		fmt.Fprintf(out, "Watching %s %s\n", path, formatter.Dim("(Ctrl-C to stop)"))
		<-ctx.Done()
	}
	stop()

	// Pick up a write that landed inside the settle window.
	if err := w.Sync(); err != nil {
		fmt.Fprintln(out, formatter.StyleYellow.Render("last draft not applied: ")+err.Error())
	}
	return nil
}

func runEditor(ctx context.Context, path string) error {
	editor := strings.TrimSpace(os.Getenv("VISUAL"))
	if editor == "" {
		editor = strings.TrimSpace(os.Getenv("EDITOR"))
	}
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	c := exec.CommandContext(ctx, parts[0], append(parts[1:], path)...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	return c.Run()
}
