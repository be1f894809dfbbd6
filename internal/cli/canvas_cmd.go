package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alexanderramin/draftboard/internal/autosave"
	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/alexanderramin/draftboard/internal/cli/formatter"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/spf13/cobra"
)

func newCanvasCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "canvas",
		Aliases: []string{"canvases"},
		Short:   "Manage the diagram canvases of a note",
	}

	cmd.AddCommand(
		newCanvasListCmd(app),
		newCanvasAddCmd(app),
		newCanvasRenameCmd(app),
		newCanvasRemoveCmd(app),
		newCanvasNormalizeCmd(app),
	)

	return cmd
}

// resolveCanvas matches ref against canvas ids, id prefixes and names.
func resolveCanvas(c canvas.Collection, ref string) (domain.Canvas, error) {
	if i := c.Find(ref); i >= 0 {
		return c[i], nil
	}
	var matches []domain.Canvas
	for _, cv := range c {
		if strings.HasPrefix(cv.ID, ref) || strings.EqualFold(cv.Name, ref) {
			matches = append(matches, cv)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Canvas{}, fmt.Errorf("canvas %q: %w", ref, autosave.ErrCanvasNotFound)
	case 1:
		return matches[0], nil
	default:
		return domain.Canvas{}, fmt.Errorf("canvas reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func newCanvasListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list NOTE",
		Short: "List canvases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := resolveNote(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			c := canvas.Decode(n.CanvasData, app.logger())
			if len(c) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No canvases.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCanvasList(c))
			return nil
		},
	}
}

func newCanvasAddCmd(app *App) *cobra.Command {
	var name, file string

	cmd := &cobra.Command{
		Use:   "add NOTE",
		Short: "Add a sidebar canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data domain.CanvasData
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
				var scene any
				if err := json.Unmarshal(raw, &scene); err != nil {
					return fmt.Errorf("parsing %s: %w", file, err)
				}
				data = canvas.DataFrom(scene)
			}

			return withSession(cmd.Context(), app, args[0], cmd.ErrOrStderr(), func(_ *domain.Note, sess *autosave.Session) error {
				cv, err := sess.AddCanvas(strings.TrimSpace(name), data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added canvas %s %s\n", formatter.Bold(cv.Name), formatter.TruncID(cv.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Canvas name (defaults to a numbered name)")
	cmd.Flags().StringVar(&file, "file", "", "Excalidraw scene JSON to start from")

	return cmd
}

func newCanvasRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename NOTE CANVAS NAME",
		Short: "Rename a canvas",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[2])
			if name == "" {
				return fmt.Errorf("canvas name is required")
			}
			return withSession(cmd.Context(), app, args[0], cmd.ErrOrStderr(), func(_ *domain.Note, sess *autosave.Session) error {
				cv, err := resolveCanvas(sess.Canvases(), args[1])
				if err != nil {
					return err
				}
				if err := sess.RenameCanvas(cv.ID, name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", cv.Name, formatter.Bold(name))
				return nil
			})
		},
	}
}

func newCanvasRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove NOTE CANVAS",
		Aliases: []string{"rm"},
		Short:   "Remove a canvas, including its embedded diagram",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), app, args[0], cmd.ErrOrStderr(), func(_ *domain.Note, sess *autosave.Session) error {
				cv, err := resolveCanvas(sess.Canvases(), args[1])
				if err != nil {
					return err
				}
				ok, err := confirmDestructive(app, yes, fmt.Sprintf("Remove canvas %q?", cv.Name),
					"An embedded diagram of this canvas is removed from the note body too.")
				if err != nil || !ok {
					return err
				}
				if err := sess.RemoveCanvas(cv.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed canvas %s\n", cv.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newCanvasNormalizeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize NOTE",
		Short: "Rewrite stored canvases in the canonical shape",
		Long: `Rewrite the stored canvas collection in the canonical shape. Legacy
single-canvas data is migrated and connector geometry is repaired.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := resolveNote(ctx, app, args[0])
			if err != nil {
				return err
			}

			c, migrated := canvas.DecodeWithInfo(n.CanvasData, app.logger())
			for i := range c {
				c[i].Data.Elements = canvas.NormalizeElements(c[i].Data.Elements)
			}
			raw := ""
			if len(c) > 0 {
				if raw, err = canvas.Encode(c); err != nil {
					return err
				}
			}
			if raw == n.CanvasData {
				fmt.Fprintln(cmd.OutOrStdout(), "Canvases already normalized.")
				return nil
			}

			if err := app.Notes.Patch(ctx, n.ID, domain.NotePatch{CanvasData: &raw}); err != nil {
				return err
			}
			msg := fmt.Sprintf("Normalized %d canvases", len(c))
			if migrated {
				msg += " (migrated from the legacy format)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
