package cli

import (
	"fmt"

	"github.com/alexanderramin/draftboard/internal/cli/formatter"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Review generated features and tasks",
	}

	cmd.AddCommand(
		newItemsListCmd(app),
		newItemsSelectCmd(app),
		newItemsAddToCmd(app),
	)

	return cmd
}

func addKindFlag(cmd *cobra.Command, target *string) {
	*target = string(domain.ItemFeature)
	cmd.Flags().Var(newEnumValue(target, itemKinds), "kind", "Item kind (feature or task)")
}

func newItemsListCmd(app *App) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list NOTE",
		Short: "List generated items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := resolveNote(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			k := domain.ItemKind(kind)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatItemList(k, n.Items(k)))
			return nil
		},
	}

	addKindFlag(cmd, &kind)

	return cmd
}

func newItemsSelectCmd(app *App) *cobra.Command {
	var (
		kind string
		off  bool
	)

	cmd := &cobra.Command{
		Use:   "select NOTE ITEM...",
		Short: "Select generated items by position or id",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := resolveNote(ctx, app, args[0])
			if err != nil {
				return err
			}
			k := domain.ItemKind(kind)
			items, err := app.Items.SetSelected(ctx, n.ID, k, args[1:], !off)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatItemList(k, items))
			return nil
		},
	}

	addKindFlag(cmd, &kind)
	cmd.Flags().BoolVar(&off, "off", false, "Deselect instead of select")

	return cmd
}

func newItemsAddToCmd(app *App) *cobra.Command {
	var kind, dest string

	cmd := &cobra.Command{
		Use:   "add-to NOTE",
		Short: "Mark selected items as added to a destination",
		Long: `Mark every selected item that has not been added yet as added to the
destination, for example a tracker board or a release name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := resolveNote(ctx, app, args[0])
			if err != nil {
				return err
			}
			added, err := app.Items.AddSelectedToDestination(ctx, n.ID, domain.ItemKind(kind), dest)
			if err != nil {
				return err
			}
			if len(added) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to add. Select items first.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d %s items to %s\n", len(added), kind, formatter.Bold(added[0].AddedTo))
			return nil
		},
	}

	addKindFlag(cmd, &kind)
	cmd.Flags().StringVar(&dest, "to", "", "Destination name (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
