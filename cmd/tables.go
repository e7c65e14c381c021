package cmd

import (
	"fmt"
	"strings"

	"github.com/TFMV/savefmt/internal/savegame"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables <name>",
	Short: "Compare the translation tables of a save with the current content",
	Long: `Print, for each enum category stored in a save, how its saved indices
map to the current content: unchanged, moved, or removed identifiers.

Examples:
  savetool tables start
  savetool tables start --content mods/content.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		base, err := store.Open(args[0], savegame.DefaultReaderOptions())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		cats := base.Categories()
		if len(cats) == 0 {
			fmt.Fprintln(out, "No translation tables")
			return nil
		}
		for _, c := range cats {
			t, _ := base.Translation(c)
			var moved []string
			for old, id := range t.Saved {
				if cur := t.Convert(old); cur >= 0 && cur != old {
					moved = append(moved, fmt.Sprintf("%s %d->%d", id, old, cur))
				}
			}
			missing := t.Missing()

			status := "unchanged"
			if !t.Identity() {
				status = fmt.Sprintf("%d moved, %d removed", len(moved), len(missing))
			}
			fmt.Fprintf(out, "%-12s saved %3d, current %3d: %s\n", c, len(t.Saved), app.content.Len(c), status)
			if len(missing) > 0 {
				fmt.Fprintf(out, "  removed: %s\n", strings.Join(missing, ", "))
			}
			if verbose && len(moved) > 0 {
				fmt.Fprintf(out, "  moved: %s\n", strings.Join(moved, ", "))
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tablesCmd)
	tablesCmd.Flags().BoolP("verbose", "v", false, "List every moved identifier")
}
