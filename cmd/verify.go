package cmd

import (
	"fmt"

	"github.com/TFMV/savefmt/internal/savegame"
	"github.com/TFMV/savefmt/internal/world"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [name...]",
	Short: "Check saves for corruption",
	Long: `Check the file checksum, the catalog digest and the record structure of
saves. Without arguments every catalogued save is checked. With --world the
saves are also loaded as worlds.

Examples:
  savetool verify
  savetool verify start --world`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loadWorld, _ := cmd.Flags().GetBool("world")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		names := args
		if len(names) == 0 {
			for _, e := range store.Entries() {
				names = append(names, e.Name)
			}
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, name := range names {
			nodes, err := store.Verify(name)
			if err == nil && loadWorld {
				m := world.NewMap(app.content, 0, 0)
				_, err = store.Load(name, savegame.DefaultReaderOptions(), m)
			}
			if err != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s: %v\n", name, err)
				continue
			}
			fmt.Fprintf(out, "ok   %s (%d records)\n", name, len(nodes))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d saves failed verification", failed, len(names))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().Bool("world", false, "Also load each save as a world")
}
