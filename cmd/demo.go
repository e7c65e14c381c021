package cmd

import (
	"fmt"
	"time"

	"github.com/TFMV/savefmt/internal/savegame"
	"github.com/TFMV/savefmt/internal/world"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo [name]",
	Short: "Write a demo world save",
	Long: `Write a small generated world (plots, areas and units) to the save
directory. With --autosave the save is named from the current time and the
rotation policy is applied afterwards.

Examples:
  savetool demo start
  savetool demo --autosave --prefix quick`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		autosave, _ := cmd.Flags().GetBool("autosave")
		prefix, _ := cmd.Flags().GetString("prefix")
		if !autosave && len(args) == 0 {
			return fmt.Errorf("a save name or --autosave must be given")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		m := world.Demo(app.content)
		data, err := savegame.Marshal(app.content, savegame.DefaultWriterOptions(), m)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if autosave {
			entry, deleted, err := store.Autosave(prefix, data, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Autosave %s written (%s)\n", entry.Name, humanize.Bytes(uint64(entry.Size)))
			for _, name := range deleted {
				fmt.Fprintf(out, "  rotated out %s\n", name)
			}
			return nil
		}

		entry, err := store.Put(args[0], data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Save %s written (%s, %d plots, %d units)\n",
			entry.Name, humanize.Bytes(uint64(entry.Size)), len(m.Plots), len(m.Units))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Bool("autosave", false, "Write a timestamped autosave and rotate")
	demoCmd.Flags().String("prefix", "autosave", "Autosave name prefix")
}
