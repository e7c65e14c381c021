package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued saves",
	Long: `List the saves recorded in the catalog, newest first. With --sync the
catalog is first reconciled with the save files on disk.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sync, _ := cmd.Flags().GetBool("sync")
		exact, _ := cmd.Flags().GetBool("exact")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		if sync {
			added, removed, err := store.Sync()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Catalog synced: %d added, %d removed\n", added, removed)
		}

		entries := store.Entries()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No saves found")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tCREATED\tSIZE\tVERSION\tTABLES\tMISSING\tAUTO")
		for _, e := range entries {
			missing := 0
			for _, c := range e.Categories {
				missing += len(c.Missing)
			}
			created := humanize.Time(e.Created)
			size := humanize.Bytes(uint64(e.Size))
			if exact {
				created = formatTime(e.Created)
				size = humanize.Comma(e.Size)
			}
			auto := ""
			if e.Autosave {
				auto = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				e.Name, created, size, e.Version, len(e.Categories), missing, auto)
		}
		return tw.Flush()
	},
}

func init() {
	RootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("sync", false, "Reconcile the catalog with the save directory first")
	listCmd.Flags().Bool("exact", false, "Print exact times and byte counts")
}
