package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <name> <file>",
	Short: "Write a stored save to a plain save file",
	Long: `Write the codec bytes of a stored save to a file, without the store's
compression and checksum framing. The file can be imported into another
store with savetool import.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		data, err := store.Get(args[0])
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[1], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s (%s)\n", args[0], args[1], humanize.Bytes(uint64(len(data))))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)
}
