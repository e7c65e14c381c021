package cmd

import (
	"fmt"

	"github.com/TFMV/savefmt/internal/diff"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Compare two saves field by field",
	Long: `Compare the records of two saves and print every field that was added,
changed or removed. Enum fields are compared by identifier, so saves written
against differently ordered content compare equal.

Examples:
  savetool diff start autosave-20260301-120000
  savetool diff start later --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		diffs, err := diff.CompareSaves(cmd.Context(), store.Verify, args[0], args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			data, err := json.MarshalIndent(diffs, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode diff: %w", err)
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		}

		if len(diffs) == 0 {
			fmt.Fprintln(out, "No differences found")
			return nil
		}
		for _, d := range diffs {
			fmt.Fprintln(out, d)
		}
		fmt.Fprintf(out, "%d differences\n", len(diffs))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(diffCmd)
	diffCmd.Flags().Bool("json", false, "Print the differences as JSON")
}
