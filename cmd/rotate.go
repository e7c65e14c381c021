package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Apply the autosave rotation policy",
	Long: `Delete the autosaves the rotation policy no longer keeps. Saves whose
names are not autosave names are never touched.

The policy comes from --max-autosaves, --max-age and --keep-daily or the
rotation section of savetool.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		policy := app.settings.Rotation
		maxAge := "unlimited"
		if policy.MaxAge > 0 {
			maxAge = policy.MaxAge.String()
		}
		fmt.Fprintf(out, "Policy: keep %d newest, %d daily, max age %s\n", policy.MaxAutosaves, policy.KeepDaily, maxAge)

		now := time.Now()
		if dryRun {
			names, err := store.Saves().PlanRotation(now)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintf(out, "would delete %s\n", name)
			}
			fmt.Fprintf(out, "%d autosaves would be deleted\n", len(names))
			return nil
		}

		deleted, err := store.Rotate(now)
		for _, name := range deleted {
			fmt.Fprintf(out, "deleted %s\n", name)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d autosaves deleted\n", len(deleted))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(rotateCmd)
	rotateCmd.Flags().Bool("dry-run", false, "Show what would be deleted")
}
