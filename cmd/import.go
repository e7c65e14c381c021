package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/TFMV/savefmt/internal/hash"
	"github.com/TFMV/savefmt/internal/walker"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import plain save files found below a directory",
	Long: `Walk a directory tree for plain save files and store each one under its
file name. Files whose digest matches the catalogued save of the same name
are skipped; other existing saves are only replaced with --force.

Examples:
  savetool import ~/Games/Colonization/Saves
  savetool import exports --exclude "backup*" --max-depth 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		exts, _ := cmd.Flags().GetStringSlice("ext")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		maxDepth, _ := cmd.Flags().GetInt("max-depth")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		opts := walker.DefaultWalkOptions()
		opts.Extensions = exts
		opts.ExcludePatterns = exclude
		opts.MaxDepth = maxDepth
		opts.HashAlgorithm = app.settings.Digest

		root := args[0]
		out := cmd.OutOrStdout()
		var imported, skipped, failed int
		err = walker.WalkWithCallback(cmd.Context(), root, opts, func(f walker.FileEntry) error {
			if f.Error != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s: %v\n", f.Path, f.Error)
				return nil
			}
			name := f.Name()
			if e, ok := store.Entry(name); ok {
				if e.Algorithm == opts.HashAlgorithm.String() && hash.Equal(e.Digest, f.Hash) {
					skipped++
					level.Debug(app.logger).Log("msg", "unchanged save skipped", "path", f.Path)
					return nil
				}
				if !force {
					skipped++
					fmt.Fprintf(out, "skip %s: save %s exists\n", f.Path, name)
					return nil
				}
			}

			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
			if err != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s: %v\n", f.Path, err)
				return nil
			}
			if _, err := store.Put(name, data); err != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s: %v\n", f.Path, err)
				return nil
			}
			imported++
			fmt.Fprintf(out, "ok   %s -> %s\n", f.Path, name)
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%d imported, %d skipped, %d failed\n", imported, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d files could not be imported", failed)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(importCmd)
	d := walker.DefaultWalkOptions()
	importCmd.Flags().Bool("force", false, "Replace existing saves with different contents")
	importCmd.Flags().StringSlice("ext", d.Extensions, "File extensions to import")
	importCmd.Flags().StringSlice("exclude", nil, "Glob patterns of paths to skip")
	importCmd.Flags().Int("max-depth", d.MaxDepth, "Maximum directory depth (0 means no limit)")
}
