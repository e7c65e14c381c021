package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/TFMV/savefmt/internal/query"
	"github.com/TFMV/savefmt/internal/storage"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query catalogued saves",
	Long: `Query the save catalog by name, size, creation time, digest, enum
categories and missing content.

Examples:
  savetool query --pattern "autosave-*" --newest 3
  savetool query --min-size 1MB --largest 5
  savetool query --after 2026-03-01 --before 2026-03-31
  savetool query --missing
  savetool query --duplicates`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := query.DefaultQueryOptions()
		opts.Pattern, _ = flags.GetString("pattern")
		opts.Digest, _ = flags.GetString("digest-value")
		opts.Category, _ = flags.GetString("category")
		opts.MissingContent, _ = flags.GetBool("missing")

		var err error
		if opts.MinSize, err = sizeFlag(cmd, "min-size"); err != nil {
			return err
		}
		if opts.MaxSize, err = sizeFlag(cmd, "max-size"); err != nil {
			return err
		}
		if opts.StartTime, err = timeFlag(cmd, "after"); err != nil {
			return err
		}
		if opts.EndTime, err = timeFlag(cmd, "before"); err != nil {
			return err
		}
		if flags.Changed("autosave") {
			auto, _ := flags.GetBool("autosave")
			opts.Autosave = &auto
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		engine := query.NewQueryEngine(store)

		out := cmd.OutOrStdout()
		if dup, _ := flags.GetBool("duplicates"); dup {
			groups, err := engine.FindDuplicateSaves(opts)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(groups))
			for k := range groups {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "%s\n", k)
				printEntries(cmd, groups[k], "  ")
			}
			fmt.Fprintf(out, "%d groups of identical saves\n", len(groups))
			return nil
		}

		var results []storage.Entry
		largest, _ := flags.GetInt("largest")
		newest, _ := flags.GetInt("newest")
		oldest, _ := flags.GetInt("oldest")
		switch {
		case largest > 0:
			results, err = engine.FindLargestSaves(largest, opts)
		case newest > 0:
			results, err = engine.FindNewestSaves(newest, opts)
		case oldest > 0:
			results, err = engine.FindOldestSaves(oldest, opts)
		default:
			results, err = engine.Query(opts)
		}
		if err != nil {
			return err
		}
		printEntries(cmd, results, "")
		fmt.Fprintf(out, "%d saves found\n", len(results))
		return nil
	},
}

func printEntries(cmd *cobra.Command, entries []storage.Entry, indent string) {
	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(out, "%s%-32s %10s  %s\n", indent, e.Name, humanize.Bytes(uint64(e.Size)), formatTime(e.Created))
	}
}

func sizeFlag(cmd *cobra.Command, name string) (int64, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return int64(n), nil
}

func timeFlag(cmd *cobra.Command, name string) (time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD or RFC 3339", name, s)
}

func init() {
	RootCmd.AddCommand(queryCmd)
	f := queryCmd.Flags()
	f.String("pattern", "*", "Glob pattern for save names")
	f.String("min-size", "", "Minimum size, for example 10KB")
	f.String("max-size", "", "Maximum size, for example 1MB")
	f.String("after", "", "Created at or after this time")
	f.String("before", "", "Created at or before this time")
	f.String("digest-value", "", "Match saves with this digest")
	f.Bool("autosave", false, "Only autosaves (--autosave=false for named saves only)")
	f.String("category", "", "Only saves with a table for this enum category")
	f.Bool("missing", false, "Only saves referencing content that no longer exists")
	f.Bool("duplicates", false, "Group saves with identical contents")
	f.Int("largest", 0, "Show the N largest saves")
	f.Int("newest", 0, "Show the N newest saves")
	f.Int("oldest", 0, "Show the N oldest saves")
}
