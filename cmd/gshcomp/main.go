package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/atinylittleshell/gshcomp/internal/history"
	"github.com/atinylittleshell/gshcomp/internal/styles"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var BUILD_VERSION = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "gshcomp",
		Short:         "Shell command-line completion engine",
		Version:       BUILD_VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")

	rootCmd.AddCommand(
		newCompleteCmd(&debug),
		newRecordCmd(&debug),
		newCatalogCmd(&debug),
		newHistoryCmd(&debug),
	)
	return rootCmd
}

func newCompleteCmd(debug *bool) *cobra.Command {
	var cursor int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "complete <line>",
		Short: "Print completions for a partially typed command line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{Debug: *debug})
			if err != nil {
				return err
			}
			defer a.Close()

			line := args[0]
			if !cmd.Flags().Changed("cursor") {
				cursor = len(line)
			}

			a.learnFromHistory()
			results := a.engine.Complete(line, cursor)
			a.logger.Debug("completed",
				zap.String("line", line), zap.Int("cursor", cursor), zap.Int("results", len(results)))

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			writeCompletions(cmd.OutOrStdout(), a.cfg.Colors, results)
			return nil
		},
	}
	cmd.Flags().IntVar(&cursor, "cursor", 0, "cursor byte offset (defaults to end of line)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print completions as JSON")
	return cmd
}

func newRecordCmd(debug *bool) *cobra.Command {
	var exitCode int
	var dir string

	cmd := &cobra.Command{
		Use:   "record <command>",
		Short: "Record an executed command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get current working directory: %w", err)
				}
				dir = wd
			}

			a, err := newApp(appOptions{Debug: *debug, Dir: dir})
			if err != nil {
				return err
			}
			defer a.Close()

			return a.record(args[0], dir, exitCode)
		},
	}
	cmd.Flags().IntVar(&exitCode, "exit-code", 0, "exit code of the command")
	cmd.Flags().StringVar(&dir, "dir", "", "directory the command ran in (defaults to the current directory)")
	return cmd
}

func newCatalogCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [command [subcommand]]",
		Short: "List known commands, or the options and subcommands of one",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{Debug: *debug})
			if err != nil {
				return err
			}
			defer a.Close()

			return writeCatalog(cmd.OutOrStdout(), a.cfg.Colors, a.catalog, args)
		},
	}
}

func newHistoryCmd(debug *bool) *cobra.Command {
	var limit int
	var search string
	var deleteID uint
	var reset bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show, search or edit recently executed commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{Debug: *debug})
			if err != nil {
				return err
			}
			defer a.Close()

			switch {
			case reset:
				if err := a.history.ResetHistory(); err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
				return nil
			case cmd.Flags().Changed("delete"):
				if err := a.history.DeleteEntry(deleteID); err != nil {
					return fmt.Errorf("failed to delete history entry: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted entry %d\n", deleteID)
				return nil
			}

			var entries []history.HistoryEntry
			if search != "" {
				entries, err = a.history.SearchHistory(search, limit)
				slices.Reverse(entries)
			} else {
				entries, err = a.history.GetRecentEntries("", limit)
			}
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			writeHistory(cmd.OutOrStdout(), a.cfg.Colors, entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	cmd.Flags().StringVar(&search, "search", "", "only show commands containing this text")
	cmd.Flags().UintVar(&deleteID, "delete", 0, "delete the entry with this id")
	cmd.Flags().BoolVar(&reset, "clear", false, "delete every entry")
	cmd.MarkFlagsMutuallyExclusive("search", "delete", "clear")
	return cmd
}
