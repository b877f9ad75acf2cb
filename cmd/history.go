package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arcanaland/seer/internal/history"
	"github.com/arcanaland/seer/internal/render"
)

var (
	historyTUI    bool
	historyLimit  int
	historyFormat string
	historyYes    bool
)

// historyCmd represents the history command group
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show, delete and export saved readings",
	Long: `Commands for the saved readings. Readings are numbered from 1, oldest
first. --tui works on the full-screen interface's history instead of the
interactive session's.`,
}

var historyListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved readings, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := openHistory(historyTUI)
		fmt.Printf("%d reading(s) in %s\n", store.Len(), store.Path())
		render.NewPrinter(os.Stdout, render.TerminalWidth(os.Stdout)).HistoryList(store.Recent(historyLimit))
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [number]",
	Short: "Show a saved reading in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openHistory(historyTUI)
		index, r, err := historyRecord(store, args[0])
		if err != nil {
			return err
		}
		width := render.TerminalWidth(os.Stdout)
		render.NewPrinter(os.Stdout, width).Record(index, r, render.Markdown(r.Analysis, width))
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:     "rm [number]",
	Aliases: []string{"delete"},
	Short:   "Delete a saved reading",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openHistory(historyTUI)
		index, r, err := historyRecord(store, args[0])
		if err != nil {
			return err
		}

		if !historyYes {
			fmt.Printf("Delete reading #%d (%q)? (y/n): ", index+1, r.Question)
			var answer string
			_, _ = fmt.Scanln(&answer)
			if answer != "y" && answer != "yes" {
				fmt.Println("Kept.")
				return nil
			}
		}

		if err := store.Delete(index); err != nil {
			return fmt.Errorf("error deleting reading: %w", err)
		}
		fmt.Printf("Reading #%d deleted.\n", index+1)
		return nil
	},
}

var historyCopyCmd = &cobra.Command{
	Use:   "copy [number]",
	Short: "Copy the card summary of a saved reading to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openHistory(historyTUI)
		_, r, err := historyRecord(store, args[0])
		if err != nil {
			return err
		}
		if render.Copy(os.Stdout, render.Summary(r.Question, r.Cards)) {
			fmt.Println("Copied to clipboard.")
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all saved readings to stdout as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return openHistory(historyTUI).Export(os.Stdout, historyFormat)
	},
}

// historyRecord parses a 1-based reading number and looks it up
func historyRecord(store *history.Store, arg string) (int, history.Record, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, history.Record{}, fmt.Errorf("%q is not a reading number", arg)
	}
	r, err := store.Get(n - 1)
	if err != nil {
		return 0, history.Record{}, fmt.Errorf("there is no reading #%d (%d saved)", n, store.Len())
	}
	return n - 1, r, nil
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyTUI, "tui", false, "Use the full-screen interface's history")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "l", 0, "Show only the newest N readings")
	historyExportCmd.Flags().StringVarP(&historyFormat, "format", "f", "json", "Export format: json or yaml")
	historyDeleteCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "Delete without asking")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyCopyCmd)
	historyCmd.AddCommand(historyExportCmd)
}
