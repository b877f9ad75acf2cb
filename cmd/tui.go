package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcanaland/seer/internal/render"
	"github.com/arcanaland/seer/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the full-screen interface",
	Long: `Tui opens a full-screen interface for asking questions, drawing cards and
browsing past readings. It keeps its own history file, separate from the
interactive session's. Logs go to the state directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !render.IsTerminal(os.Stdout) {
			return fmt.Errorf("seer tui needs an interactive terminal; use 'seer read' instead")
		}

		svc, err := newService(true)
		if err != nil {
			return err
		}

		ctx, stop := interruptContext()
		defer stop()

		return tui.Run(ctx, svc, logger)
	},
}
