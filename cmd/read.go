package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcanaland/seer/internal/cli"
	"github.com/arcanaland/seer/internal/deck"
	"github.com/arcanaland/seer/internal/reading"
	"github.com/arcanaland/seer/internal/render"
)

var (
	readCount    int
	readManual   string
	readNoStream bool
	readCopy     bool
)

var readCmd = &cobra.Command{
	Use:   "read [question]",
	Short: "Draw cards for a question and print their reading",
	Long: `Read draws cards for one question, prints them with their meanings and
streams the model's interpretation. The reading is saved to the history.

Examples:
  seer read "Should I take the new job?"
  seer read -n 5 What does this year hold
  seer read --manual "3, 17, 42" "Where should I focus?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("a question is required")
		}
		if err := reading.ValidateCount(readCount); err != nil {
			return err
		}

		mode := reading.Auto
		var indices []int
		if cmd.Flags().Changed("manual") {
			mode = reading.Manual
			var err error
			if indices, err = deck.ParseIndices(readManual); err != nil {
				return err
			}
		}

		if readNoStream {
			cfg.LLM.Stream = false
		}
		svc, err := newService(false)
		if err != nil {
			return err
		}

		cards, err := svc.Draw(mode, readCount, indices)
		if err != nil {
			return err
		}

		ctx, stop := interruptContext()
		defer stop()

		session := cli.New(svc, cli.Options{
			In:     os.Stdin,
			Out:    os.Stdout,
			Width:  render.TerminalWidth(os.Stdout),
			Logger: logger,
		})
		return session.Once(ctx, question, mode, cards, readCopy)
	},
}

func init() {
	readCmd.Flags().IntVarP(&readCount, "count", "n", 3, "Number of cards to draw ("+reading.CountChoices()+")")
	readCmd.Flags().StringVar(&readManual, "manual", "", "Pick the cards yourself by 1-based deck positions, e.g. \"3,17,42\"")
	readCmd.Flags().BoolVar(&readNoStream, "no-stream", false, "Wait for the whole reading instead of streaming it")
	readCmd.Flags().BoolVar(&readCopy, "copy", false, "Copy the card summary to the clipboard")
}
