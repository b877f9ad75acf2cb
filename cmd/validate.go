package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/seer/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check that a deck directory can be used for readings",
	Long: `Validate checks that a deck directory can be used for readings: deck.toml
with an id, name, version and schema_version 1.0, and a meanings file giving
every one of the 78 cards a name, a core meaning and upright and reversed
interpretations. Missing art is reported as a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deckPath := args[0]
		if info, err := os.Stat(deckPath); err != nil || !info.IsDir() {
			return fmt.Errorf("deck directory not found: %s", deckPath)
		}

		results, err := validator.NewValidator(deckPath).Validate()
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		printFindings := func(heading string, c *color.Color, findings []string) {
			if len(findings) == 0 {
				return
			}
			fmt.Println(c.Sprintf("%s (%d):", heading, len(findings)))
			for _, f := range findings {
				fmt.Println("  - " + f)
			}
		}
		printFindings("Errors", color.New(color.FgRed, color.Bold), results.Errors)
		printFindings("Warnings", color.New(color.FgYellow), results.Warnings)

		if !results.OK() {
			return fmt.Errorf("deck %s is not usable: %d error(s)", deckPath, len(results.Errors))
		}
		fmt.Println(color.GreenString("Deck %s is ready for readings.", deckPath))
		return nil
	},
}
