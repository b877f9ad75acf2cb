package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/seer/internal/config"
	"github.com/arcanaland/seer/internal/render"
)

var showCmd = &cobra.Command{
	Use:   "show [card_id]",
	Short: "Display a card's meanings, with ANSI art when the deck has it",
	Long: `Show displays the name and the core, upright and reversed meanings of a
tarot card. Use canonical card IDs like 'major_arcana.00' or
'minor_arcana.wands.ace'.

Decks installed in your deck library (XDG_DATA_HOME/tarot/decks) can carry
ANSI art (ansi32/, ansi256/) or raster images (h2400/, h1200/, h750/), which
are converted to terminal art and cached. The built-in deck has texts only.

Examples:
  seer show major_arcana.17
  seer show --deck rider-waite-smith minor_arcana.wands.ace
  seer show --deck ./custom-deck major_arcana.01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cardID := args[0]

		d, err := loadDeck()
		if err != nil {
			return err
		}

		c, err := d.Card(cardID)
		if err != nil {
			return fmt.Errorf("error getting card: %w", err)
		}

		art, err := render.FindArt(d.Path, config.GetCacheDir(), cardID)
		if err != nil && !errors.Is(err, render.ErrNoArt) {
			logger.Warn("card art unavailable", zap.String("card", cardID), zap.String("path", d.Path), zap.Error(err))
		}

		render.NewPrinter(os.Stdout, render.TerminalWidth(os.Stdout)).Detail(c, d.Name, art)
		return nil
	},
}
