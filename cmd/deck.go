package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arcanaland/seer/internal/config"
	"github.com/arcanaland/seer/internal/library"
)

// deckCmd represents the deck command group
var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage the decks used for readings",
	Long: `Commands for managing tarot decks. The Rider-Waite-Smith deck is built in;
more decks can be added to your deck library.`,
}

var deckListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the built-in deck and the decks in your deck library",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printDeck := func(id, name string) {
			if id == cfg.DefaultDeck {
				fmt.Printf("* %s (%s) [DEFAULT]\n", id, name)
			} else {
				fmt.Printf("  %s (%s)\n", id, name)
			}
		}

		libraryPath := config.GetDeckLibraryPath()
		listed := map[string]bool{}

		entries, err := os.ReadDir(libraryPath)
		if err != nil && !os.IsNotExist(err) {
			fmt.Printf("Error reading deck library: %v\n", err)
		}
		for _, entry := range entries {
			// Resolve symbolic links to deck directories
			entryPath := filepath.Join(libraryPath, entry.Name())
			fileInfo, err := os.Stat(entryPath)
			if err != nil || !fileInfo.IsDir() {
				continue
			}
			d, err := library.Load(entryPath, cfg.Language)
			if err != nil {
				// Not a valid deck, skip
				continue
			}
			listed[entry.Name()] = true
			printDeck(entry.Name(), d.Name)
		}

		if !listed[library.DefaultDeckID] {
			if d, err := library.Default(); err == nil {
				printDeck(d.ID, d.Name+", built in")
			}
		}

		if len(entries) == 0 {
			fmt.Println("\nYou can add decks by copying them to:", libraryPath)
		}
	},
}

var deckSetDefaultCmd = &cobra.Command{
	Use:   "set-default [deck_name]",
	Short: "Set the deck used when --deck is not given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deckName := args[0]

		// Try to load the deck to make sure it's valid
		if _, err := library.Resolve(deckName, config.GetDeckLibraryPath(), cfg.Language); err != nil {
			return fmt.Errorf("not a usable deck: %w", err)
		}

		if err := config.SetDefaultDeck(deckName); err != nil {
			return fmt.Errorf("error setting default deck: %w", err)
		}

		fmt.Printf("Default deck set to: %s\n", deckName)
		return nil
	},
}

var deckInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the deck library with an editable copy of the built-in deck",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryPath := config.GetDeckLibraryPath()
		if err := os.MkdirAll(libraryPath, 0755); err != nil {
			return fmt.Errorf("error creating deck library: %w", err)
		}
		fmt.Println("Deck library initialized at:", libraryPath)

		dest, installed, err := library.Install(libraryPath)
		if err != nil {
			return err
		}
		if installed {
			fmt.Println("Built-in deck copied to:", dest)
		} else {
			fmt.Println("Keeping the existing deck at:", dest)
		}

		fmt.Println("Config file at:", config.GetConfigFilePath())
		return nil
	},
}

func init() {
	deckCmd.AddCommand(deckListCmd)
	deckCmd.AddCommand(deckSetDefaultCmd)
	deckCmd.AddCommand(deckInitCmd)
}
