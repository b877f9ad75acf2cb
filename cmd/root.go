package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/seer/internal/cli"
	"github.com/arcanaland/seer/internal/config"
	"github.com/arcanaland/seer/internal/history"
	"github.com/arcanaland/seer/internal/library"
	"github.com/arcanaland/seer/internal/llm"
	"github.com/arcanaland/seer/internal/logging"
	"github.com/arcanaland/seer/internal/reading"
	"github.com/arcanaland/seer/internal/render"
)

var (
	verbose  bool
	deckFlag string

	cfg    *config.Config
	logger = zap.NewNop()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "seer",
	Short: "AI tarot readings in your terminal",
	Long: `Seer draws tarot cards for your question and asks a language model to
interpret them. Without a subcommand it starts an interactive session.

The OpenAI-compatible endpoint is configured with OPENAI_API_KEY,
OPENAI_BASE_URL and OPENAI_MODEL_NAME (a .env file in the working directory
is read too) or in the [llm] section of the config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}

		opts := logging.Options{Verbose: verbose}
		if cmd.Name() == "tui" {
			opts.File = filepath.Join(config.GetStateDir(), "seer.log")
		}
		if logger, err = logging.New(opts); err != nil {
			return err
		}
		logger.Debug("configuration loaded",
			zap.String("path", config.GetConfigFilePath()),
			zap.String("model", cfg.LLM.Model),
			zap.Bool("stream", cfg.LLM.Stream))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := interruptContext()
		defer stop()

		svc, err := newService(false)
		if err != nil {
			return err
		}
		session := cli.New(svc, cli.Options{
			In:     os.Stdin,
			Out:    os.Stdout,
			Width:  render.TerminalWidth(os.Stdout),
			Logger: logger,
		})
		return session.Run(ctx)
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	RootCmd.PersistentFlags().StringVarP(&deckFlag, "deck", "d", "", "Deck from your deck library or a path to a deck (default from config)")

	RootCmd.AddCommand(readCmd)
	RootCmd.AddCommand(tuiCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(deckCmd)
	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// interruptContext is cancelled by the first interrupt, which stops a reading
// in flight. Later interrupts terminate the process as usual.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// loadDeck resolves --deck, or the configured default deck
func loadDeck() (*library.Deck, error) {
	sel, err := library.Select(deckFlag, cfg.DefaultDeck, config.GetDeckLibraryPath(), cfg.Language)
	if err != nil {
		return nil, err
	}
	if sel.Fallback != nil {
		logger.Warn("default deck unavailable, using the built-in deck",
			zap.String("deck", cfg.DefaultDeck), zap.Error(sel.Fallback))
	}
	d := sel.Deck
	logger.Debug("deck loaded", zap.String("deck", d.ID), zap.String("path", d.Path), zap.String("language", d.Language))
	return d, nil
}

// openHistory opens the CLI history file, or the full-screen UI's with tui set
func openHistory(tui bool) *history.Store {
	file := config.CLIHistoryFile
	if tui {
		file = config.TUIHistoryFile
	}
	return history.Open(cfg.HistoryPath(file), logger)
}

// newService wires the deck, the model client and a history file into a
// reading service
func newService(tui bool) (*reading.Service, error) {
	d, err := loadDeck()
	if err != nil {
		return nil, err
	}

	client := llm.New(cfg.LLM, logger)
	if cfg.LLM.APIKey == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY is not set; cards will be drawn but not interpreted.")
	}

	return reading.NewService(reading.Options{
		Deck:     d,
		Analyzer: client,
		History:  openHistory(tui),
		Model:    client.Model(),
		Logger:   logger,
	}), nil
}
