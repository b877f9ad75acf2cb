package reading

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/arcanaland/seer/internal/analysis"
	"github.com/arcanaland/seer/internal/card"
	"github.com/arcanaland/seer/internal/deck"
	"github.com/arcanaland/seer/internal/history"
	"github.com/arcanaland/seer/internal/library"
)

// Mode selects how cards are drawn
type Mode string

const (
	Auto   Mode = "auto"
	Manual Mode = "manual"
)

// ValidCounts are the spread sizes a reading can have
var ValidCounts = []int{1, 3, 5, 7, 10}

var (
	ErrInvalidCount = errors.New("invalid card count")
	ErrInvalidMode  = errors.New("invalid draw mode")
)

// ParseMode accepts the mode name, its first letter or its menu number.
// Empty input means Auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "a", "auto":
		return Auto, nil
	case "2", "m", "manual":
		return Manual, nil
	default:
		return "", fmt.Errorf("%w %q: choose auto or manual", ErrInvalidMode, s)
	}
}

// ParseCount parses a spread size. Anything outside ValidCounts is an error.
func ParseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w %q: enter one of %s", ErrInvalidCount, s, CountChoices())
	}
	if err := ValidateCount(n); err != nil {
		return 0, err
	}
	return n, nil
}

func ValidateCount(n int) error {
	for _, c := range ValidCounts {
		if n == c {
			return nil
		}
	}
	return fmt.Errorf("%w %d: enter one of %s", ErrInvalidCount, n, CountChoices())
}

// CountChoices renders ValidCounts as "1/3/5/7/10"
func CountChoices() string {
	parts := make([]string, len(ValidCounts))
	for i, n := range ValidCounts {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "/")
}

// Service ties the deck, the analysis runner and the history store together
// for one front-end.
type Service struct {
	deck    *library.Deck
	rng     deck.RNG
	runner  *analysis.Runner
	history *history.Store
	model   string
	logger  *zap.Logger
}

type Options struct {
	Deck     *library.Deck
	Analyzer analysis.Analyzer
	History  *history.Store
	Model    string
	RNG      deck.RNG // nil uses deck.DefaultRNG
	Logger   *zap.Logger
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		deck:    opts.Deck,
		rng:     opts.RNG,
		runner:  analysis.NewRunner(opts.Analyzer, logger),
		history: opts.History,
		model:   opts.Model,
		logger:  logger.Named("reading"),
	}
}

func (s *Service) Deck() *library.Deck {
	return s.deck
}

func (s *Service) History() *history.Store {
	return s.history
}

// Draw shuffles a fresh deck and draws count cards from it. Manual draws take
// the 1-based positions in indices.
func (s *Service) Draw(mode Mode, count int, indices []int) ([]card.Card, error) {
	if err := ValidateCount(count); err != nil {
		return nil, err
	}

	d := deck.New(s.deck.Cards(), s.rng)

	switch mode {
	case Auto:
		return d.Draw(count), nil
	case Manual:
		cards, err := d.DrawByIndices(indices, count)
		if err != nil {
			s.logger.Debug("manual draw rejected", zap.Ints("indices", indices), zap.Error(err))
			return nil, err
		}
		return cards, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrInvalidMode, mode)
	}
}

// Analyze starts the reading in the background, stopping any reading still
// running. See analysis.Runner.Start for the event contract.
func (s *Service) Analyze(ctx context.Context, question string, cards []card.Card) <-chan analysis.Event {
	return s.runner.Start(ctx, question, cards)
}

// Stop cancels a reading in flight
func (s *Service) Stop() {
	s.runner.Stop()
}

// Close stops a reading in flight and retries a history save that failed
// earlier, so nothing recorded in this run is lost on exit.
func (s *Service) Close() error {
	s.runner.Stop()
	if !s.history.Pending() {
		return nil
	}
	s.logger.Info("retrying history save", zap.String("path", s.history.Path()))
	return s.history.Save()
}

// Record saves a finished reading. The returned record is kept in memory even
// when the save fails.
func (s *Service) Record(question string, mode Mode, cards []card.Card, text string) (history.Record, error) {
	r := history.NewRecord(question, string(mode), cards, text)
	r.Model = s.model
	if err := s.history.Append(r); err != nil {
		return r, err
	}
	s.logger.Info("reading saved", zap.String("reading_id", r.ID), zap.Int("cards", len(cards)))
	return r, nil
}
