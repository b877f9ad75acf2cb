package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/arcanaland/seer/internal/analysis"
	"github.com/arcanaland/seer/internal/card"
	"github.com/arcanaland/seer/internal/deck"
	"github.com/arcanaland/seer/internal/reading"
	"github.com/arcanaland/seer/internal/render"
)

// HistoryPageSize is how many readings /history lists
const HistoryPageSize = 10

var (
	// errQuit ends the session from any prompt
	errQuit = errors.New("quit")

	// ErrReadingFailed is returned by Once when the reading could not be made
	ErrReadingFailed = errors.New("reading failed")
)

var (
	title  = color.New(color.FgMagenta, color.Bold).SprintFunc()
	notice = color.New(color.FgYellow).SprintFunc()
	failed = color.New(color.FgRed).SprintFunc()
)

type Options struct {
	In    io.Reader
	Out   io.Writer
	Width int
	// Copy places the card summary on the clipboard; render.Copy when nil
	Copy   func(w io.Writer, text string) bool
	Logger *zap.Logger
}

// Session is the interactive question loop
type Session struct {
	svc     *reading.Service
	in      *bufio.Scanner
	lines   <-chan inputLine
	out     io.Writer
	printer *render.Printer
	width   int
	copy    func(w io.Writer, text string) bool
	logger  *zap.Logger
}

func New(svc *reading.Service, opts Options) *Session {
	if opts.Copy == nil {
		opts.Copy = render.Copy
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Session{
		svc:     svc,
		in:      bufio.NewScanner(opts.In),
		out:     opts.Out,
		printer: render.NewPrinter(opts.Out, opts.Width),
		width:   opts.Width,
		copy:    opts.Copy,
		logger:  opts.Logger.Named("cli"),
	}
}

// inputLine is one line read from the input, or the error that ended it
type inputLine struct {
	text string
	err  error
}

// Run reads questions until /quit, /exit, end of input or ctx is done
func (s *Session) Run(ctx context.Context) error {
	s.banner()
	defer s.close()

	stop := make(chan struct{})
	defer close(stop)
	s.lines = s.readLines(stop)

	for {
		line, err := s.prompt(ctx, "\nAsk a question or enter a command: ")
		if err != nil {
			return s.finish(err)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "/history":
			err = s.browseHistory(ctx)
		case "/help":
			s.help()
		default:
			if strings.HasPrefix(line, "/") {
				fmt.Fprintf(s.out, "Unknown command %s. Type /help for the list of commands.\n", line)
				continue
			}
			err = s.ask(ctx, line)
		}

		if err != nil {
			return s.finish(err)
		}
	}
}

func (s *Session) finish(err error) error {
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(s.out, "\nGoodbye.")
		return nil
	}
	return err
}

func (s *Session) banner() {
	fmt.Fprintln(s.out, title("=== Seer: AI tarot readings ==="))
	fmt.Fprintln(s.out, "Type /quit or /exit to leave, /history to browse past readings, /help for help.")
}

func (s *Session) help() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  /history   browse, view and delete saved readings")
	fmt.Fprintln(s.out, "  /help      show this help")
	fmt.Fprintln(s.out, "  /quit      leave (also /exit)")
	fmt.Fprintln(s.out, "Anything else is taken as your question for a new reading.")
}

// readLines scans the input on its own goroutine so a prompt can give up
// when the context is cancelled. The channel closes after the final error.
func (s *Session) readLines(stop <-chan struct{}) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		send := func(l inputLine) bool {
			select {
			case lines <- l:
				return true
			case <-stop:
				return false
			}
		}

		for s.in.Scan() {
			if !send(inputLine{text: s.in.Text()}) {
				return
			}
		}
		err := s.in.Err()
		if err == nil {
			err = io.EOF
		}
		send(inputLine{err: err})
	}()
	return lines
}

// prompt prints label and reads one trimmed line. /quit and /exit give
// errQuit at every prompt; end of input gives io.EOF and a cancelled ctx
// its error.
func (s *Session) prompt(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(s.out, label)

	var l inputLine
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case next, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		l = next
	}
	if l.err != nil {
		return "", l.err
	}

	line := strings.TrimSpace(l.text)
	switch strings.ToLower(line) {
	case "/quit", "/exit":
		return "", errQuit
	}
	return line, nil
}

func (s *Session) ask(ctx context.Context, question string) error {
	mode, err := s.askMode(ctx)
	if err != nil {
		return err
	}
	count, err := s.askCount(ctx)
	if err != nil {
		return err
	}

	var cards []card.Card
	if mode == reading.Manual {
		cards, err = s.drawManual(ctx, count)
	} else {
		cards, err = s.svc.Draw(reading.Auto, count, nil)
	}
	if err != nil {
		return err
	}

	s.printer.Cards(question, cards)

	text, ok := s.analyze(ctx, question, cards)
	if !ok {
		return ctx.Err()
	}
	s.record(question, mode, cards, text)

	answer, err := s.prompt(ctx, "\nCopy the card summary? (y/n): ")
	if err != nil {
		return err
	}
	if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
		s.copySummary(question, cards)
	}
	return nil
}

// Once prints the cards, streams their reading and saves it, without any
// prompts. The summary is copied when copySummary is set.
func (s *Session) Once(ctx context.Context, question string, mode reading.Mode, cards []card.Card, copySummary bool) error {
	defer s.close()

	s.printer.Cards(question, cards)

	text, ok := s.analyze(ctx, question, cards)
	if !ok {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrReadingFailed
	}
	s.record(question, mode, cards, text)

	if copySummary {
		s.copySummary(question, cards)
	}
	return nil
}

// close stops the reading in flight and flushes history that failed to save
func (s *Session) close() {
	if err := s.svc.Close(); err != nil {
		s.logger.Warn("history not saved on exit", zap.Error(err))
		fmt.Fprintln(s.out, failed("Could not save the history: "+err.Error()))
	}
}

func (s *Session) record(question string, mode reading.Mode, cards []card.Card, text string) {
	if _, err := s.svc.Record(question, mode, cards, text); err != nil {
		fmt.Fprintln(s.out, failed("Could not save this reading: "+err.Error()))
	}
}

func (s *Session) copySummary(question string, cards []card.Card) {
	if s.copy(s.out, render.Summary(question, card.Snapshots(cards))) {
		fmt.Fprintln(s.out, "Copied to clipboard.")
	}
}

func (s *Session) askMode(ctx context.Context) (reading.Mode, error) {
	for {
		line, err := s.prompt(ctx, "Draw mode: 1) auto  2) manual [auto]: ")
		if err != nil {
			return "", err
		}
		mode, err := reading.ParseMode(line)
		if err == nil {
			return mode, nil
		}
		fmt.Fprintln(s.out, notice(err.Error()))
	}
}

func (s *Session) askCount(ctx context.Context) (int, error) {
	for {
		line, err := s.prompt(ctx, fmt.Sprintf("How many cards? (%s): ", reading.CountChoices()))
		if err != nil {
			return 0, err
		}
		n, err := reading.ParseCount(line)
		if err == nil {
			return n, nil
		}
		fmt.Fprintln(s.out, notice(err.Error()))
	}
}

// drawManual asks for positions until the draw succeeds
func (s *Session) drawManual(ctx context.Context, count int) ([]card.Card, error) {
	size := len(s.svc.Deck().Cards())
	for {
		line, err := s.prompt(ctx, fmt.Sprintf("Pick %d position(s) between 1 and %d, separated by commas or spaces: ", count, size))
		if err != nil {
			return nil, err
		}

		indices, err := deck.ParseIndices(line)
		if err == nil {
			var cards []card.Card
			cards, err = s.svc.Draw(reading.Manual, count, indices)
			if err == nil {
				return cards, nil
			}
		}

		var verr *deck.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		fmt.Fprintln(s.out, notice(verr.Error()))
	}
}

// analyze streams the reading to the terminal. It reports false when the
// reading was stopped before finishing.
func (s *Session) analyze(ctx context.Context, question string, cards []card.Card) (string, bool) {
	fmt.Fprintln(s.out, title("Reading the cards..."))
	fmt.Fprintln(s.out)

	printed := ""
	for e := range s.svc.Analyze(ctx, question, cards) {
		if e.Kind != analysis.EventUpdate {
			s.logger.Debug("analysis finished", zap.Stringer("event", e.Kind), zap.Int("bytes", len(e.Text)))
		}
		switch e.Kind {
		case analysis.EventUpdate:
			fmt.Fprint(s.out, strings.TrimPrefix(e.Text, printed))
			printed = e.Text
		case analysis.EventComplete:
			if printed == "" {
				fmt.Fprint(s.out, render.Markdown(e.Text, s.width))
			} else {
				fmt.Fprintln(s.out, strings.TrimPrefix(e.Text, printed))
			}
			return e.Text, true
		case analysis.EventError:
			if printed != "" {
				fmt.Fprintln(s.out)
			}
			fmt.Fprintln(s.out, failed(strings.TrimPrefix(e.Text, printed)))
			return "", false
		}
	}

	fmt.Fprintln(s.out, notice("\nReading cancelled."))
	return "", false
}

func (s *Session) browseHistory(ctx context.Context) error {
	store := s.svc.History()
	for {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, title(fmt.Sprintf("Recent readings (%d saved)", store.Len())))
		s.printer.HistoryList(store.Recent(HistoryPageSize))
		if store.Len() == 0 {
			return nil
		}

		line, err := s.prompt(ctx, "\nEnter a number to view, d<number> to delete, or press Enter to go back: ")
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}

		del := strings.HasPrefix(strings.ToLower(line), "d")
		n, convErr := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(strings.ToLower(line), "d")))
		if convErr != nil {
			fmt.Fprintln(s.out, notice(fmt.Sprintf("%q is not a reading number.", line)))
			continue
		}

		r, err := store.Get(n - 1)
		if err != nil {
			fmt.Fprintln(s.out, notice(fmt.Sprintf("There is no reading #%d.", n)))
			continue
		}

		if !del {
			s.printer.Record(n-1, r, render.Markdown(r.Analysis, s.width))
			if _, err := s.prompt(ctx, "\nPress Enter to go back..."); err != nil {
				return err
			}
			continue
		}

		answer, err := s.prompt(ctx, fmt.Sprintf("Delete reading #%d (%q)? (y/n): ", n, r.Question))
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			continue
		}
		if err := store.Delete(n - 1); err != nil {
			fmt.Fprintln(s.out, failed("Could not delete: "+err.Error()))
			continue
		}
		s.logger.Debug("reading deleted", zap.Int("position", n))
		fmt.Fprintf(s.out, "Reading #%d deleted.\n", n)
	}
}
