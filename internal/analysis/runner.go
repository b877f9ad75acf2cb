package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/arcanaland/seer/internal/card"
	"github.com/arcanaland/seer/internal/llm"
	"github.com/arcanaland/seer/internal/prompt"
)

// Analyzer produces a reading from a system persona and a user prompt.
// *llm.Client satisfies it.
type Analyzer interface {
	Chat(ctx context.Context, system, user string, onDelta func(string)) (string, error)
}

type EventKind int

const (
	// EventUpdate carries the text accumulated so far
	EventUpdate EventKind = iota + 1
	// EventComplete carries the full reading
	EventComplete
	// EventError carries a display string in Text and the text received
	// before the failure in Partial
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventUpdate:
		return "update"
	case EventComplete:
		return "complete"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind    EventKind
	Text    string
	Partial string
	Err     error
}

// Runner runs at most one analysis at a time
type Runner struct {
	analyzer Analyzer
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(analyzer Analyzer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{analyzer: analyzer, logger: logger.Named("analysis")}
}

// Start stops any analysis in flight, waits for it to exit and starts a new
// one. The returned channel gets zero or more EventUpdate values followed by
// exactly one EventComplete or EventError, then closes. A job stopped by
// Stop, a later Start or ctx closes its channel with no terminal event.
func (r *Runner) Start(ctx context.Context, question string, cards []card.Card) <-chan Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()

	jobCtx, cancel := context.WithCancel(ctx)
	events := make(chan Event, 16)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done

	user := prompt.Build(question, cards)
	go r.run(jobCtx, user, len(cards), events, done)

	return events
}

// Stop cancels the analysis in flight, if any, and waits for it to exit
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Runner) stopLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel, r.done = nil, nil
	r.logger.Debug("analysis stopped")
}

func (r *Runner) run(ctx context.Context, user string, cardCount int, events chan<- Event, done chan<- struct{}) {
	defer close(done)
	defer close(events)

	send := func(e Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	r.logger.Debug("analysis started", zap.Int("cards", cardCount))

	var acc strings.Builder
	text, err := r.analyzer.Chat(ctx, prompt.System, user, func(delta string) {
		acc.WriteString(delta)
		send(Event{Kind: EventUpdate, Text: acc.String()})
	})

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		if text == "" {
			text = acc.String()
		}
		r.logger.Warn("analysis failed", zap.Error(err), zap.Int("partial_bytes", len(text)))
		send(Event{Kind: EventError, Text: DisplayError(err, text), Partial: text, Err: err})
		return
	}

	send(Event{Kind: EventComplete, Text: text})
}

// DisplayError renders a failed analysis for the user, keeping any text that
// arrived before the failure.
func DisplayError(err error, partial string) string {
	var msg string
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		msg = "AI reading unavailable: " + err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		msg = "AI reading timed out"
	default:
		msg = "AI reading failed: " + err.Error()
	}

	if partial == "" {
		return msg
	}
	return partial + "\n\n[" + msg + "]"
}
