package analysis_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arcanaland/seer/internal/analysis"
	"github.com/arcanaland/seer/internal/card"
	"github.com/arcanaland/seer/internal/llm"
	"github.com/arcanaland/seer/internal/prompt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedAnalyzer emits deltas and then returns err.
type scriptedAnalyzer struct {
	deltas []string
	err    error

	gotSystem, gotUser string
}

func (a *scriptedAnalyzer) Chat(_ context.Context, system, user string, onDelta func(string)) (string, error) {
	a.gotSystem, a.gotUser = system, user
	var b strings.Builder
	for _, d := range a.deltas {
		b.WriteString(d)
		onDelta(d)
	}
	return b.String(), a.err
}

// blockingAnalyzer sends one delta and then waits for cancellation.
type blockingAnalyzer struct {
	started chan struct{}
}

func (a *blockingAnalyzer) Chat(ctx context.Context, _, _ string, onDelta func(string)) (string, error) {
	onDelta("partial")
	close(a.started)
	<-ctx.Done()
	return "partial", ctx.Err()
}

func collect(events <-chan analysis.Event) []analysis.Event {
	var out []analysis.Event
	for e := range events {
		out = append(out, e)
	}
	return out
}

var cards = []card.Card{{Name: "The Sun", Meaning: "Joy", Upright: "Success", Orientation: card.Upright}}

func TestRunnerCompletes(t *testing.T) {
	a := &scriptedAnalyzer{deltas: []string{"Bright ", "days ", "ahead."}}
	r := analysis.NewRunner(a, nil)

	events := collect(r.Start(context.Background(), "How will my week go?", cards))
	require.Len(t, events, 4)

	assert.Equal(t, analysis.EventUpdate, events[0].Kind)
	assert.Equal(t, "Bright ", events[0].Text)
	assert.Equal(t, "Bright days ", events[1].Text)
	assert.Equal(t, "Bright days ahead.", events[2].Text)
	assert.Equal(t, analysis.Event{Kind: analysis.EventComplete, Text: "Bright days ahead."}, events[3])

	assert.Equal(t, prompt.System, a.gotSystem)
	assert.Equal(t, prompt.Build("How will my week go?", cards), a.gotUser)
}

func TestRunnerReportsErrorWithPartialText(t *testing.T) {
	boom := errors.New("connection reset")
	r := analysis.NewRunner(&scriptedAnalyzer{deltas: []string{"The cards "}, err: boom}, nil)

	events := collect(r.Start(context.Background(), "q", cards))
	require.Len(t, events, 2)

	last := events[1]
	assert.Equal(t, analysis.EventError, last.Kind)
	assert.ErrorIs(t, last.Err, boom)
	assert.Equal(t, "The cards ", last.Partial)
	assert.Equal(t, "The cards \n\n[AI reading failed: connection reset]", last.Text)
}

func TestExactlyOneTerminalEvent(t *testing.T) {
	for _, err := range []error{nil, errors.New("boom")} {
		r := analysis.NewRunner(&scriptedAnalyzer{deltas: []string{"a", "b"}, err: err}, nil)

		terminal := 0
		for _, e := range collect(r.Start(context.Background(), "q", cards)) {
			if e.Kind != analysis.EventUpdate {
				terminal++
			}
		}
		assert.Equal(t, 1, terminal)
	}
}

// sequenceAnalyzer hands each call to the next analyzer in line.
type sequenceAnalyzer struct {
	calls []analysis.Analyzer
	n     int
}

func (a *sequenceAnalyzer) Chat(ctx context.Context, system, user string, onDelta func(string)) (string, error) {
	next := a.calls[a.n]
	a.n++
	return next.Chat(ctx, system, user, onDelta)
}

func TestStartSupersedesRunningJob(t *testing.T) {
	blocking := &blockingAnalyzer{started: make(chan struct{})}
	r := analysis.NewRunner(&sequenceAnalyzer{calls: []analysis.Analyzer{
		blocking,
		&scriptedAnalyzer{deltas: []string{"second"}},
	}}, nil)

	first := r.Start(context.Background(), "first", cards)
	<-blocking.started

	second := r.Start(context.Background(), "second", cards)

	for _, e := range collect(first) {
		assert.Equal(t, analysis.EventUpdate, e.Kind, "superseded job must not emit a terminal event")
	}

	events := collect(second)
	require.NotEmpty(t, events)
	assert.Equal(t, analysis.Event{Kind: analysis.EventComplete, Text: "second"}, events[len(events)-1])
}

func TestStopCancelsJob(t *testing.T) {
	blocking := &blockingAnalyzer{started: make(chan struct{})}
	r := analysis.NewRunner(blocking, nil)

	events := r.Start(context.Background(), "q", cards)
	<-blocking.started
	r.Stop()

	for _, e := range collect(events) {
		assert.Equal(t, analysis.EventUpdate, e.Kind)
	}

	// Stop with nothing running is a no-op.
	r.Stop()
}

func TestDisplayError(t *testing.T) {
	assert.Equal(t, "AI reading failed: boom", analysis.DisplayError(errors.New("boom"), ""))
	assert.Contains(t, analysis.DisplayError(llm.ErrMissingAPIKey, ""), "OPENAI_API_KEY")
	assert.Equal(t, "AI reading timed out", analysis.DisplayError(context.DeadlineExceeded, ""))
	assert.Equal(t, "text\n\n[AI reading failed: boom]", analysis.DisplayError(errors.New("boom"), "text"))
	assert.Equal(t, "update", analysis.EventUpdate.String())
}
