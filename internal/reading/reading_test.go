package reading_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arcanaland/seer/internal/analysis"
	"github.com/arcanaland/seer/internal/deck"
	"github.com/arcanaland/seer/internal/history"
	"github.com/arcanaland/seer/internal/library"
	"github.com/arcanaland/seer/internal/reading"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type echoAnalyzer struct{}

func (echoAnalyzer) Chat(_ context.Context, _, user string, onDelta func(string)) (string, error) {
	onDelta("reading")
	return "reading", nil
}

func newService(t *testing.T) *reading.Service {
	t.Helper()
	d, err := library.Default()
	require.NoError(t, err)
	return reading.NewService(reading.Options{
		Deck:     d,
		Analyzer: echoAnalyzer{},
		History:  history.Open(filepath.Join(t.TempDir(), "history.json"), nil),
		Model:    "test-model",
	})
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]reading.Mode{
		"": reading.Auto, "1": reading.Auto, "Auto": reading.Auto,
		"2": reading.Manual, "m": reading.Manual, " manual ": reading.Manual,
	} {
		got, err := reading.ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := reading.ParseMode("random")
	assert.ErrorIs(t, err, reading.ErrInvalidMode)
}

func TestParseCount(t *testing.T) {
	for _, n := range reading.ValidCounts {
		got, err := reading.ParseCount(" " + strconv.Itoa(n) + " ")
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	for _, bad := range []string{"", "two", "2", "0", "78", "-1"} {
		_, err := reading.ParseCount(bad)
		assert.ErrorIs(t, err, reading.ErrInvalidCount, bad)
	}
	assert.Equal(t, "1/3/5/7/10", reading.CountChoices())
}

func TestDrawAuto(t *testing.T) {
	s := newService(t)
	for _, n := range reading.ValidCounts {
		cards, err := s.Draw(reading.Auto, n, nil)
		require.NoError(t, err)
		assert.Len(t, cards, n)
	}

	_, err := s.Draw(reading.Auto, 4, nil)
	assert.ErrorIs(t, err, reading.ErrInvalidCount)
}

func TestDrawManual(t *testing.T) {
	s := newService(t)

	cards, err := s.Draw(reading.Manual, 3, []int{1, 40, 78})
	require.NoError(t, err)
	assert.Len(t, cards, 3)

	_, err = s.Draw(reading.Manual, 3, []int{1, 1, 2})
	var verr *deck.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, deck.Duplicate, verr.Violation)

	_, err = s.Draw(reading.Mode("other"), 3, nil)
	assert.ErrorIs(t, err, reading.ErrInvalidMode)
}

func TestAnalyzeAndRecord(t *testing.T) {
	s := newService(t)
	cards, err := s.Draw(reading.Auto, 3, nil)
	require.NoError(t, err)

	var final analysis.Event
	for e := range s.Analyze(context.Background(), "Where is my path?", cards) {
		final = e
	}
	require.Equal(t, analysis.EventComplete, final.Kind)

	r, err := s.Record("Where is my path?", reading.Auto, cards, final.Text)
	require.NoError(t, err)
	assert.Equal(t, "test-model", r.Model)
	assert.Equal(t, "auto", r.Mode)
	assert.NotEmpty(t, r.ID)

	stored, err := s.History().Get(0)
	require.NoError(t, err)
	assert.Equal(t, r, stored)
	assert.Len(t, stored.Cards, 3)
	s.Stop()
}

func TestCloseRetriesFailedSave(t *testing.T) {
	d, err := library.Default()
	require.NoError(t, err)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	path := filepath.Join(blocker, "history.json")

	s := reading.NewService(reading.Options{Deck: d, Analyzer: echoAnalyzer{}, History: history.Open(path, nil)})
	cards, err := s.Draw(reading.Auto, 1, nil)
	require.NoError(t, err)

	_, err = s.Record("q", reading.Auto, cards, "text")
	require.Error(t, err)
	assert.Error(t, s.Close(), "still blocked")

	require.NoError(t, os.Remove(blocker))
	require.NoError(t, s.Close())
	assert.False(t, s.History().Pending())
	assert.Equal(t, 1, history.Open(path, nil).Len())
}
