package deck_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/seer/internal/card"
	"github.com/arcanaland/seer/internal/deck"
)

// sequenceRNG returns values from a pre-set sequence.
type sequenceRNG struct {
	values []int
	idx    int
}

func (r *sequenceRNG) IntN(n int) int {
	v := r.values[r.idx%len(r.values)] % n
	r.idx++
	return v
}

func testCards(n int) []card.Card {
	cards := make([]card.Card, n)
	for i := range n {
		cards[i] = card.Card{
			ID:       fmt.Sprintf("test.%02d", i),
			Name:     fmt.Sprintf("Card %d", i),
			Meaning:  "meaning",
			Upright:  fmt.Sprintf("upright %d", i),
			Reversed: fmt.Sprintf("reversed %d", i),
		}
	}
	return cards
}

func ids(cards []card.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestDrawYieldsDistinctCards(t *testing.T) {
	for _, n := range []int{1, 3, 10, 78} {
		d := deck.New(testCards(78), nil)
		drawn := d.Draw(n)
		require.Len(t, drawn, n)

		seen := make(map[string]bool)
		for _, c := range drawn {
			assert.False(t, seen[c.ID], "duplicate card %s", c.ID)
			seen[c.ID] = true
		}
		assert.Equal(t, 78-n, d.Len())
	}
}

func TestDrawClampsToRemaining(t *testing.T) {
	d := deck.New(testCards(5), nil)
	assert.Len(t, d.Draw(3), 3)
	assert.Len(t, d.Draw(10), 2)
	assert.Empty(t, d.Draw(1))
	assert.Empty(t, deck.New(testCards(5), nil).Draw(-2))
}

func TestDrawTakesFromEnd(t *testing.T) {
	// All zeros: orientation upright, and the shuffle walks card 0 to the end.
	rng := &sequenceRNG{values: []int{0}}
	d := deck.New(testCards(4), rng)

	drawn := d.Draw(2)
	require.Len(t, drawn, 2)
	assert.Equal(t, []string{"test.00", "test.03"}, ids(drawn))
}

func TestOrientationAssignment(t *testing.T) {
	rng := &sequenceRNG{values: []int{0, 1, 0, 1, 0, 0, 0}}
	d := deck.New(testCards(4), rng)

	drawn := d.Draw(4)
	byID := map[string]card.Card{}
	for _, c := range drawn {
		byID[c.ID] = c
	}
	assert.Equal(t, card.Upright, byID["test.00"].Orientation)
	assert.Equal(t, card.Reversed, byID["test.01"].Orientation)
	assert.Equal(t, card.Upright, byID["test.02"].Orientation)
	assert.Equal(t, card.Reversed, byID["test.03"].Orientation)
}

func TestInterpretationMatchesOrientation(t *testing.T) {
	for _, c := range deck.New(testCards(78), nil).Draw(78) {
		if c.Orientation == card.Upright {
			assert.Equal(t, c.Upright, c.Interpretation())
		} else {
			require.Equal(t, card.Reversed, c.Orientation)
			assert.Equal(t, c.Reversed, c.Interpretation())
		}
	}
}

func TestNewDoesNotMutateDefinitions(t *testing.T) {
	defs := testCards(3)
	_ = deck.New(defs, &sequenceRNG{values: []int{1}})
	for _, c := range defs {
		assert.Empty(t, c.Orientation)
	}
}

func TestDrawByIndices(t *testing.T) {
	d := deck.New(testCards(78), nil)
	before := snapshot(d)

	drawn, err := d.DrawByIndices([]int{1, 78, 40}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{before[0], before[77], before[39]}, ids(drawn))
	assert.Equal(t, 75, d.Len())
}

func TestDrawByIndicesViolations(t *testing.T) {
	tests := []struct {
		name      string
		indices   []int
		want      int
		violation deck.Violation
	}{
		{"too few", []int{1, 2}, 3, deck.WrongCount},
		{"too many", []int{1, 2, 3, 4}, 3, deck.WrongCount},
		{"zero", []int{0, 2, 3}, 3, deck.OutOfRange},
		{"past end", []int{1, 2, 79}, 3, deck.OutOfRange},
		{"negative", []int{-4}, 1, deck.OutOfRange},
		{"duplicate", []int{5, 6, 5}, 3, deck.Duplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := deck.New(testCards(78), nil)
			before := snapshot(d)

			_, err := d.DrawByIndices(tt.indices, tt.want)
			require.Error(t, err)

			var verr *deck.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.violation, verr.Violation)
			assert.NotEmpty(t, verr.Error())

			assert.Equal(t, before, snapshot(d), "deck must not change on invalid input")
		})
	}
}

func TestParseIndices(t *testing.T) {
	got, err := deck.ParseIndices(" 3, 17  42,5 ")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 17, 42, 5}, got)

	got, err = deck.ParseIndices("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = deck.ParseIndices("3, seven")
	var verr *deck.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, deck.NonNumeric, verr.Violation)
	assert.Contains(t, err.Error(), "seven")

	_, err = deck.ParseIndices("3, 99999999999999999999")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, deck.OutOfRange, verr.Violation)
	assert.Equal(t, "position 99999999999999999999 is out of range", err.Error())
}

// snapshot records the current order of d without changing it.
func snapshot(d *deck.Deck) []string {
	positions := make([]int, d.Len())
	for i := range positions {
		positions[i] = i + 1
	}
	clone := *d
	cards, err := clone.DrawByIndices(positions, len(positions))
	if err != nil {
		panic(err)
	}
	return ids(cards)
}
