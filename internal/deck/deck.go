package deck

import (
	"math/rand/v2"

	"github.com/arcanaland/seer/internal/card"
)

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// IntN returns a non-negative random int in [0, n).
	IntN(n int) int
}

type stdRNG struct{}

func (stdRNG) IntN(n int) int { return rand.IntN(n) }

// DefaultRNG delegates to math/rand/v2 (auto-seeded).
var DefaultRNG RNG = stdRNG{}

// Deck is the pile of cards for a single draw. Build a new one per draw.
type Deck struct {
	cards []card.Card
	rng   RNG
}

// New copies the card definitions, gives every card an orientation and shuffles.
func New(defs []card.Card, rng RNG) *Deck {
	if rng == nil {
		rng = DefaultRNG
	}
	cards := make([]card.Card, len(defs))
	for i, c := range defs {
		c.Orientation = card.Upright
		if rng.IntN(2) == 1 {
			c.Orientation = card.Reversed
		}
		cards[i] = c
	}
	d := &Deck{cards: cards, rng: rng}
	d.Shuffle()
	return d
}

// Len returns the number of cards left in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Shuffle applies a Fisher-Yates permutation to the remaining cards.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw pops min(n, Len()) cards off the end of the deck.
func (d *Deck) Draw(n int) []card.Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	if n < 0 {
		n = 0
	}
	drawn := make([]card.Card, 0, n)
	for range n {
		last := len(d.cards) - 1
		drawn = append(drawn, d.cards[last])
		d.cards = d.cards[:last]
	}
	return drawn
}

// DrawByIndices removes the cards at the given 1-based positions, in the
// order the positions were given. The deck is left untouched unless every
// index is valid.
func (d *Deck) DrawByIndices(indices []int, want int) ([]card.Card, error) {
	if len(indices) != want {
		return nil, &ValidationError{Violation: WrongCount, Want: want, Got: len(indices)}
	}

	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 1 || idx > len(d.cards) {
			return nil, &ValidationError{Violation: OutOfRange, Index: idx, Max: len(d.cards)}
		}
		if seen[idx] {
			return nil, &ValidationError{Violation: Duplicate, Index: idx}
		}
		seen[idx] = true
	}

	drawn := make([]card.Card, len(indices))
	for i, idx := range indices {
		drawn[i] = d.cards[idx-1]
	}

	remaining := make([]card.Card, 0, len(d.cards)-len(indices))
	for i, c := range d.cards {
		if !seen[i+1] {
			remaining = append(remaining, c)
		}
	}
	d.cards = remaining

	return drawn, nil
}
