package card

import "fmt"

// Arcana is the tier a card belongs to
type Arcana string

const (
	MajorArcana Arcana = "major_arcana"
	MinorArcana Arcana = "minor_arcana"
)

// Orientation is the upright or reversed state of a drawn card
type Orientation string

const (
	Upright  Orientation = "upright"
	Reversed Orientation = "reversed"
)

// Suits and Ranks list the minor arcana in canonical order
var (
	Suits = []string{"wands", "cups", "swords", "pentacles"}
	Ranks = []string{
		"ace", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
		"page", "knight", "queen", "king",
	}
)

// Card represents a tarot card
type Card struct {
	ID       string // Canonical ID (e.g., major_arcana.00, minor_arcana.wands.ace)
	Name     string // Localized name
	Arcana   Arcana // major_arcana or minor_arcana
	Number   string // For major arcana (00-21)
	Suit     string // For minor arcana (wands, cups, swords, pentacles)
	Rank     string // For minor arcana (ace, two, ..., king)
	Meaning  string // Core meaning, independent of orientation
	Upright  string // Interpretation when upright
	Reversed string // Interpretation when reversed

	Orientation Orientation
}

// Snapshot is the persisted view of a drawn card
type Snapshot struct {
	Name           string      `json:"name" yaml:"name"`
	Suit           string      `json:"suit,omitempty" yaml:"suit,omitempty"`
	Orientation    Orientation `json:"orientation" yaml:"orientation"`
	Meaning        string      `json:"meaning" yaml:"meaning"`
	Interpretation string      `json:"interpretation" yaml:"interpretation"`
}

// MajorID returns the canonical ID of the major arcana card with the given number
func MajorID(number int) string {
	return fmt.Sprintf("%s.%02d", MajorArcana, number)
}

// MinorID returns the canonical ID of a minor arcana card
func MinorID(suit, rank string) string {
	return fmt.Sprintf("%s.%s.%s", MinorArcana, suit, rank)
}

// IsReversed reports whether the card was drawn reversed
func (c Card) IsReversed() bool {
	return c.Orientation == Reversed
}

// Interpretation returns the text matching the card's orientation
func (c Card) Interpretation() string {
	if c.IsReversed() {
		return c.Reversed
	}
	return c.Upright
}

func (c Card) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Orientation)
}

func (c Card) Snapshot() Snapshot {
	return Snapshot{
		Name:           c.Name,
		Suit:           c.Suit,
		Orientation:    c.Orientation,
		Meaning:        c.Meaning,
		Interpretation: c.Interpretation(),
	}
}

// Snapshots converts drawn cards to their persisted form, keeping order
func Snapshots(cards []Card) []Snapshot {
	out := make([]Snapshot, len(cards))
	for i, c := range cards {
		out[i] = c.Snapshot()
	}
	return out
}
