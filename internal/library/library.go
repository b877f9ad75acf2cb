package library

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/arcanaland/seer/internal/card"
)

// DefaultDeckID names the embedded deck
const DefaultDeckID = "rider-waite-smith"

// DefaultLanguage is used when no meanings file matches the requested language
const DefaultLanguage = "en"

//go:embed data/rider-waite-smith
var embedded embed.FS

const embeddedRoot = "data/rider-waite-smith"

// Deck is a tarot deck definition: metadata plus the texts of all 78 cards
type Deck struct {
	ID          string
	Name        string
	Version     string
	Author      string
	Description string
	Path        string // Empty for the embedded deck
	Language    string

	cards map[string]card.Card
}

// Load reads a deck definition from a directory. Cards missing from the
// deck's meanings file are filled in from the embedded deck.
func Load(deckPath, lang string) (*Deck, error) {
	deckTomlPath := filepath.Join(deckPath, "deck.toml")
	if _, err := os.Stat(deckTomlPath); os.IsNotExist(err) {
		return nil, errors.Errorf("deck.toml not found in %s", deckPath)
	}

	var config DeckConfig
	if _, err := toml.DecodeFile(deckTomlPath, &config); err != nil {
		return nil, errors.Wrap(err, "parse deck.toml")
	}

	d := newDeck(config.Deck, deckPath)

	meanings, usedLang, err := readMeanings(os.DirFS(deckPath), lang)
	if err != nil {
		return nil, errors.WithMessagef(err, "load meanings for deck %s", d.ID)
	}
	d.Language = usedLang
	d.apply(meanings)

	if d.missing() > 0 {
		fallback, err := Default()
		if err != nil {
			return nil, err
		}
		for id, c := range fallback.cards {
			if have, ok := d.cards[id]; !ok || have.Name == "" {
				d.cards[id] = c
			} else {
				d.cards[id] = fill(have, c)
			}
		}
	}

	return d, nil
}

// Default returns the embedded Rider-Waite-Smith deck with English texts
func Default() (*Deck, error) {
	root, err := fs.Sub(embedded, embeddedRoot)
	if err != nil {
		return nil, errors.Wrap(err, "open embedded deck")
	}

	var config DeckConfig
	raw, err := fs.ReadFile(root, "deck.toml")
	if err != nil {
		return nil, errors.Wrap(err, "read embedded deck.toml")
	}
	if _, err := toml.Decode(string(raw), &config); err != nil {
		return nil, errors.Wrap(err, "parse embedded deck.toml")
	}

	d := newDeck(config.Deck, "")
	meanings, lang, err := readMeanings(root, DefaultLanguage)
	if err != nil {
		return nil, errors.WithMessage(err, "load embedded meanings")
	}
	d.Language = lang
	d.apply(meanings)
	return d, nil
}

// Resolve finds a deck by name. The embedded deck's ID resolves to the
// embedded deck unless the library holds a directory of that name; other names
// are looked up in the library directory and then as a path.
func Resolve(name, libraryPath, lang string) (*Deck, error) {
	if name == "" {
		name = DefaultDeckID
	}

	if libraryPath != "" {
		candidate := filepath.Join(libraryPath, name)
		if isDir(candidate) {
			return Load(candidate, lang)
		}
	}

	if name == DefaultDeckID {
		return Default()
	}

	if isDir(name) {
		return Load(name, lang)
	}

	return nil, errors.Errorf("deck not found: %s", name)
}

// Selection is the deck chosen by Select
type Selection struct {
	Deck *Deck
	// Fallback is why the configured default was replaced by the embedded
	// deck; nil when no fallback happened
	Fallback error
}

// Select resolves the requested deck, or the configured default when none
// was requested. A requested deck that cannot be found is an error; a
// configured default that cannot be found falls back to the embedded deck.
func Select(requested, configured, libraryPath, lang string) (Selection, error) {
	name := requested
	if name == "" {
		name = configured
	}

	d, err := Resolve(name, libraryPath, lang)
	if err == nil {
		return Selection{Deck: d}, nil
	}
	if requested != "" || name == "" || name == DefaultDeckID {
		return Selection{}, err
	}

	fallback, derr := Default()
	if derr != nil {
		return Selection{}, derr
	}
	return Selection{Deck: fallback, Fallback: err}, nil
}

// Cards returns all cards in canonical order: major arcana 00-21, then each
// suit from ace to king.
func (d *Deck) Cards() []card.Card {
	ids := CanonicalIDs()
	out := make([]card.Card, 0, len(ids))
	for _, id := range ids {
		if c, ok := d.cards[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Card gets a card by its canonical ID
func (d *Deck) Card(cardID string) (card.Card, error) {
	parts := strings.Split(cardID, ".")
	valid := (len(parts) == 2 && parts[0] == string(card.MajorArcana)) ||
		(len(parts) == 3 && parts[0] == string(card.MinorArcana))
	if !valid {
		return card.Card{}, fmt.Errorf("invalid card ID format: %s", cardID)
	}

	c, ok := d.cards[cardID]
	if !ok {
		return card.Card{}, fmt.Errorf("card not found: %s", cardID)
	}
	return c, nil
}

// CanonicalIDs lists the 78 card IDs in canonical order
func CanonicalIDs() []string {
	ids := make([]string, 0, 78)
	for i := 0; i <= 21; i++ {
		ids = append(ids, card.MajorID(i))
	}
	for _, suit := range card.Suits {
		for _, rank := range card.Ranks {
			ids = append(ids, card.MinorID(suit, rank))
		}
	}
	return ids
}

func newDeck(section DeckSection, path string) *Deck {
	return &Deck{
		ID:          section.ID,
		Name:        section.Name,
		Version:     section.Version,
		Author:      section.Author,
		Description: section.Description,
		Path:        path,
		cards:       make(map[string]card.Card, 78),
	}
}

// apply builds cards from a meanings file. Unknown suits, ranks and numbers
// are ignored.
func (d *Deck) apply(m Meanings) {
	for i := 0; i <= 21; i++ {
		number := fmt.Sprintf("%02d", i)
		text, ok := m.MajorArcana[number]
		if !ok {
			continue
		}
		d.cards[card.MajorID(i)] = card.Card{
			ID:       card.MajorID(i),
			Name:     text.Name,
			Arcana:   card.MajorArcana,
			Number:   number,
			Meaning:  text.Meaning,
			Upright:  text.Upright,
			Reversed: text.Reversed,
		}
	}

	for _, suit := range card.Suits {
		ranks, ok := m.MinorArcana[suit]
		if !ok {
			continue
		}
		for _, rank := range card.Ranks {
			text, ok := ranks[rank]
			if !ok {
				continue
			}
			d.cards[card.MinorID(suit, rank)] = card.Card{
				ID:       card.MinorID(suit, rank),
				Name:     text.Name,
				Arcana:   card.MinorArcana,
				Suit:     suit,
				Rank:     rank,
				Meaning:  text.Meaning,
				Upright:  text.Upright,
				Reversed: text.Reversed,
			}
		}
	}
}

// missing counts cards absent from the deck or lacking any text
func (d *Deck) missing() int {
	n := 0
	for _, id := range CanonicalIDs() {
		c, ok := d.cards[id]
		if !ok || c.Name == "" || c.Meaning == "" || c.Upright == "" || c.Reversed == "" {
			n++
		}
	}
	return n
}

func fill(have, fallback card.Card) card.Card {
	if have.Meaning == "" {
		have.Meaning = fallback.Meaning
	}
	if have.Upright == "" {
		have.Upright = fallback.Upright
	}
	if have.Reversed == "" {
		have.Reversed = fallback.Reversed
	}
	return have
}

// readMeanings decodes meanings/<lang>.toml, falling back to English and then
// to the first meanings file found.
func readMeanings(fsys fs.FS, lang string) (Meanings, string, error) {
	var m Meanings

	entries, err := fs.ReadDir(fsys, "meanings")
	if err != nil {
		return m, "", errors.Wrap(err, "read meanings directory")
	}

	candidates := []string{lang, DefaultLanguage}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".toml" {
			candidates = append(candidates, strings.TrimSuffix(entry.Name(), ".toml"))
		}
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		raw, err := fs.ReadFile(fsys, "meanings/"+candidate+".toml")
		if err != nil {
			continue
		}
		if _, err := toml.Decode(string(raw), &m); err != nil {
			return m, "", errors.Wrapf(err, "parse meanings/%s.toml", candidate)
		}
		return m, candidate, nil
	}

	return m, "", errors.New("no meanings file found")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Install writes the embedded deck to libraryPath/<DefaultDeckID> so it can be
// edited or used as a template. An existing directory is left untouched and
// installed is false.
func Install(libraryPath string) (dest string, installed bool, err error) {
	dest = filepath.Join(libraryPath, DefaultDeckID)
	if isDir(dest) {
		return dest, false, nil
	}

	err = fs.WalkDir(embedded, embeddedRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, embeddedRoot), "/")
		target := filepath.Join(dest, filepath.FromSlash(rel))
		if entry.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := embedded.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
	if err != nil {
		return dest, false, errors.Wrap(err, "install embedded deck")
	}
	return dest, true, nil
}
