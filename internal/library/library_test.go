package library_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/seer/internal/card"
	"github.com/arcanaland/seer/internal/library"
)

func TestDefaultDeckIsComplete(t *testing.T) {
	d, err := library.Default()
	require.NoError(t, err)

	assert.Equal(t, library.DefaultDeckID, d.ID)
	assert.Equal(t, "en", d.Language)

	cards := d.Cards()
	require.Len(t, cards, 78)

	major, minor := 0, 0
	seen := map[string]bool{}
	for _, c := range cards {
		assert.False(t, seen[c.Name], "duplicate name %s", c.Name)
		seen[c.Name] = true

		assert.NotEmpty(t, c.Name, c.ID)
		assert.NotEmpty(t, c.Meaning, c.ID)
		assert.NotEmpty(t, c.Upright, c.ID)
		assert.NotEmpty(t, c.Reversed, c.ID)
		assert.Empty(t, c.Orientation, "definitions carry no orientation")

		switch c.Arcana {
		case card.MajorArcana:
			major++
		case card.MinorArcana:
			minor++
			assert.Contains(t, card.Suits, c.Suit)
		}
	}
	assert.Equal(t, 22, major)
	assert.Equal(t, 56, minor)

	assert.Equal(t, "major_arcana.00", cards[0].ID)
	assert.Equal(t, "minor_arcana.pentacles.king", cards[77].ID)
}

func TestCardLookup(t *testing.T) {
	d, err := library.Default()
	require.NoError(t, err)

	c, err := d.Card("major_arcana.16")
	require.NoError(t, err)
	assert.Equal(t, "The Tower", c.Name)

	c, err = d.Card("minor_arcana.cups.queen")
	require.NoError(t, err)
	assert.Equal(t, "Queen of Cups", c.Name)
	assert.Equal(t, "cups", c.Suit)

	_, err = d.Card("tower")
	assert.Error(t, err)
	_, err = d.Card("minor_arcana.coins.ace")
	assert.Error(t, err)
}

func writeDeck(t *testing.T, dir, meanings string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "meanings"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deck.toml"), []byte(`
[deck]
id = "night-sky"
name = "Night Sky"
version = "0.1.0"
schema_version = "1.0"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meanings", "en.toml"), []byte(meanings), 0o644))
}

func TestLoadFallsBackToEmbeddedTexts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "night-sky")
	writeDeck(t, dir, `
[major_arcana."17"]
name = "The Lodestar"
meaning = "Guidance"
upright = "Follow the light"

[minor_arcana.cups.ace]
name = "Ace of Chalices"
meaning = "Overflow"
upright = "Joy spills over"
reversed = "Emptied out"
`)

	d, err := library.Load(dir, "en")
	require.NoError(t, err)
	assert.Equal(t, "night-sky", d.ID)
	assert.Equal(t, dir, d.Path)
	require.Len(t, d.Cards(), 78)

	star, err := d.Card("major_arcana.17")
	require.NoError(t, err)
	assert.Equal(t, "The Lodestar", star.Name)
	assert.Equal(t, "Follow the light", star.Upright)
	assert.Equal(t, "Loss of hope, pessimism", star.Reversed, "empty text filled from embedded deck")

	ace, err := d.Card("minor_arcana.cups.ace")
	require.NoError(t, err)
	assert.Equal(t, "Ace of Chalices", ace.Name)

	fool, err := d.Card("major_arcana.00")
	require.NoError(t, err)
	assert.Equal(t, "The Fool", fool.Name)
}

func TestLoadPicksAvailableLanguage(t *testing.T) {
	dir := t.TempDir()
	writeDeck(t, dir, `
[major_arcana."00"]
name = "The Fool"
meaning = "m"
upright = "u"
reversed = "r"
`)

	d, err := library.Load(dir, "fr")
	require.NoError(t, err)
	assert.Equal(t, "en", d.Language)
}

func TestLoadErrors(t *testing.T) {
	_, err := library.Load(t.TempDir(), "en")
	assert.ErrorContains(t, err, "deck.toml not found")

	dir := t.TempDir()
	writeDeck(t, dir, "this is = = not toml")
	_, err = library.Load(dir, "en")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	libraryPath := t.TempDir()
	writeDeck(t, filepath.Join(libraryPath, "night-sky"), "")

	d, err := library.Resolve("", libraryPath, "en")
	require.NoError(t, err)
	assert.Equal(t, library.DefaultDeckID, d.ID)
	assert.Empty(t, d.Path)

	d, err = library.Resolve("night-sky", libraryPath, "en")
	require.NoError(t, err)
	assert.Equal(t, "night-sky", d.ID)

	_, err = library.Resolve("missing-deck", libraryPath, "en")
	assert.ErrorContains(t, err, "deck not found")
}

func TestCanonicalIDs(t *testing.T) {
	ids := library.CanonicalIDs()
	require.Len(t, ids, 78)
	assert.Equal(t, "major_arcana.21", ids[21])
	assert.Equal(t, "minor_arcana.wands.ace", ids[22])
}

func TestInstall(t *testing.T) {
	libraryPath := t.TempDir()

	dest, installed, err := library.Install(libraryPath)
	require.NoError(t, err)
	assert.True(t, installed)
	assert.FileExists(t, filepath.Join(dest, "deck.toml"))
	assert.FileExists(t, filepath.Join(dest, "meanings", "en.toml"))

	d, err := library.Resolve(library.DefaultDeckID, libraryPath, "en")
	require.NoError(t, err)
	assert.Equal(t, dest, d.Path)
	assert.Len(t, d.Cards(), 78)

	_, installed, err = library.Install(libraryPath)
	require.NoError(t, err)
	assert.False(t, installed, "an existing deck is kept")
}

func TestSelect(t *testing.T) {
	libraryPath := t.TempDir()
	writeDeck(t, filepath.Join(libraryPath, "night-sky"), "")

	sel, err := library.Select("", "night-sky", libraryPath, "en")
	require.NoError(t, err)
	assert.Equal(t, "night-sky", sel.Deck.ID)
	assert.NoError(t, sel.Fallback)

	sel, err = library.Select("", "", libraryPath, "en")
	require.NoError(t, err)
	assert.Equal(t, library.DefaultDeckID, sel.Deck.ID)

	sel, err = library.Select(library.DefaultDeckID, "night-sky", libraryPath, "en")
	require.NoError(t, err)
	assert.Equal(t, library.DefaultDeckID, sel.Deck.ID, "requested deck wins over the default")
}

func TestSelectMissingDefaultFallsBack(t *testing.T) {
	sel, err := library.Select("", "gone-deck", t.TempDir(), "en")
	require.NoError(t, err)
	assert.Equal(t, library.DefaultDeckID, sel.Deck.ID)
	assert.ErrorContains(t, sel.Fallback, "deck not found: gone-deck")
}

func TestSelectMissingRequestedDeckFails(t *testing.T) {
	_, err := library.Select("gone-deck", library.DefaultDeckID, t.TempDir(), "en")
	assert.ErrorContains(t, err, "deck not found: gone-deck")
}
