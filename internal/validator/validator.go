package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/arcanaland/seer/internal/card"
	"github.com/arcanaland/seer/internal/library"
)

// SupportedSchemaVersion is the only deck.toml schema this build reads
const SupportedSchemaVersion = "1.0"

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the deck has no errors. Warnings are allowed.
func (r ValidationResults) OK() bool {
	return len(r.Errors) == 0
}

type Validator struct {
	DeckPath string
	Results  ValidationResults
}

func NewValidator(deckPath string) *Validator {
	return &Validator{
		DeckPath: deckPath,
		Results:  ValidationResults{},
	}
}

// Validate checks deck.toml and the meanings files. The returned error is
// reserved for decks that cannot be read at all.
func (v *Validator) Validate() (ValidationResults, error) {
	if err := v.validateDeckToml(); err != nil {
		return v.Results, err
	}

	v.validateMeanings()
	v.validateImages()
	v.validateAnsiArt()

	return v.Results, nil
}

func (v *Validator) errorf(format string, args ...any) {
	v.Results.Errors = append(v.Results.Errors, fmt.Sprintf(format, args...))
}

func (v *Validator) warnf(format string, args ...any) {
	v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf(format, args...))
}

func (v *Validator) validateDeckToml() error {
	deckTomlPath := filepath.Join(v.DeckPath, "deck.toml")
	if _, err := os.Stat(deckTomlPath); os.IsNotExist(err) {
		return fmt.Errorf("deck.toml not found in %s", v.DeckPath)
	}

	var deckConfig library.DeckConfig
	if _, err := toml.DecodeFile(deckTomlPath, &deckConfig); err != nil {
		return fmt.Errorf("error parsing deck.toml: %w", err)
	}

	required := []struct{ field, value string }{
		{"deck.id", deckConfig.Deck.ID},
		{"deck.name", deckConfig.Deck.Name},
		{"deck.version", deckConfig.Deck.Version},
	}
	for _, r := range required {
		if r.value == "" {
			v.errorf("%s is required in deck.toml", r.field)
		}
	}

	switch deckConfig.Deck.SchemaVersion {
	case "":
		v.errorf("deck.schema_version is required in deck.toml")
	case SupportedSchemaVersion:
	default:
		v.errorf("unsupported schema_version: %s (supported: %s)", deckConfig.Deck.SchemaVersion, SupportedSchemaVersion)
	}

	if deckConfig.CardBacks != nil {
		if len(deckConfig.CardBacks.Variants) > 1 && deckConfig.CardBacks.Default == "" {
			v.errorf("card_backs.default is required when multiple card back variants are defined")
		}
		for variantName, variant := range deckConfig.CardBacks.Variants {
			if variant.Image == "" {
				v.errorf("card_backs.variants.%s.image is required", variantName)
				continue
			}
			if _, err := os.Stat(filepath.Join(v.DeckPath, variant.Image)); os.IsNotExist(err) {
				v.errorf("card back image not found: %s", variant.Image)
			}
		}
	}
	return nil
}

// validateMeanings requires at least one meanings file and every card to be
// complete in each of them.
func (v *Validator) validateMeanings() {
	meaningsDir := filepath.Join(v.DeckPath, "meanings")
	entries, err := os.ReadDir(meaningsDir)
	if os.IsNotExist(err) {
		v.errorf("meanings directory not found")
		return
	}
	if err != nil {
		v.errorf("error reading meanings directory: %v", err)
		return
	}

	found := false
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		found = true

		var m library.Meanings
		if _, err := toml.DecodeFile(filepath.Join(meaningsDir, entry.Name()), &m); err != nil {
			v.errorf("error parsing meanings file %s: %v", entry.Name(), err)
			continue
		}
		v.validateMeaningsFile(entry.Name(), m)
	}

	if !found {
		v.errorf("no meanings files found in meanings directory")
	}
}

func (v *Validator) validateMeaningsFile(name string, m library.Meanings) {
	var missing, incomplete []string

	check := func(id string, text library.CardText, ok bool) {
		switch {
		case !ok:
			missing = append(missing, id)
		case text.Name == "" || text.Meaning == "" || text.Upright == "" || text.Reversed == "":
			incomplete = append(incomplete, id)
		}
	}

	for i := 0; i <= 21; i++ {
		text, ok := m.MajorArcana[fmt.Sprintf("%02d", i)]
		check(card.MajorID(i), text, ok)
	}
	for _, suit := range card.Suits {
		for _, rank := range card.Ranks {
			text, ok := m.MinorArcana[suit][rank]
			check(card.MinorID(suit, rank), text, ok)
		}
	}

	if len(missing) > 0 {
		v.errorf("missing cards in %s: %s", name, strings.Join(missing, ", "))
	}
	if len(incomplete) > 0 {
		v.errorf("cards without name, meaning, upright or reversed text in %s: %s", name, strings.Join(incomplete, ", "))
	}
}

// validateImages looks for scalable/ or h*/ image directories
func (v *Validator) validateImages() {
	if _, err := os.Stat(filepath.Join(v.DeckPath, "scalable")); err == nil {
		return
	}

	entries, err := os.ReadDir(v.DeckPath)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() && strings.HasPrefix(entry.Name(), "h") {
				if _, err := fmt.Sscanf(entry.Name(), "h%d", new(int)); err == nil {
					return
				}
			}
		}
	}

	v.warnf("no image directories found (scalable/ or h*/); show will have no art to convert")
}

func (v *Validator) validateAnsiArt() {
	entries, err := os.ReadDir(v.DeckPath)
	if err != nil {
		v.errorf("error reading deck directory: %v", err)
		return
	}

	foundAnsiDir := false
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "ansi") {
			foundAnsiDir = true
			v.validateAnsiDirectory(filepath.Join(v.DeckPath, entry.Name()), entry.Name())
		}
	}

	if !foundAnsiDir {
		v.warnf("no ANSI art directories found (ansi32/, ansi256/, etc.)")
	}
}

// validateAnsiDirectory reports cards without a .ansi file
func (v *Validator) validateAnsiDirectory(ansiDir, dirName string) {
	var missing []string
	for _, id := range library.CanonicalIDs() {
		rel := filepath.Join(strings.Split(id, ".")...) + ".ansi"
		if _, err := os.Stat(filepath.Join(ansiDir, rel)); os.IsNotExist(err) {
			missing = append(missing, id)
		}
	}

	switch {
	case len(missing) == 78:
		v.warnf("%s contains no card art", dirName)
	case len(missing) > 0:
		v.warnf("missing ANSI art in %s: %s", dirName, strings.Join(missing, ", "))
	}
}
