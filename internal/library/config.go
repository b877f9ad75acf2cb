package library

// Deck configuration structures
type DeckConfig struct {
	Deck      DeckSection      `toml:"deck"`
	CardBacks *CardBackSection `toml:"card_backs"`
}

type DeckSection struct {
	ID            string   `toml:"id"`
	Name          string   `toml:"name"`
	Version       string   `toml:"version"`
	SchemaVersion string   `toml:"schema_version"`
	Author        string   `toml:"author"`
	License       string   `toml:"license"`
	Description   string   `toml:"description"`
	Website       string   `toml:"website"`
	Tags          []string `toml:"tags"`
}

type CardBackSection struct {
	Default  string                     `toml:"default"`
	Variants map[string]CardBackVariant `toml:"variants"`
}

type CardBackVariant struct {
	Name    string `toml:"name"`
	Image   string `toml:"image"`
	AltText string `toml:"alt_text"`
}

// Meanings is the layout of meanings/<lang>.toml
type Meanings struct {
	MajorArcana map[string]CardText            `toml:"major_arcana"`
	MinorArcana map[string]map[string]CardText `toml:"minor_arcana"`
}

// CardText holds the localized texts of one card
type CardText struct {
	Name     string `toml:"name"`
	Meaning  string `toml:"meaning"`
	Upright  string `toml:"upright"`
	Reversed string `toml:"reversed"`
}
