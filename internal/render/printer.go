package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/arcanaland/seer/internal/card"
	"github.com/arcanaland/seer/internal/history"
)

var (
	label    = color.New(color.FgCyan).SprintFunc()
	value    = color.New(color.FgHiWhite).SprintFunc()
	upright  = color.New(color.FgGreen, color.Bold).SprintFunc()
	reversed = color.New(color.FgRed, color.Bold).SprintFunc()
	dim      = color.New(color.Faint).SprintFunc()
)

// Printer writes readings, cards and history records to a terminal
type Printer struct {
	Out   io.Writer
	Width int
}

func NewPrinter(out io.Writer, width int) *Printer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Printer{Out: out, Width: width}
}

// Orientation colors an orientation: green upright, red reversed
func Orientation(o card.Orientation) string {
	if o == card.Reversed {
		return reversed(string(o))
	}
	return upright(string(o))
}

// Cards prints one numbered block per drawn card
func (p *Printer) Cards(question string, cards []card.Card) {
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, label("Question: ")+value(question))
	fmt.Fprintln(p.Out)
	for i, c := range cards {
		p.cardBlock(i+1, c.Snapshot())
	}
}

// Snapshots prints saved cards in the same layout as Cards
func (p *Printer) Snapshots(cards []card.Snapshot) {
	for i, c := range cards {
		p.cardBlock(i+1, c)
	}
}

func (p *Printer) cardBlock(n int, c card.Snapshot) {
	fmt.Fprintf(p.Out, "%s %s (%s)\n", label(fmt.Sprintf("Card %d:", n)), value(c.Name), Orientation(c.Orientation))
	p.field("Core meaning", c.Meaning)
	p.field("Interpretation", c.Interpretation)
	fmt.Fprintln(p.Out)
}

func (p *Printer) field(name, text string) {
	prefix := "  " + name + ": "
	indent := strings.Repeat(" ", runeLen(prefix))
	for i, line := range WrapText(text, p.Width-runeLen(prefix)) {
		if i == 0 {
			fmt.Fprintln(p.Out, "  "+label(name+": ")+line)
			continue
		}
		fmt.Fprintln(p.Out, indent+line)
	}
}

// HistoryList prints entries as numbered lines. Numbers are 1-based positions.
func (p *Printer) HistoryList(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.Out, "No readings saved yet.")
		return
	}
	for _, e := range entries {
		question := e.Record.Question
		if limit := p.Width - 30; limit > 10 && runeLen(question) > limit {
			question = string([]rune(question)[:limit-1]) + "…"
		}
		fmt.Fprintf(p.Out, "%s %s %s\n",
			label(fmt.Sprintf("%3d.", e.Index+1)),
			dim(e.Record.Timestamp),
			value(question))
	}
}

// Record prints a saved reading in full
func (p *Printer) Record(index int, r history.Record, analysis string) {
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, label(fmt.Sprintf("Reading #%d", index+1))+"  "+dim(r.Timestamp))
	fmt.Fprintln(p.Out, label("Question: ")+value(r.Question))
	if r.Mode != "" {
		fmt.Fprintln(p.Out, label("Draw:     ")+value(r.Mode))
	}
	fmt.Fprintln(p.Out)
	p.Snapshots(r.Cards)
	fmt.Fprintln(p.Out, label("Reading:"))
	fmt.Fprintln(p.Out, analysis)
}

// Detail prints a card definition next to optional ANSI art
func (p *Printer) Detail(c card.Card, deckName, art string) {
	var info []string
	info = append(info, label("Card: ")+value(c.Name))
	info = append(info, label("Deck: ")+value(deckName))
	info = append(info, label("ID:   ")+value(c.ID))
	if c.Arcana == card.MajorArcana {
		info = append(info, label("Type: ")+value("Major Arcana"))
	} else {
		info = append(info, label("Type: ")+value("Minor Arcana"))
		info = append(info, label("Suit: ")+value(c.Suit))
		info = append(info, label("Rank: ")+value(c.Rank))
	}

	var artLines []string
	artWidth := 0
	if art != "" {
		artLines = strings.Split(strings.TrimRight(art, "\n"), "\n")
		for _, line := range artLines {
			artWidth = max(artWidth, runeLen(StripANSI(line)))
		}
	}

	const spacing = 4
	infoStartCol := 0
	if artWidth > 0 {
		infoStartCol = artWidth + spacing
	}
	infoWidth := max(p.Width-infoStartCol-2, 20)

	for _, section := range []struct{ name, text string }{
		{"Meaning", c.Meaning},
		{"Upright", c.Upright},
		{"Reversed", c.Reversed},
	} {
		info = append(info, "", label(section.name+":"))
		info = append(info, WrapText(section.text, infoWidth)...)
	}

	fmt.Fprintln(p.Out)
	for i := 0; i < max(len(artLines), len(info)); i++ {
		fmt.Fprint(p.Out, "  ")
		if i < len(artLines) {
			fmt.Fprint(p.Out, artLines[i])
			fmt.Fprint(p.Out, strings.Repeat(" ", infoStartCol-runeLen(StripANSI(artLines[i]))))
		} else {
			fmt.Fprint(p.Out, strings.Repeat(" ", infoStartCol))
		}
		if i < len(info) {
			fmt.Fprint(p.Out, info[i])
		}
		fmt.Fprintln(p.Out)
	}
	fmt.Fprintln(p.Out)
}
