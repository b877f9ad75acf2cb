package prompt

import (
	"fmt"
	"strings"

	"github.com/arcanaland/seer/internal/card"
)

// System is the persona sent as the system message of every reading
const System = "You are a professional tarot reader with deep knowledge of the cards and years of " +
	"experience. Based on the user's question and the cards drawn, you give insightful, accurate " +
	"and thoughtful readings."

// Instructions closes every prompt
const Instructions = "Based on the user's question and the cards drawn, give an insightful, accurate and " +
	"thoughtful reading. The reading should include:\n" +
	"1. What each card means in the context of the question\n" +
	"2. How the cards relate to one another\n" +
	"3. Overall advice addressing the user's question\n" +
	"4. Plain language, avoiding overly technical terms\n" +
	"5. A positive tone that encourages and supports the user"

// Build assembles the user message. Card texts are inserted verbatim.
func Build(question string, cards []card.Card) string {
	var b strings.Builder

	fmt.Fprintf(&b, "User's question: %s\n\n", question)
	b.WriteString("Cards drawn:\n")
	for i, c := range cards {
		fmt.Fprintf(&b, "Card %d: %s (%s)\n", i+1, c.Name, c.Orientation)
		fmt.Fprintf(&b, "Core meaning: %s\n", c.Meaning)
		fmt.Fprintf(&b, "Interpretation: %s\n\n", c.Interpretation())
	}
	b.WriteString(Instructions)

	return b.String()
}
