package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/arcanaland/seer/internal/card"
)

// clipboardWriteAll is a package var so tests can stub it
var clipboardWriteAll = clipboard.WriteAll

// Summary is the short text copied after a reading:
// the question followed by one line per card.
func Summary(question string, cards []card.Snapshot) string {
	lines := []string{"Question: " + question}
	for i, c := range cards {
		lines = append(lines, fmt.Sprintf("Card %d: %s (%s)", i+1, c.Name, c.Orientation))
	}
	return strings.Join(lines, "\n")
}

// Copy puts text on the system clipboard. When no clipboard is available the
// text is printed to w instead and copied is false.
func Copy(w io.Writer, text string) (copied bool) {
	if err := clipboardWriteAll(text); err == nil {
		return true
	}

	fmt.Fprintln(w, "=== Card summary ===")
	fmt.Fprintln(w, text)
	fmt.Fprintln(w, "====================")
	return false
}
