package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// MaxMarkdownWidth caps the wrap width of rendered readings
const MaxMarkdownWidth = 100

var (
	renderersMu sync.Mutex
	renderers   = map[int]*glamour.TermRenderer{}
)

// Markdown renders a reading for the terminal. The plain text is returned
// when rendering fails.
func Markdown(text string, width int) string {
	switch {
	case width <= 0:
		width = DefaultWidth
	case width > MaxMarkdownWidth:
		width = MaxMarkdownWidth
	}

	renderersMu.Lock()
	defer renderersMu.Unlock()

	renderer, err := markdownRenderer(width)
	if err != nil {
		return text
	}

	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// markdownRenderer returns the cached renderer for width; renderersMu is held
func markdownRenderer(width int) (*glamour.TermRenderer, error) {
	if r, ok := renderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	renderers[width] = r
	return r, nil
}
