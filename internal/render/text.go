package render

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal
const DefaultWidth = 80

// TerminalWidth returns the width of f, or DefaultWidth when f is not a terminal
func TerminalWidth(f *os.File) int {
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// WrapText wraps text to a specified width
func WrapText(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var result []string
	var currentLine string
	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case runeLen(currentLine)+1+runeLen(word) <= width:
			currentLine += " " + word
		default:
			result = append(result, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		result = append(result, currentLine)
	}

	return result
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		switch {
		case inEscape:
			if c == 'm' {
				inEscape = false
			}
		case c == '\033':
			inEscape = true
		default:
			result.WriteRune(c)
		}
	}
	return result.String()
}

func runeLen(s string) int {
	return len([]rune(s))
}
