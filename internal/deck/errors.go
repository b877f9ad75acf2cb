package deck

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Violation names the constraint a manual selection broke
type Violation int

const (
	WrongCount Violation = iota + 1
	NonNumeric
	OutOfRange
	Duplicate
)

func (v Violation) String() string {
	switch v {
	case WrongCount:
		return "wrong count"
	case NonNumeric:
		return "non-numeric"
	case OutOfRange:
		return "out of range"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// ValidationError is returned for manual selections the user has to retype.
type ValidationError struct {
	Violation Violation
	Want      int    // WrongCount
	Got       int    // WrongCount
	Index     int    // OutOfRange, Duplicate
	Max       int    // OutOfRange; zero when the deck size was not known
	Token     string // NonNumeric, OutOfRange for numbers too large to hold
}

func (e *ValidationError) Error() string {
	switch e.Violation {
	case WrongCount:
		return fmt.Sprintf("please choose exactly %d card(s), got %d", e.Want, e.Got)
	case NonNumeric:
		return fmt.Sprintf("%q is not a number", e.Token)
	case OutOfRange:
		position := strconv.Itoa(e.Index)
		if e.Token != "" {
			position = e.Token
		}
		if e.Max == 0 {
			return fmt.Sprintf("position %s is out of range", position)
		}
		return fmt.Sprintf("position %s is out of range, pick between 1 and %d", position, e.Max)
	case Duplicate:
		return fmt.Sprintf("position %d was chosen more than once", e.Index)
	default:
		return "invalid selection"
	}
}

// ParseIndices splits user input on commas and whitespace into positions.
func ParseIndices(input string) ([]int, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '，' || unicode.IsSpace(r)
	})

	indices := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if errors.Is(err, strconv.ErrRange) {
			return nil, &ValidationError{Violation: OutOfRange, Token: f}
		}
		if err != nil {
			return nil, &ValidationError{Violation: NonNumeric, Token: f}
		}
		indices = append(indices, n)
	}
	return indices, nil
}
