// Package comparator diffs program output against an expected answer.
package comparator

import (
	"strings"

	"github.com/hiturf/ow-oi-assistant/internal/sandbox/result"
)

// Compare diffs actual against expected line by line. Pure function, no
// I/O.
//
// When ignoreWhitespace is set, every run of whitespace (newlines
// included) collapses to a single space before line splitting, so the
// comparison is also line-insensitive: multi-line output folds into one
// logical line. That matches how judges usually accept "8" for "8\n" and
// is intentional, not an accident of implementation.
func Compare(actual, expected string, ignoreWhitespace, ignoreCase bool) result.ComparisonResult {
	if ignoreWhitespace {
		actual = strings.Join(strings.Fields(actual), " ")
		expected = strings.Join(strings.Fields(expected), " ")
	}
	if ignoreCase {
		actual = strings.ToLower(actual)
		expected = strings.ToLower(expected)
	}

	actualLines := splitLines(actual)
	expectedLines := splitLines(expected)

	var differences []result.Difference
	max := len(actualLines)
	if len(expectedLines) > max {
		max = len(expectedLines)
	}
	for i := 0; i < max; i++ {
		actualLine := ""
		if i < len(actualLines) {
			actualLine = actualLines[i]
		}
		expectedLine := ""
		if i < len(expectedLines) {
			expectedLine = expectedLines[i]
		}
		if actualLine != expectedLine {
			differences = append(differences, result.Difference{
				Line:     i + 1,
				Actual:   actualLine,
				Expected: expectedLine,
			})
		}
	}

	return result.ComparisonResult{
		Match:         len(differences) == 0,
		Differences:   differences,
		ActualLines:   len(actualLines),
		ExpectedLines: len(expectedLines),
	}
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}
