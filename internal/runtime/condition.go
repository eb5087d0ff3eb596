package runtime

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/chatflow/pkg/domain"
)

// numericPrefix matches the longest leading decimal literal of a string.
var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// EvaluateCondition reports whether input satisfies c.
// A nil condition, an empty input or an unknown operator never match.
// Textual operators compare case-insensitively; numeric operators parse the
// leading number of each side and fail when either side has none.
func EvaluateCondition(c *domain.Condition, input string) bool {
	if c == nil || input == "" {
		return false
	}

	in := strings.ToLower(input)
	val := strings.ToLower(c.Value)

	switch c.Operator {
	case domain.OpEquals:
		return in == val
	case domain.OpNotEquals:
		return in != val
	case domain.OpContains:
		return strings.Contains(in, val)
	case domain.OpGreaterThan:
		return parseLeadingFloat(input) > parseLeadingFloat(c.Value)
	case domain.OpLessThan:
		return parseLeadingFloat(input) < parseLeadingFloat(c.Value)
	default:
		return false
	}
}

// parseLeadingFloat returns the number at the start of s, ignoring leading
// whitespace and any trailing text. It returns NaN when s does not start with a number.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := numericPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}
