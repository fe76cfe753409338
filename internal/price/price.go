// Package price turns free-form price text into a numeric range.
//
// Any digit run counts and currency symbols are ignored. The first two
// numbers are returned in the order they appear.
package price

import (
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches a run of digits with embedded thousands separators
var numberPattern = regexp.MustCompile(`\d[\d,]*`)

// Range is a parsed price. Both bounds are nil when no number was found.
type Range struct {
	Min *int
	Max *int
}

// Empty reports whether no number was found
func (r Range) Empty() bool {
	return r.Min == nil && r.Max == nil
}

// Parse extracts a price range from text.
//
//	"$550-1,140" -> (550, 1140)
//	"¥2,980"     -> (2980, 2980)
//	""           -> (nil, nil)
func Parse(text string) Range {
	text = strings.ReplaceAll(text, "\u00a0", "")
	if text == "" {
		return Range{}
	}

	var values []int
	for _, token := range numberPattern.FindAllString(text, -1) {
		value, err := strconv.Atoi(strings.ReplaceAll(token, ",", ""))
		if err != nil {
			// overflow
			continue
		}
		values = append(values, value)
		if len(values) == 2 {
			break
		}
	}

	switch len(values) {
	case 0:
		return Range{}
	case 1:
		return Range{Min: intPtr(values[0]), Max: intPtr(values[0])}
	default:
		return Range{Min: intPtr(values[0]), Max: intPtr(values[1])}
	}
}

// ParseField parses an optional extracted field
func ParseField(text *string) Range {
	if text == nil {
		return Range{}
	}
	return Parse(*text)
}

func intPtr(v int) *int {
	return &v
}
