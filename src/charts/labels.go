package charts

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d{3})?(Z|[+-]\d{2}:\d{2})?)?$`)

// Labelize converts a data key or value to a display label. ISO-8601 dates
// render as a calendar date ("Mon Jan 15 2024"); anything else has its
// underscores replaced by spaces and every word capitalised.
func Labelize(v any) string {
	s := stringify(v)
	if isoDate.MatchString(s) {
		if t, ok := ParseDate(s); ok {
			return t.Format("Mon Jan 02 2006")
		}
	}
	return titleWords(strings.ReplaceAll(s, "_", " "))
}

func titleWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevWord := false
	for _, r := range s {
		word := isWordChar(r)
		if word && !prevWord && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
		prevWord = word
	}
	return b.String()
}

func isWordChar(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e21 {
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []byte:
		return string(val)
	}
	return fmt.Sprint(v)
}

// ToKey hashes a category value into a stable config key, using the same
// 31-multiplier 32-bit string hash the chart clients use.
func ToKey(value string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(value)) {
		h = (h << 5) - h + int32(c)
	}
	if h < 0 {
		return -int64(h)
	}
	return int64(h)
}
