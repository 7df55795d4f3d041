package oracle

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// equivalent is a deterministic answer check used by the static oracle:
// normalized string equality first, then numeric comparison with a small
// absolute tolerance. It has none of the AI judge's leniency for symbolic
// forms; it only needs to be right for the simple answers the static
// oracle generates.
func equivalent(correct, answer string) bool {
	nc, na := normalizeAnswer(correct), normalizeAnswer(answer)
	if nc == na {
		return true
	}

	// "x=2" vs "2"
	if i := strings.LastIndex(nc, "="); i >= 0 && nc[i+1:] == na {
		return true
	}
	if i := strings.LastIndex(na, "="); i >= 0 && na[i+1:] == nc {
		return true
	}

	cv, cok := parseNumeric(nc)
	av, aok := parseNumeric(na)
	if cok && aok {
		return math.Abs(cv-av) <= 1e-9*math.Max(1, math.Abs(cv))
	}
	return false
}

// normalizeAnswer casefolds, strips whitespace, and standardizes exponent
// notation.
func normalizeAnswer(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return strings.ReplaceAll(string(out), "^", "**")
}

// parseNumeric parses plain decimals and simple fractions like "1/2".
func parseNumeric(s string) (float64, bool) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 == nil && err2 == nil && d != 0 {
			return n / d, true
		}
	}
	return 0, false
}
