package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Currency markers stripped before numeric parsing. Character class
	// on purpose: it also dismantles "NGN" and "₦" prefixes glued to the
	// number.
	currencyCharsPattern = regexp.MustCompile(`(?i)[₦NGN$,]`)
	whitespacePattern    = regexp.MustCompile(`\s`)
	parenthesesPattern   = regexp.MustCompile(`\((.+?)\)`)
)

// ParseAmount parses a statement amount into a non-negative decimal.
// Accounting-style parentheses mark negatives; the sign is discarded
// because direction is carried separately. Returns false when the value
// is empty or not a number.
func ParseAmount(value string) (decimal.Decimal, bool) {
	str := strings.TrimSpace(value)
	if str == "" {
		return decimal.Zero, false
	}

	cleaned := currencyCharsPattern.ReplaceAllString(str, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, "")
	cleaned = parenthesesPattern.ReplaceAllString(cleaned, "-$1")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Abs(), true
}
