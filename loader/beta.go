package loader

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// NeutralBeta is used wherever an index beta cannot be read as a number.
const NeutralBeta = 1.0

var betaOperators = strings.NewReplacer("<", "", ">", "", "≤", "", "≥", "", "=", "", "~", "")

// ParseLeadingBeta reads the first number out of a free-form index beta such as
// "<0.7", "0.52–0.88" or "1.2 (est.)".
func ParseLeadingBeta(s string) (float64, error) {
	cleaned := betaOperators.Replace(s)
	fields := strings.FieldsFunc(cleaned, func(r rune) bool {
		return unicode.IsSpace(r) || r == '–' || r == '—'
	})
	if len(fields) == 0 {
		return 0, &ConversionError{Value: s}
	}
	token := rangeStart(fields[0])

	d, err := decimal.NewFromString(token)
	if err != nil {
		return 0, &ConversionError{Value: s, Err: err}
	}
	f, _ := d.Float64()
	return f, nil
}

// rangeStart cuts "0.6-1.0" at the range dash. A leading '-' is a sign and a '-'
// after an exponent marker belongs to the number, as in "1e-1".
func rangeStart(token string) string {
	for i := 1; i < len(token); i++ {
		if token[i] == '-' && token[i-1] != 'e' && token[i-1] != 'E' {
			return token[:i]
		}
	}
	return token
}

// NumericBeta is ParseLeadingBeta with conversion failures absorbed into NeutralBeta.
func NumericBeta(s string) float64 {
	f, err := ParseLeadingBeta(s)
	if err != nil {
		return NeutralBeta
	}
	return f
}
