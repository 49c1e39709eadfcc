package parse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrUnparsedAmount = errors.New("unparseable amount")

var currencySymbols = strings.NewReplacer(
	"R$", "",
	"US$", "",
	"$", "",
	"€", "",
	"\u00a0", "",
	" ", "",
	"\t", "",
)

// Currency converts a monetary source value to a float. Missing values yield
// 0 without error; present but unparseable values yield 0 and
// ErrUnparsedAmount.
func Currency(v any) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("%w: %v", ErrUnparsedAmount, val)
		}
		return val, nil
	case float32:
		return Currency(float64(val))
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case []byte:
		return CurrencyText(string(val))
	case string:
		return CurrencyText(val)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrUnparsedAmount, v)
	}
}

// CurrencyText parses Brazilian formatted amounts such as "R$ 1.234,56".
// Periods are thousands separators and the comma is the decimal mark. Text
// without a comma keeps a single period as decimal point unless it is
// followed by exactly three digits ("1.500" is fifteen hundred).
func CurrencyText(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if isBlank(s) {
		return 0, nil
	}

	cleaned := currencySymbols.Replace(s)
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	if strings.HasPrefix(cleaned, "-") {
		negative = !negative
		cleaned = cleaned[1:]
	}
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrUnparsedAmount, s)
	}
	for _, r := range cleaned {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return 0, fmt.Errorf("%w: %q", ErrUnparsedAmount, s)
		}
	}

	switch commas := strings.Count(cleaned, ","); {
	case commas > 1:
		return 0, fmt.Errorf("%w: %q", ErrUnparsedAmount, s)
	case commas == 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	case isThousandsGroup(cleaned):
		cleaned = strings.Replace(cleaned, ".", "", 1)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", ErrUnparsedAmount, s)
	}
	if negative {
		value = -value
	}
	return value, nil
}

func isThousandsGroup(s string) bool {
	before, after, found := strings.Cut(s, ".")
	if !found || len(after) != 3 {
		return false
	}
	return len(before) >= 1 && len(before) <= 3 && before[0] != '0'
}

func isBlank(s string) bool {
	switch strings.ToLower(s) {
	case "", "-", "nan", "none", "null", "nat":
		return true
	}
	return false
}
