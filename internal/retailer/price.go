package retailer

import (
	"fmt"
	"strconv"
	"strings"
)

// Fallback display strings for prices that cannot be coerced to a number.
const (
	PriceVaries       = "Price varies"
	PriceNotAvailable = "Price not available"
)

// ParsePriceValue coerces the heterogeneous price shapes retailer APIs return
// (float dollars, integer cents-free dollars, formatted string, nested
// {value, currency} object) into a numeric dollar amount. The second return
// is false when no numeric value is extractable.
func ParsePriceValue(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return v, v > 0
	case float32:
		return float64(v), v > 0
	case int:
		return float64(v), v > 0
	case int64:
		return float64(v), v > 0
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f <= 0 {
			return 0, false
		}
		return f, true
	case map[string]interface{}:
		// Nested object, e.g. {"value": 5, "currency": "USD"} or {"raw": "$5.00"}.
		if inner, ok := v["value"]; ok {
			if f, ok := ParsePriceValue(inner); ok {
				return f, true
			}
		}
		if inner, ok := v["raw"]; ok {
			return ParsePriceValue(inner)
		}
		return 0, false
	}
	return 0, false
}

// FormatUSD renders a dollar amount as a two-decimal display string.
// The input is assumed to already be dollars, never cents.
func FormatUSD(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// FormatPrice coerces a raw retailer price into the single display shape used
// by search results: "$<amount>" with two decimals, or PriceVaries when no
// numeric value is extractable. Never emits a double currency symbol.
func FormatPrice(raw interface{}) string {
	if f, ok := ParsePriceValue(raw); ok {
		return FormatUSD(f)
	}
	return PriceVaries
}

// FormatItemPrice is FormatPrice with the pricing-display fallback: a missing
// price renders as PriceNotAvailable rather than PriceVaries.
func FormatItemPrice(raw interface{}) string {
	if f, ok := ParsePriceValue(raw); ok {
		return FormatUSD(f)
	}
	return PriceNotAvailable
}
