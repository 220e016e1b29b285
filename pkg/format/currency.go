// Package format renders monetary and ratio values for display.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns amount with the given symbol and thousands separators
// (e.g., "-R$ 1,234.56"). An empty symbol yields the bare number.
func Currency(symbol string, amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	if symbol == "" {
		return sign + formatted
	}
	return sign + symbol + " " + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return Currency("", amount)
}

// Percent renders a whole-number percentage.
func Percent(value float64) string {
	return fmt.Sprintf("%.0f%%", value)
}

// Multiple renders a ratio such as a benefit-cost ratio ("2.40x").
func Multiple(value float64) string {
	return fmt.Sprintf("%.2fx", value)
}

// Months renders a payback period; unknown periods show as infinite.
func Months(value float64, known bool) string {
	if !known {
		return "∞"
	}
	return fmt.Sprintf("%.1f months", value)
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
