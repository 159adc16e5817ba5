package locale

import (
	"strconv"
	"strings"
)

// nbsp separates thousands and the currency symbol in French typography.
const nbsp = "\u00a0"

// FormatPrice renders an amount expressed in minor units the French way,
// with the symbol after the amount: "25 000 FCFA", "19,99 €".
func FormatPrice(amountMinor int64, info Info) string {
	neg := amountMinor < 0
	if neg {
		amountMinor = -amountMinor
	}

	unit := int64(1)
	for i := 0; i < info.Decimals; i++ {
		unit *= 10
	}
	whole := amountMinor / unit
	frac := amountMinor % unit

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString(groupThousands(strconv.FormatInt(whole, 10)))
	if info.Decimals > 0 {
		fs := strconv.FormatInt(frac, 10)
		b.WriteString(",")
		b.WriteString(strings.Repeat("0", info.Decimals-len(fs)))
		b.WriteString(fs)
	}
	if info.CurrencySymbol != "" {
		b.WriteString(nbsp)
		b.WriteString(info.CurrencySymbol)
	}
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(nbsp)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
