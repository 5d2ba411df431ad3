package utils

import "strings"

// Persian (۰-۹) and Arabic-Indic (٠-٩) digits mapped to ASCII.
var digitMap = map[rune]rune{
	'۰': '0', '٠': '0',
	'۱': '1', '١': '1',
	'۲': '2', '٢': '2',
	'۳': '3', '٣': '3',
	'۴': '4', '٤': '4',
	'۵': '5', '٥': '5',
	'۶': '6', '٦': '6',
	'۷': '7', '٧': '7',
	'۸': '8', '٨': '8',
	'۹': '9', '٩': '9',
}

// NormalizeDigits replaces Persian and Arabic-Indic digits with their
// ASCII equivalents. Other characters pass through unchanged.
func NormalizeDigits(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if d, ok := digitMap[r]; ok {
			b.WriteRune(d)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
