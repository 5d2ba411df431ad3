package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDigits(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"1403/01/01", "1403/01/01"},
		{"۱۴۰۳/۰۱/۰۱", "1403/01/01"},
		{"فاکتور ۴۲", "فاکتور 42"},
		{"٠١٢٣٤٥٦٧٨٩", "0123456789"},
		{"۰۱۲۳۴۵۶۷۸۹", "0123456789"},
		{"mixed۵and٥", "mixed5and5"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeDigits(c.in), "input %q", c.in)
	}
}
