package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "27.50", FormatMoney(decimal.RequireFromString("27.5")))
	assert.Equal(t, "0.30", FormatMoney(decimal.RequireFromString("0.1").Add(decimal.RequireFromString("0.2"))))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatCurrency(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$999.00", FormatCurrency(decimal.NewFromInt(999)))
	assert.Equal(t, "-$1,000,000.00", FormatCurrency(decimal.NewFromInt(-1000000)))
}

func TestParseMoney(t *testing.T) {
	d, err := ParseMoney(" $1,234.50 ")
	require.NoError(t, err)
	assert.Equal(t, "1234.5", d.String())

	_, err = ParseMoney("")
	assert.Error(t, err)
}

func TestTruncateAndSplit(t *testing.T) {
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ;b ;"))
	assert.Equal(t, "a_b_c", SafeFilenamePart("a b/c"))
}
