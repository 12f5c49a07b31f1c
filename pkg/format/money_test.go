package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{283725, "$283,725"},
		{8542.33, "$8,542"},
		{8542.5, "$8,543"},
		{1234567.89, "$1,234,568"},
		{-2500, "-$2,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in), "Currency(%v)", tt.in)
	}
}

func TestCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{950, "$950"},
		{142300, "$142K"},
		{1_250_000, "$1.3M"},
		{2_000_000_000, "$2.0B"},
		{-3200, "-$3K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Compact(tt.in), "Compact(%v)", tt.in)
	}
}

func TestPercentAndNumber(t *testing.T) {
	assert.Equal(t, "92.3%", Percent(0.9234))
	assert.Equal(t, "100.0%", Percent(1))
	assert.Equal(t, "1,000", Number(1000))
	assert.Equal(t, "250", Number(250))
}
