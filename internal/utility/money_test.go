package utility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{2.495, 2.50},
		{2.494, 2.49},
		{1.005, 1.01},
		{10, 10},
		{0.125, 0.13},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RoundMoney(tc.in), "RoundMoney(%v)", tc.in)
	}
	assert.True(t, math.IsNaN(RoundMoney(math.NaN())))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$2.50", FormatMoney(2.5))
	assert.Equal(t, "$0.00", FormatMoney(0))
}
