package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundFundsHalfUp(t *testing.T) {
	cases := map[string]string{
		"10":     "10.00",
		"10.005": "10.01",
		"10.004": "10.00",
		"0.125":  "0.13",
		"-0.125": "-0.13",
		"2.675":  "2.68",
	}
	for in, want := range cases {
		got := FormatFunds(RoundFunds(decimal.RequireFromString(in)))
		assert.Equal(t, want, got, "round(%s)", in)
	}
}

func TestParseFunds(t *testing.T) {
	amount, err := ParseFunds(" 30.555 ")
	require.NoError(t, err)
	assert.Equal(t, "30.56", FormatFunds(amount))

	_, err = ParseFunds("thirty")
	assert.ErrorIs(t, err, ErrValidation)
}
