package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidCurrency(t *testing.T) {
	m, err := New(22.5, EUR)
	require.NoError(t, err)
	assert.InDelta(t, 22.5, m.Amount, 1e-9)
	assert.Equal(t, EUR, m.Currency)
}

func TestNew_InvalidCurrency(t *testing.T) {
	for _, code := range []Code{"", "EU", "EURO", "eur", "E1R"} {
		_, err := New(10, code)
		assert.ErrorIs(t, err, ErrInvalidCurrency, "code %q", code)
	}
}

func TestMust_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { Must(1, "nope") })
}

func TestRound2_HalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{22.954, 22.95},
		{22.945, 22.95},
		{0.005, 0.01},
		{10.0, 10.0},
		{-1.004, -1.0},
		{0, 0},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, Round2(c.in), 1e-9, "Round2(%v)", c.in)
	}
}

func TestRound4(t *testing.T) {
	assert.InDelta(t, 0.1235, Round4(0.12345), 1e-9)
	assert.InDelta(t, 1.0, Round4(0.99995), 1e-9)
}

func TestString(t *testing.T) {
	assert.Equal(t, "19.99 USD", Must(19.994, USD).String())
}
