package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromFloat(19.99), USD)
	require.NoError(t, err)
	assert.Equal(t, USD, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(19.99)))

	_, err = NewMoney(decimal.Zero, "")
	assert.Error(t, err)
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyUSDFromFloat(100.50)
	b := NewMoneyUSDFromFloat(24.25)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(124.75)))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromFloat(76.25)))

	doubled := a.Mul(decimal.NewFromInt(2))
	assert.True(t, doubled.Amount().Equal(decimal.NewFromFloat(201.00)))
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	usd := NewMoneyUSDFromFloat(10)
	eur, err := NewMoneyFromFloat(10, EUR)
	require.NoError(t, err)

	_, err = usd.Add(eur)
	assert.Error(t, err)
	_, err = usd.Sub(eur)
	assert.Error(t, err)
}

func TestMoneyCents(t *testing.T) {
	m := NewMoneyUSDFromFloat(19.99)
	assert.Equal(t, int64(1999), m.Cents())

	m = NewMoneyUSDFromFloat(0.005)
	assert.Equal(t, int64(1), m.Cents()) // half away from zero
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyUSDFromFloat(42.50)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyComparison(t *testing.T) {
	a := NewMoneyUSDFromFloat(10)
	b := NewMoneyUSDFromFloat(20)

	assert.True(t, a.LessThan(b))
	assert.False(t, b.LessThan(a))
	assert.True(t, a.Equals(NewMoneyUSDFromFloat(10)))
	assert.False(t, ZeroMoney(USD).IsNegative())
	assert.True(t, ZeroMoney(USD).IsZero())
}
