package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyUSDFromString(t *testing.T) {
	t.Run("parses valid amount", func(t *testing.T) {
		m, err := NewMoneyUSDFromString("1000.00")
		require.NoError(t, err)
		assert.Equal(t, "1000.00 USD", m.String())
	})

	t.Run("rejects unparsable amount", func(t *testing.T) {
		_, err := NewMoneyUSDFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	ten := NewMoneyUSD(decimal.NewFromInt(10))
	three := NewMoneyUSD(decimal.NewFromInt(3))

	t.Run("add", func(t *testing.T) {
		sum, err := ten.Add(three)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(13)))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := three.Subtract(ten)
		require.NoError(t, err)
		assert.True(t, diff.IsNegative())
		assert.True(t, diff.Abs().Amount().Equal(decimal.NewFromInt(7)))
	})

	t.Run("multiply", func(t *testing.T) {
		prod := ten.Multiply(decimal.NewFromFloat(1.5))
		assert.True(t, prod.Amount().Equal(decimal.NewFromInt(15)))
	})

	t.Run("currency mismatch is an error", func(t *testing.T) {
		eur, err := NewMoney(decimal.NewFromInt(5), EUR)
		require.NoError(t, err)
		_, err = ten.Add(eur)
		assert.Error(t, err)
		_, err = ten.Subtract(eur)
		assert.Error(t, err)
		_, err = ten.GreaterThan(eur)
		assert.Error(t, err)
	})
}

func TestMoneyComparison(t *testing.T) {
	small := NewMoneyUSD(decimal.NewFromInt(5))
	big := NewMoneyUSD(decimal.NewFromInt(500))

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	lte, err := small.LessThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, lte)

	assert.True(t, small.Equals(NewMoneyUSD(decimal.NewFromInt(5))))
	assert.False(t, small.Equals(big))
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyUSD(decimal.NewFromFloat(42.50))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"42.5","currency":"USD"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equals(back))
}

func TestMoneyScan(t *testing.T) {
	t.Run("scans string amount with default currency", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("12.34"))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(12.34)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("nil scans to zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("invalid value is an error", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan("abc"))
		assert.Error(t, m.Scan(struct{}{}))
	})
}
