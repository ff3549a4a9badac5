package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToleranceValidate(t *testing.T) {
	assert.NoError(t, DefaultTolerance().Validate())

	tolerance := DefaultTolerance()
	tolerance.PriceVarianceAbs = decimal.NewFromInt(-1)
	assert.Error(t, tolerance.Validate())

	tolerance = DefaultTolerance()
	tolerance.AutoApproveBelow = decimal.NewFromInt(-500)
	assert.Error(t, tolerance.Validate())
}

func TestWithinTolerance(t *testing.T) {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	total := d("100")

	t.Run("zero variances always pass", func(t *testing.T) {
		assert.True(t, DefaultTolerance().WithinTolerance(VarianceSet{}, total))
	})

	t.Run("any nonzero variance fails zero bands", func(t *testing.T) {
		tolerance := DefaultTolerance()
		assert.False(t, tolerance.WithinTolerance(VarianceSet{Quantity: d("0.01")}, total))
		assert.False(t, tolerance.WithinTolerance(VarianceSet{Price: d("0.01")}, total))
		assert.False(t, tolerance.WithinTolerance(VarianceSet{Total: d("0.01")}, total))
	})

	t.Run("absolute bands admit small variances in both directions", func(t *testing.T) {
		tolerance := Tolerance{
			QuantityVarianceAbs: d("2"),
			PriceVarianceAbs:    d("1"),
			TotalVarianceAbs:    d("5"),
		}
		assert.True(t, tolerance.WithinTolerance(VarianceSet{Quantity: d("2"), Price: d("-1"), Total: d("5")}, total))
		assert.True(t, tolerance.WithinTolerance(VarianceSet{Quantity: d("-2")}, total))
		assert.False(t, tolerance.WithinTolerance(VarianceSet{Quantity: d("2.5")}, total))
	})

	t.Run("every dimension must pass", func(t *testing.T) {
		tolerance := Tolerance{
			QuantityVarianceAbs: d("10"),
			TotalVarianceAbs:    d("10"),
		}
		// price band is zero, so any price variance fails the whole set
		assert.False(t, tolerance.WithinTolerance(VarianceSet{Quantity: d("1"), Price: d("0.01"), Total: d("1")}, total))
	})

	t.Run("total passes via percentage of invoice total", func(t *testing.T) {
		tolerance := Tolerance{TotalVariancePct: d("10")}
		assert.True(t, tolerance.WithinTolerance(VarianceSet{Total: d("10")}, total))
		assert.True(t, tolerance.WithinTolerance(VarianceSet{Total: d("-10")}, total))
		assert.False(t, tolerance.WithinTolerance(VarianceSet{Total: d("10.01")}, total))
	})

	t.Run("percentage band needs a positive invoice total", func(t *testing.T) {
		tolerance := Tolerance{TotalVariancePct: d("10")}
		assert.False(t, tolerance.WithinTolerance(VarianceSet{Total: d("1")}, decimal.Zero))
	})

	t.Run("absolute and percentage total bands are alternatives", func(t *testing.T) {
		tolerance := Tolerance{TotalVarianceAbs: d("3"), TotalVariancePct: d("10")}
		assert.True(t, tolerance.WithinTolerance(VarianceSet{Total: d("3")}, total), "within absolute")
		assert.True(t, tolerance.WithinTolerance(VarianceSet{Total: d("8")}, total), "beyond absolute, within percentage")
		assert.False(t, tolerance.WithinTolerance(VarianceSet{Total: d("12")}, total))
	})
}

func TestVarianceSetIsZero(t *testing.T) {
	assert.True(t, VarianceSet{}.IsZero())
	assert.False(t, VarianceSet{Price: decimal.NewFromInt(1)}.IsZero())
}
