package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityFixedPoint(t *testing.T) {
	q := NewQuantityFromInt(15)
	assert.Equal(t, int64(150_000), q.Int64Scaled())
	assert.Equal(t, "15.0000", q.String())
	assert.Equal(t, int64(15), q.WholeUnits())

	half := NewQuantityFromFloat64(2.5)
	assert.Equal(t, int64(25_000), half.Int64Scaled())
	assert.Equal(t, "2.5000", half.String())

	neg := half.Neg()
	assert.True(t, neg.IsNegative())
	assert.Equal(t, "-2.5000", neg.String())
	assert.Equal(t, half, neg.Abs())
}

func TestQuantityMin(t *testing.T) {
	a := NewQuantityFromInt(3)
	b := NewQuantityFromInt(7)
	assert.Equal(t, a, a.Min(b))
	assert.Equal(t, a, b.Min(a))
}

func TestQuantityMulMinorUnits(t *testing.T) {
	// 2.5 units at 1.99 each = 4.975, truncated to 4.97
	q := NewQuantityFromFloat64(2.5)
	assert.Equal(t, MinorUnits(497), q.MulMinorUnits(199))

	// Whole units multiply exactly.
	ten := NewQuantityFromInt(10)
	assert.Equal(t, MinorUnits(5000), ten.MulMinorUnits(500))
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(12.3456)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "12.3456", string(data))

	var parsed Quantity
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, q, parsed)
}

func TestQuantityUnmarshalFormats(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{`"3"`, 30_000},
		{`3`, 30_000},
		{`"3.5"`, 35_000},
		{`"-1.25"`, -12_500},
		{`"0.00001"`, 0}, // truncated beyond 4 digits
		{`null`, 0},
	}

	for _, tc := range cases {
		var q Quantity
		require.NoError(t, json.Unmarshal([]byte(tc.input), &q), tc.input)
		assert.Equal(t, tc.want, q.Int64Scaled(), tc.input)
	}

	var q Quantity
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &q))
}

func TestMinorUnitsConversion(t *testing.T) {
	m := NewMinorUnitsFromMajor(19.99, 2)
	assert.Equal(t, MinorUnits(1999), m)
	assert.InDelta(t, 19.99, m.ToMajor(2), 0.0001)

	assert.Equal(t, MinorUnits(-1999), m.Neg())
	assert.Equal(t, m, m.Neg().Abs())
}

func TestMoneyFromMinorUnits(t *testing.T) {
	money := MoneyFromMinorUnits(12345)
	assert.Equal(t, "123.45", money.StringFixed(2))
}
