package sparkplug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueValidate_MatchingShape(t *testing.T) {
	vals := []Value{
		NewInt32(42),
		NewUInt64(18446744073709551615),
		NewBoolean(true),
		NewString("hello"),
		NewFloatArray([]float32{1, 2, 3}),
		NewDataSet(DataSet{}),
	}
	for _, v := range vals {
		assert.NoError(t, v.Validate(), "type %s", v.Type)
	}
}

func TestValueValidate_ShapeMismatch(t *testing.T) {
	v := Value{Type: Int32, Raw: "not an int32"}
	err := v.Validate()
	require.Error(t, err)
	assert.Equal(t, InvalidType, KindOf(err))
}

func TestValueValidate_UnknownType(t *testing.T) {
	v := Value{Type: MetricDataType(999), Raw: 1}
	err := v.Validate()
	require.Error(t, err)
	assert.Equal(t, UnknownType, KindOf(err))
}

func TestValueIsNull(t *testing.T) {
	assert.True(t, None(Int32).IsNull())
	assert.False(t, NewInt32(0).IsNull())
}

func TestNewUInt64FromBig_Rejects(t *testing.T) {
	_, err := NewUInt64FromBig(true, 0, false)
	require.Error(t, err)
	assert.Equal(t, OutOfRange, KindOf(err))

	_, err = NewUInt64FromBig(false, 0, true)
	require.Error(t, err)
	assert.Equal(t, OutOfRange, KindOf(err))

	v, err := NewUInt64FromBig(false, 7, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v.Raw)
}

func TestToBoolean(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{int32(0), false},
		{int32(5), true},
		{"true", true},
		{"FALSE", false},
		{float64(0), false},
		{float64(1.5), true},
	}
	for _, c := range cases {
		got, err := ToBoolean(c.in)
		require.NoError(t, err, "input %v", c.in)
		assert.Equal(t, c.want, got, "input %v", c.in)
	}

	_, err := ToBoolean("maybe")
	require.Error(t, err)
	assert.Equal(t, InvalidType, KindOf(err))
}
