package sparkplug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertySet_SetGet(t *testing.T) {
	var ps PropertySet
	ps.Set("engUnit", PropertyValue{Type: PropString, Raw: "psi"})
	v, ok := ps.Get("engUnit")
	require.True(t, ok)
	assert.Equal(t, "psi", v.Raw)

	ps.Set("engUnit", PropertyValue{Type: PropString, Raw: "bar"})
	v, ok = ps.Get("engUnit")
	require.True(t, ok)
	assert.Equal(t, "bar", v.Raw)
	assert.Len(t, ps.Keys, 1)
}

func TestPropertySet_GetMissing(t *testing.T) {
	var ps PropertySet
	_, ok := ps.Get("nope")
	assert.False(t, ok)
}

func TestPropertyValue_Validate(t *testing.T) {
	require.NoError(t, PropertyValue{Type: PropInt32, Raw: int32(1)}.Validate())

	err := PropertyValue{Type: PropInt32, Raw: "nope"}.Validate()
	require.Error(t, err)
	assert.Equal(t, InvalidType, KindOf(err))
}
