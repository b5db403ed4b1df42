package sparkplug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayload_IsCompressed(t *testing.T) {
	p := SparkplugBPayload{UUID: CompressedUUID, Body: []byte{1, 2, 3}}
	assert.True(t, p.IsCompressed())

	algo := Metric{Name: "algorithm", Value: NewString("GZIP")}
	p.Metrics = []Metric{algo}
	got, ok := p.CompressionAlgorithm()
	assert.True(t, ok)
	assert.Equal(t, "GZIP", got)
}

func TestPayload_NotCompressed(t *testing.T) {
	p := SparkplugBPayload{UUID: "something-else"}
	assert.False(t, p.IsCompressed())
	_, ok := p.CompressionAlgorithm()
	assert.False(t, ok)
}

func TestPayload_ValidateRecurses(t *testing.T) {
	p := SparkplugBPayload{Metrics: []Metric{{Value: NewInt32(1)}}}
	err := p.Validate()
	assert.Error(t, err)
	assert.Equal(t, MalformedWire, KindOf(err))
}
