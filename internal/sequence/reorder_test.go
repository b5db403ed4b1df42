package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

func TestReorderManager_InOrder(t *testing.T) {
	m := NewReorderManager(DefaultReorderConfig())
	edge := sparkplug.EdgeNodeDescriptor{GroupID: "G", EdgeID: "E"}
	m.OnBirth("srv", edge, 0)

	ready, err := m.Ingest("srv", edge, 1, "a", time.Now())
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, ready)
}

func TestReorderManager_BuffersAndDrains(t *testing.T) {
	m := NewReorderManager(DefaultReorderConfig())
	edge := sparkplug.EdgeNodeDescriptor{GroupID: "G", EdgeID: "E"}
	m.OnBirth("srv", edge, 0)

	ready, err := m.Ingest("srv", edge, 3, "c", time.Now())
	require.NoError(t, err)
	assert.Empty(t, ready)

	ready, err = m.Ingest("srv", edge, 2, "b", time.Now())
	require.NoError(t, err)
	assert.Empty(t, ready)

	ready, err = m.Ingest("srv", edge, 1, "a", time.Now())
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, ready)
}

func TestReorderManager_GapTooFarOrDuplicateRejected(t *testing.T) {
	cfg := ReorderConfig{BufferSize: 2, Timeout: time.Second}
	m := NewReorderManager(cfg)
	edge := sparkplug.EdgeNodeDescriptor{GroupID: "G", EdgeID: "E"}
	m.OnBirth("srv", edge, 0)

	_, err := m.Ingest("srv", edge, 10, "too-far", time.Now())
	require.Error(t, err)
	assert.Equal(t, sparkplug.SequenceGap, sparkplug.KindOf(err))

	ready, err := m.Ingest("srv", edge, 1, "a", time.Now())
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, ready)

	_, err = m.Ingest("srv", edge, 1, "dup", time.Now())
	require.Error(t, err)
	assert.Equal(t, sparkplug.SequenceGap, sparkplug.KindOf(err))
}

func TestReorderManager_BirthResetFlushesStale(t *testing.T) {
	m := NewReorderManager(DefaultReorderConfig())
	edge := sparkplug.EdgeNodeDescriptor{GroupID: "G", EdgeID: "E"}
	m.OnBirth("srv", edge, 0)

	_, err := m.Ingest("srv", edge, 5, "stale", time.Now())
	require.NoError(t, err)

	m.OnBirth("srv", edge, 10)
	assert.Empty(t, m.bufferFor("srv", edge).pending)
	ready, err := m.Ingest("srv", edge, 11, "fresh", time.Now())
	require.NoError(t, err)
	assert.Equal(t, []any{"fresh"}, ready)
}

func TestReorderManager_CheckTimeouts(t *testing.T) {
	m := NewReorderManager(ReorderConfig{BufferSize: 4, Timeout: 10 * time.Millisecond})
	edge := sparkplug.EdgeNodeDescriptor{GroupID: "G", EdgeID: "E"}
	m.OnBirth("srv", edge, 0)

	past := time.Now().Add(-time.Second)
	_, err := m.Ingest("srv", edge, 2, "b", past)
	require.NoError(t, err)

	errs := m.CheckTimeouts(time.Now())
	require.Len(t, errs, 1)
	assert.Equal(t, sparkplug.SequenceGap, sparkplug.KindOf(errs[0]))
}
