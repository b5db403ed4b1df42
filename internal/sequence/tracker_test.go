package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeState_LifecycleScenario(t *testing.T) {
	var n NodeState
	assert.False(t, n.Online())

	n.SetOnline(1000, 7, 0)
	assert.True(t, n.Online())

	require.NoError(t, n.Advance(1))

	err := n.Advance(3)
	require.Error(t, err)

	n.SetOffline(2000, 6)
	assert.True(t, n.Online(), "mismatched bdSeq must be silently ignored")

	n.SetOffline(3000, 7)
	assert.False(t, n.Online())
}

func TestNodeState_AdvanceWithoutOnline(t *testing.T) {
	var n NodeState
	err := n.Advance(0)
	require.Error(t, err)
}

func TestNodeState_AdvanceWraps(t *testing.T) {
	var n NodeState
	n.SetOnline(0, 1, 254)
	require.NoError(t, n.Advance(255))
	require.NoError(t, n.Advance(0))
}
