package sequence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

func TestRegistry_GetCreatesOnce(t *testing.T) {
	r := NewRegistry()
	edge := sparkplug.EdgeNodeDescriptor{GroupID: "G", EdgeID: "E"}

	var wg sync.WaitGroup
	states := make([]*NodeState, 16)
	for i := range states {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i] = r.Get(edge)
		}(i)
	}
	wg.Wait()

	for _, s := range states[1:] {
		assert.Same(t, states[0], s)
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Delete(t *testing.T) {
	r := NewRegistry()
	edge := sparkplug.EdgeNodeDescriptor{GroupID: "G", EdgeID: "E"}
	r.Get(edge)
	assert.Equal(t, 1, r.Len())
	r.Delete(edge)
	assert.Equal(t, 0, r.Len())
}
