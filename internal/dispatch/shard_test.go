package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardIndex_Stable(t *testing.T) {
	a := ShardIndex("groupA", "edge1", 100)
	b := ShardIndex("groupA", "edge1", 100)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, 100)
}

func TestShardedExecutor_PreservesPerEdgeOrder(t *testing.T) {
	e := NewShardedExecutor(4)
	defer e.Stop()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		i := i
		e.Submit("G", "E", func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestShardedExecutor_DistinctEdgesRunConcurrently(t *testing.T) {
	e := NewShardedExecutor(8)
	defer e.Stop()

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		edge := string(rune('a' + i))
		e.Submit("G", edge, func() {
			defer wg.Done()
			<-start
		})
	}
	close(start)
	wg.Wait()
}
