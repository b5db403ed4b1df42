// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dispatch implements the host-side topic-keyed sharded executor:
// an array of single-worker queues that preserve per-edge-node FIFO
// ordering while letting distinct edge nodes make progress in parallel.
package dispatch

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultShardCount matches spec.md's N=100 default shard count.
const DefaultShardCount = 100

// ShardIndex returns the shard a (group, edge) pair is routed to:
// hash(group+"/"+edge) mod shardCount.
func ShardIndex(group, edge string, shardCount int) int {
	h := xxhash.Sum64String(group + "/" + edge)
	return int(h % uint64(shardCount))
}

// shard is one single-worker executor with an unbounded FIFO queue, backed
// by a growable slice rather than a fixed-capacity channel so that submit
// never blocks the caller (an MQTT callback goroutine) no matter how deep
// the backlog for one edge node gets. Tasks submitted to the same shard run
// strictly in arrival order; there is no ordering guarantee between shards.
type shard struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool
}

func newShard() *shard {
	s := &shard{}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

func (s *shard) run() {
	for {
		s.mu.Lock()
		for len(s.tasks) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.tasks) == 0 {
			s.mu.Unlock()
			return
		}
		task := s.tasks[0]
		s.tasks = s.tasks[1:]
		s.mu.Unlock()

		task()
	}
}

func (s *shard) submit(task func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
	s.cond.Signal()
}

func (s *shard) stop() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// ShardedExecutor is an array of shardCount single-worker executors,
// indexed by ShardIndex.
type ShardedExecutor struct {
	shards     []*shard
	shardCount int
}

// NewShardedExecutor constructs a ShardedExecutor with shardCount shards.
// shardCount <= 0 defaults to DefaultShardCount.
func NewShardedExecutor(shardCount int) *ShardedExecutor {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	e := &ShardedExecutor{shards: make([]*shard, shardCount), shardCount: shardCount}
	for i := range e.shards {
		e.shards[i] = newShard()
	}
	return e
}

// Submit routes task to the shard for (group, edge) and enqueues it there.
func (e *ShardedExecutor) Submit(group, edge string, task func()) {
	idx := ShardIndex(group, edge, e.shardCount)
	e.shards[idx].submit(task)
}

// Stop shuts down every shard's worker goroutine. Tasks submitted after Stop
// are discarded; tasks already queued still run before each worker exits.
func (e *ShardedExecutor) Stop() {
	for _, s := range e.shards {
		s.stop()
	}
}
