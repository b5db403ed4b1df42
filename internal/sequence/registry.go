// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sequence

import (
	"sync"

	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

// Registry holds one NodeState per edge node, created lazily on first
// lookup. The read path takes only an RLock; a new node is created under a
// write lock with a re-check, so concurrent first-lookups for the same edge
// never race to create two NodeStates.
type Registry struct {
	mu    sync.RWMutex
	nodes map[sparkplug.EdgeNodeDescriptor]*NodeState
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[sparkplug.EdgeNodeDescriptor]*NodeState)}
}

// Get returns the NodeState for edge, creating one if this is the first
// reference to it.
func (r *Registry) Get(edge sparkplug.EdgeNodeDescriptor) *NodeState {
	r.mu.RLock()
	n, ok := r.nodes[edge]
	r.mu.RUnlock()
	if ok {
		return n
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.nodes[edge]; ok {
		return n
	}
	n = &NodeState{}
	r.nodes[edge] = n
	return n
}

// Delete removes edge's state entirely, e.g. on long-term node retirement.
func (r *Registry) Delete(edge sparkplug.EdgeNodeDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, edge)
}

// Len reports the number of tracked edge nodes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
