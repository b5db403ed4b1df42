// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sequence tracks per-edge-node birth/death and message sequence
// state, and buffers out-of-order messages until the gap is resolved or
// times out.
package sequence

import (
	"fmt"
	"sync"

	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

// NodeState is one edge node's online/offline and sequence bookkeeping. All
// mutation goes through its methods, which hold its own lock — callers never
// need an external lock.
type NodeState struct {
	mu sync.Mutex

	online       bool
	onlineSince  int64
	offlineSince int64
	birthBdSeq   uint8
	haveBirthSeq bool
	lastSeq      uint8
	haveLastSeq  bool
}

// Online reports whether the node is currently considered online.
func (n *NodeState) Online() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online
}

// SetOnline records an NBIRTH: the node transitions to online, its
// birth/death sequence and message sequence counters reset to bdSeq/seq.
func (n *NodeState) SetOnline(ts int64, bdSeq, seq uint8) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.online = true
	n.onlineSince = ts
	n.birthBdSeq = bdSeq
	n.haveBirthSeq = true
	n.lastSeq = seq
	n.haveLastSeq = true
}

// SetOffline records an NDEATH. Per spec, a bdSeq that doesn't match the
// bdSeq recorded at birth is a stale/duplicate DEATH and is silently
// ignored — the node stays online.
func (n *NodeState) SetOffline(ts int64, bdSeq uint8) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.haveBirthSeq || bdSeq != n.birthBdSeq {
		return
	}
	n.online = false
	n.offlineSince = ts
}

// Advance checks seq against the expected next sequence number and, if it
// matches, commits it as the new lastSeq. A tracker with no prior
// SetOnline, or a seq that doesn't equal (lastSeq+1) mod 256, fails with
// SequenceGap and leaves state unchanged.
func (n *NodeState) Advance(seq uint8) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.haveLastSeq {
		return &sparkplug.Error{Kind: sparkplug.SequenceGap, Op: "NodeState.Advance", Err: fmt.Errorf("no birth sequence recorded")}
	}
	want := uint8((uint16(n.lastSeq) + 1) % 256)
	if seq != want {
		return &sparkplug.Error{Kind: sparkplug.SequenceGap, Op: "NodeState.Advance",
			Err: fmt.Errorf("expected seq %d, got %d", want, seq)}
	}
	n.lastSeq = seq
	return nil
}

// BirthBdSeq returns the bdSeq recorded at the last SetOnline, and whether
// one has been recorded yet.
func (n *NodeState) BirthBdSeq() (uint8, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.birthBdSeq, n.haveBirthSeq
}
