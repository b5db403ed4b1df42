// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sequence

import (
	"fmt"
	"sync"
	"time"

	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

// ReorderConfig bounds how far ahead a reorder buffer will hold a message
// and how long it will wait for the gap to close before surfacing
// SequenceGap. Neither bound is fixed by the Sparkplug specification; both
// are explicit configuration here.
type ReorderConfig struct {
	// BufferSize is the maximum number of messages held per edge while
	// waiting for a gap to close, and also the furthest-ahead seq distance
	// accepted before a message is rejected as too far ahead.
	BufferSize int
	// Timeout is how long the oldest buffered message may wait before its
	// edge's gap is reported via SequenceGap.
	Timeout time.Duration
}

// DefaultReorderConfig matches the defaults chosen in SPEC_FULL.md: a 64
// message buffer and a 5 second gap timeout.
func DefaultReorderConfig() ReorderConfig {
	return ReorderConfig{BufferSize: 64, Timeout: 5 * time.Second}
}

type bufferKey struct {
	Server string
	Edge   sparkplug.EdgeNodeDescriptor
}

type pendingMessage struct {
	seq     uint8
	arrived time.Time
	payload any
}

type edgeBuffer struct {
	mu           sync.Mutex
	nextExpected uint8
	haveNext     bool
	pending      map[uint8]pendingMessage
}

// ReorderManager buffers out-of-order Sparkplug messages per (server, edge)
// and releases contiguous runs once the expected sequence number arrives.
type ReorderManager struct {
	cfg ReorderConfig

	mu      sync.RWMutex
	buffers map[bufferKey]*edgeBuffer
}

// NewReorderManager constructs a ReorderManager with the given bounds.
func NewReorderManager(cfg ReorderConfig) *ReorderManager {
	return &ReorderManager{cfg: cfg, buffers: make(map[bufferKey]*edgeBuffer)}
}

func (m *ReorderManager) bufferFor(server string, edge sparkplug.EdgeNodeDescriptor) *edgeBuffer {
	key := bufferKey{Server: server, Edge: edge}
	m.mu.RLock()
	b, ok := m.buffers[key]
	m.mu.RUnlock()
	if ok {
		return b
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.buffers[key]; ok {
		return b
	}
	b = &edgeBuffer{pending: make(map[uint8]pendingMessage)}
	m.buffers[key] = b
	return b
}

// OnBirth resets the expected sequence for (server, edge) to (seq+1) mod
// 256 and discards any buffered entries that are now stale (their seq lies
// behind the new expectation).
func (m *ReorderManager) OnBirth(server string, edge sparkplug.EdgeNodeDescriptor, seq uint8) {
	b := m.bufferFor(server, edge)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextExpected = uint8((uint16(seq) + 1) % 256)
	b.haveNext = true
	for s := range b.pending {
		if !seqIsAheadOf(s, b.nextExpected) {
			delete(b.pending, s)
		}
	}
}

// Ingest admits a message with sequence number seq. If seq is the next
// expected one, it (and any now-contiguous buffered messages) are returned
// immediately in order. If seq is ahead of the window but within
// cfg.BufferSize, it is buffered and Ingest returns no ready messages. If
// seq is a duplicate of the past or too far ahead, Ingest fails with
// SequenceGap.
func (m *ReorderManager) Ingest(server string, edge sparkplug.EdgeNodeDescriptor, seq uint8, payload any, now time.Time) ([]any, error) {
	b := m.bufferFor(server, edge)
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.haveNext {
		b.nextExpected = seq
		b.haveNext = true
	}

	if seq == b.nextExpected {
		ready := []any{payload}
		b.nextExpected = uint8((uint16(b.nextExpected) + 1) % 256)
		for {
			next, ok := b.pending[b.nextExpected]
			if !ok {
				break
			}
			ready = append(ready, next.payload)
			delete(b.pending, b.nextExpected)
			b.nextExpected = uint8((uint16(b.nextExpected) + 1) % 256)
		}
		return ready, nil
	}

	dist := seqDistance(b.nextExpected, seq)
	if dist > 0 && dist <= uint16(m.cfg.BufferSize) {
		b.pending[seq] = pendingMessage{seq: seq, arrived: now, payload: payload}
		return nil, nil
	}
	return nil, &sparkplug.Error{Kind: sparkplug.SequenceGap, Op: "ReorderManager.Ingest",
		Err: fmt.Errorf("edge %s: expected seq %d, got %d", edge, b.nextExpected, seq)}
}

// CheckTimeouts scans every tracked edge for a buffered message older than
// cfg.Timeout and reports the oldest one per edge as a SequenceGap,
// matching "on timeout, the oldest unresolved gap produces SequenceGap".
// It does not mutate buffer state; callers decide whether to request
// rebirth and subsequently call OnBirth to reset the edge.
func (m *ReorderManager) CheckTimeouts(now time.Time) []error {
	m.mu.RLock()
	keys := make([]bufferKey, 0, len(m.buffers))
	bufs := make([]*edgeBuffer, 0, len(m.buffers))
	for k, b := range m.buffers {
		keys = append(keys, k)
		bufs = append(bufs, b)
	}
	m.mu.RUnlock()

	var errs []error
	for i, b := range bufs {
		b.mu.Lock()
		var oldest *pendingMessage
		for seq, p := range b.pending {
			if oldest == nil || p.arrived.Before(oldest.arrived) {
				pp := p
				pp.seq = seq
				oldest = &pp
			}
		}
		if oldest != nil && now.Sub(oldest.arrived) >= m.cfg.Timeout {
			errs = append(errs, &sparkplug.Error{Kind: sparkplug.SequenceGap, Op: "ReorderManager.CheckTimeouts",
				Err: fmt.Errorf("edge %s: gap at seq %d unresolved after %s", keys[i].Edge, b.nextExpected, m.cfg.Timeout)})
		}
		b.mu.Unlock()
	}
	return errs
}

// seqDistance returns how many steps forward (mod 256) seq is from from,
// in [0, 256). A distance of 0 means seq == from.
func seqDistance(from, seq uint8) uint16 {
	return uint16(seq-from) % 256
}

// seqIsAheadOf reports whether seq is still >= nextExpected in mod-256
// forward distance terms, i.e. not stale relative to a freshly reset
// nextExpected.
func seqIsAheadOf(seq, nextExpected uint8) bool {
	return seqDistance(nextExpected, seq) < 128
}
