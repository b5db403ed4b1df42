// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"time"

	"github.com/tahu-edge/tahu-go/internal/codec"
	"github.com/tahu-edge/tahu-go/internal/sequence"
	"github.com/tahu-edge/tahu-go/pkg/log"
	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

// Message is one decoded Sparkplug B message handed to a Handler.
type Message struct {
	Server  string
	Topic   sparkplug.Topic
	Edge    sparkplug.EdgeNodeDescriptor
	Device  sparkplug.DeviceDescriptor // set only when Topic.Kind.IsDeviceKind()
	Payload sparkplug.SparkplugBPayload
}

// Handler receives dispatched messages and sequence-gap notifications. A
// host application implements this to react to BIRTH/DATA/DEATH traffic.
type Handler interface {
	HandleMessage(msg Message)
	HandleSequenceGap(server string, edge sparkplug.EdgeNodeDescriptor, cause error)
	HandleStateMessage(server, hostID string, payload []byte)
}

// RebirthRequester optionally publishes an NCMD Node Control/Rebirth=true
// in response to a decode error or sequence gap. Library policy (per
// spec.md) is to request rebirth; callers that don't want this may pass nil.
type RebirthRequester interface {
	RequestRebirth(server string, edge sparkplug.EdgeNodeDescriptor) error
}

// bdSeqMetric is the well-known metric name carrying the birth/death
// sequence number on NBIRTH/NDEATH payloads.
const bdSeqMetric = "bdSeq"

// Dispatcher implements spec.md §4.5: topic-keyed sharded decode/handle,
// optionally preceded by sequence reordering.
type Dispatcher struct {
	executor   *ShardedExecutor
	registry   *sequence.Registry
	reorder    *sequence.ReorderManager
	useReorder bool
	handler    Handler
	rebirth    RebirthRequester
}

// New constructs a Dispatcher. reorder may be nil to disable sequence
// reordering (messages are handled as they arrive and a gap is reported
// immediately rather than buffered).
func New(shardCount int, registry *sequence.Registry, reorder *sequence.ReorderManager, handler Handler, rebirth RebirthRequester) *Dispatcher {
	return &Dispatcher{
		executor:   NewShardedExecutor(shardCount),
		registry:   registry,
		reorder:    reorder,
		useReorder: reorder != nil,
		handler:    handler,
		rebirth:    rebirth,
	}
}

// Stop shuts down the underlying sharded executor.
func (d *Dispatcher) Stop() { d.executor.Stop() }

// MessageArrived is the MQTT message-arrived entrypoint: look up topic
// namespace, route to the edge's shard, decode and sequence-check there.
func (d *Dispatcher) MessageArrived(server, topic string, payload []byte) {
	t, err := sparkplug.ParseTopic(topic)
	if err != nil {
		log.Debugf("dispatch: dropping non-Sparkplug topic %q: %v", topic, err)
		return
	}
	if t.Kind == sparkplug.STATE {
		d.handler.HandleStateMessage(server, t.EdgeID, payload)
		return
	}

	edge := t.EdgeNode()
	submit := func() { d.handle(server, t, edge, payload) }
	if d.useReorder {
		d.executor.Submit(t.Group, t.EdgeID, func() { d.handleWithReorder(server, t, edge, payload) })
		return
	}
	d.executor.Submit(t.Group, t.EdgeID, submit)
}

func (d *Dispatcher) handleWithReorder(server string, t sparkplug.Topic, edge sparkplug.EdgeNodeDescriptor, raw []byte) {
	p, err := codec.Decode(raw)
	if err != nil {
		log.Warnf("dispatch: decode failed for %s: %v", t, err)
		d.requestRebirth(server, edge)
		return
	}

	if t.Kind == sparkplug.NBIRTH {
		d.onBirth(server, edge, p)
		d.reorder.OnBirth(server, edge, uint8(p.Seq))
		d.deliver(server, t, edge, p)
		return
	}

	ready, err := d.reorder.Ingest(server, edge, uint8(p.Seq), reorderedMessage{topic: t, payload: p}, time.Now())
	if err != nil {
		d.handler.HandleSequenceGap(server, edge, err)
		d.requestRebirth(server, edge)
		return
	}
	for _, item := range ready {
		rm := item.(reorderedMessage)
		d.applyAndDeliver(server, rm.topic, edge, rm.payload)
	}
}

// reorderedMessage is what the reorder buffer holds for each pending
// message: the payload alone isn't enough to redeliver it correctly, since
// a buffered entry may belong to a different topic (device) than whichever
// message happens to drain it.
type reorderedMessage struct {
	topic   sparkplug.Topic
	payload sparkplug.SparkplugBPayload
}

func (d *Dispatcher) handle(server string, t sparkplug.Topic, edge sparkplug.EdgeNodeDescriptor, raw []byte) {
	p, err := codec.Decode(raw)
	if err != nil {
		log.Warnf("dispatch: decode failed for %s: %v", t, err)
		d.requestRebirth(server, edge)
		return
	}

	if t.Kind == sparkplug.NBIRTH {
		d.onBirth(server, edge, p)
		d.deliver(server, t, edge, p)
		return
	}
	d.applyAndDeliver(server, t, edge, p)
}

func (d *Dispatcher) applyAndDeliver(server string, t sparkplug.Topic, edge sparkplug.EdgeNodeDescriptor, p sparkplug.SparkplugBPayload) {
	if t.Kind == sparkplug.NDEATH {
		d.onDeath(edge, p)
		d.deliver(server, t, edge, p)
		return
	}
	if p.HasSeq {
		node := d.registry.Get(edge)
		if err := node.Advance(uint8(p.Seq)); err != nil {
			d.handler.HandleSequenceGap(server, edge, err)
			d.requestRebirth(server, edge)
			return
		}
	}
	d.deliver(server, t, edge, p)
}

func (d *Dispatcher) onBirth(server string, edge sparkplug.EdgeNodeDescriptor, p sparkplug.SparkplugBPayload) {
	bdSeq, ok := findBdSeq(p)
	if !ok {
		log.Warnf("dispatch: NBIRTH from %s missing bdSeq metric", edge)
		return
	}
	d.registry.Get(edge).SetOnline(p.Timestamp, uint8(bdSeq), uint8(p.Seq))
}

func (d *Dispatcher) onDeath(edge sparkplug.EdgeNodeDescriptor, p sparkplug.SparkplugBPayload) {
	bdSeq, ok := findBdSeq(p)
	if !ok {
		log.Warnf("dispatch: NDEATH from %s missing bdSeq metric", edge)
		return
	}
	d.registry.Get(edge).SetOffline(p.Timestamp, uint8(bdSeq))
}

func (d *Dispatcher) deliver(server string, t sparkplug.Topic, edge sparkplug.EdgeNodeDescriptor, p sparkplug.SparkplugBPayload) {
	msg := Message{Server: server, Topic: t, Edge: edge, Payload: p}
	if t.Kind.IsDeviceKind() {
		msg.Device = t.Device()
	}
	d.handler.HandleMessage(msg)
}

func (d *Dispatcher) requestRebirth(server string, edge sparkplug.EdgeNodeDescriptor) {
	if d.rebirth == nil {
		return
	}
	if err := d.rebirth.RequestRebirth(server, edge); err != nil {
		log.Warnf("dispatch: rebirth request for %s failed: %v", edge, err)
	}
}

func findBdSeq(p sparkplug.SparkplugBPayload) (uint64, bool) {
	for _, m := range p.Metrics {
		if m.Name != bdSeqMetric {
			continue
		}
		switch v := m.Value.Raw.(type) {
		case uint64:
			return v, true
		case int64:
			return uint64(v), true
		}
	}
	return 0, false
}
