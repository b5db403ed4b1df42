// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sparkplug

import (
	"fmt"
	"strings"
)

// MessageKind is the Sparkplug B message type carried in a topic's third
// segment (spBv1.0/<group>/<kind>/<edge>[/<device>]).
type MessageKind string

const (
	NBIRTH MessageKind = "NBIRTH"
	NDEATH MessageKind = "NDEATH"
	NDATA  MessageKind = "NDATA"
	NCMD   MessageKind = "NCMD"
	DBIRTH MessageKind = "DBIRTH"
	DDEATH MessageKind = "DDEATH"
	DDATA  MessageKind = "DDATA"
	DCMD   MessageKind = "DCMD"
	STATE  MessageKind = "STATE"
)

// IsDeviceKind reports whether kind addresses a device (has a 5th topic
// segment) rather than only an edge node.
func (k MessageKind) IsDeviceKind() bool {
	switch k {
	case DBIRTH, DDEATH, DDATA, DCMD:
		return true
	default:
		return false
	}
}

// EdgeNodeDescriptor identifies a Sparkplug edge node: group + edge node id.
type EdgeNodeDescriptor struct {
	GroupID string
	EdgeID  string
}

func (d EdgeNodeDescriptor) String() string {
	return d.GroupID + "/" + d.EdgeID
}

// DeviceDescriptor identifies a device attached to an edge node.
type DeviceDescriptor struct {
	EdgeNodeDescriptor
	DeviceID string
}

func (d DeviceDescriptor) String() string {
	return d.EdgeNodeDescriptor.String() + "/" + d.DeviceID
}

const namespace = "spBv1.0"

// Topic is a parsed Sparkplug B MQTT topic.
type Topic struct {
	Namespace string
	Group     string
	Kind      MessageKind
	EdgeID    string
	DeviceID  string // empty unless Kind.IsDeviceKind()
}

// EdgeNode returns the EdgeNodeDescriptor this topic's message belongs to.
func (t Topic) EdgeNode() EdgeNodeDescriptor {
	return EdgeNodeDescriptor{GroupID: t.Group, EdgeID: t.EdgeID}
}

// Device returns the DeviceDescriptor this topic's message belongs to.
// Only meaningful when t.Kind.IsDeviceKind().
func (t Topic) Device() DeviceDescriptor {
	return DeviceDescriptor{EdgeNodeDescriptor: t.EdgeNode(), DeviceID: t.DeviceID}
}

func (t Topic) String() string {
	segs := []string{t.Namespace, t.Group, string(t.Kind), t.EdgeID}
	if t.Kind.IsDeviceKind() {
		segs = append(segs, t.DeviceID)
	}
	return strings.Join(segs, "/")
}

// ParseTopic parses an MQTT topic string into its Sparkplug B components.
// STATE topics (spBv1.0/STATE/<host id>) are a 3-segment special case with
// no group/edge; they are reported with Kind == STATE and EdgeID holding the
// host application id.
func ParseTopic(topic string) (Topic, error) {
	segs := strings.Split(topic, "/")
	if len(segs) < 2 || segs[0] != namespace {
		return Topic{}, &Error{Kind: MalformedWire, Op: "ParseTopic", Err: fmt.Errorf("not a %s topic: %q", namespace, topic)}
	}
	if segs[1] == string(STATE) {
		if len(segs) != 3 {
			return Topic{}, &Error{Kind: MalformedWire, Op: "ParseTopic", Err: fmt.Errorf("malformed STATE topic: %q", topic)}
		}
		return Topic{Namespace: segs[0], Kind: STATE, EdgeID: segs[2]}, nil
	}
	if len(segs) < 4 {
		return Topic{}, &Error{Kind: MalformedWire, Op: "ParseTopic", Err: fmt.Errorf("too few segments: %q", topic)}
	}
	kind := MessageKind(segs[2])
	t := Topic{Namespace: segs[0], Group: segs[1], Kind: kind, EdgeID: segs[3]}
	switch kind {
	case NBIRTH, NDEATH, NDATA, NCMD:
		if len(segs) != 4 {
			return Topic{}, &Error{Kind: MalformedWire, Op: "ParseTopic", Err: fmt.Errorf("unexpected trailing segments: %q", topic)}
		}
	case DBIRTH, DDEATH, DDATA, DCMD:
		if len(segs) != 5 {
			return Topic{}, &Error{Kind: MalformedWire, Op: "ParseTopic", Err: fmt.Errorf("device topic missing device id: %q", topic)}
		}
		t.DeviceID = segs[4]
	default:
		return Topic{}, &Error{Kind: UnknownType, Op: "ParseTopic", Err: fmt.Errorf("unrecognized message kind %q", segs[2])}
	}
	return t, nil
}

// BuildNodeTopic builds a topic for an edge-node-level message kind.
func BuildNodeTopic(kind MessageKind, edge EdgeNodeDescriptor) string {
	return strings.Join([]string{namespace, edge.GroupID, string(kind), edge.EdgeID}, "/")
}

// BuildDeviceTopic builds a topic for a device-level message kind.
func BuildDeviceTopic(kind MessageKind, dev DeviceDescriptor) string {
	return strings.Join([]string{namespace, dev.GroupID, string(kind), dev.EdgeID, dev.DeviceID}, "/")
}

// BuildStateTopic builds the STATE topic for a host application id.
func BuildStateTopic(hostID string) string {
	return strings.Join([]string{namespace, string(STATE), hostID}, "/")
}
