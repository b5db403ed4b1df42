// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mqtt implements the Sparkplug B MQTT session supervisor
// (TahuClient): connect/retry, LWT, subscription replay, and async publish
// with retry, on top of a caller-supplied MQTT v3.1.1 transport.
//
// The raw wire client is an external collaborator: this package only
// depends on the Client interface below, never on a concrete network
// implementation. pkg/mqtt/mqtttest provides an in-memory fake for tests.
package mqtt

import "context"

// QoS is an MQTT quality-of-service level: 0 (at most once), 1 (at least
// once) or 2 (exactly once).
type QoS byte

const (
	QoS0 QoS = 0
	QoS1 QoS = 1
	QoS2 QoS = 2
)

// MessageHandler is invoked for every message arriving on a subscribed
// topic.
type MessageHandler func(topic string, payload []byte, qos QoS, retained bool)

// ConnectOptions configures the underlying transport's CONNECT packet. It
// mirrors the subset of MQTT v3.1.1 options the supervisor's state machine
// in spec.md §4.4 reasons about.
type ConnectOptions struct {
	ServerURL         string
	ClientID          string
	Username          string
	Password          string
	CleanSession      bool
	KeepAlive         int // seconds
	ConnectTimeoutSec int
	WillTopic         string
	WillPayload       []byte
	WillQoS           QoS
	WillRetained      bool
	HasWill           bool
}

// Token represents an in-flight MQTT operation (subscribe/publish) whose
// completion the caller can wait for, mirroring paho's Token interface.
type Token interface {
	Wait(ctx context.Context) error
}

// Client is the minimal method set the supervisor needs from a concrete
// MQTT v3.1.1 client library (e.g. eclipse/paho.mqtt.golang). No concrete
// implementation ships in this module.
type Client interface {
	Connect(ctx context.Context, opts ConnectOptions) Token
	Disconnect(quiesceMs uint)
	IsConnected() bool
	Publish(topic string, qos QoS, retained bool, payload []byte) Token
	Subscribe(topic string, qos QoS, handler MessageHandler) (grantedQoS QoS, token Token)
	Unsubscribe(topic string) Token
}

// ClientFactory constructs a fresh transport Client for one connect
// attempt. The supervisor calls it from its connect loop rather than
// holding a single long-lived client across reconnects.
type ClientFactory func() Client
