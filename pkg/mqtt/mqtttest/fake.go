// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mqtttest is an in-memory fake of pkg/mqtt.Client, for exercising
// pkg/mqtt.TahuClient and internal/dispatch without a real broker.
package mqtttest

import (
	"context"
	"sync"

	tahumqtt "github.com/tahu-edge/tahu-go/pkg/mqtt"
)

// doneToken is a Token that is already resolved.
type doneToken struct{ err error }

func (t doneToken) Wait(ctx context.Context) error { return t.err }

// Broker is a shared in-memory message bus. Multiple Clients built against
// the same Broker can publish/subscribe to each other, modeling a real MQTT
// server for tests of reconnect and subscription-replay behavior.
type Broker struct {
	mu   sync.Mutex
	subs map[string][]*Client // topic -> subscribed clients

	// ConnectErr, when set, is returned by the next Connect call and then
	// cleared, letting tests force one failed connect attempt.
	ConnectErr error

	// GrantQoS overrides the QoS granted to a Subscribe call, keyed by
	// topic. Tests use this to exercise the granted != requested path.
	GrantQoS map[string]tahumqtt.QoS
}

// NewBroker constructs an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string][]*Client)}
}

// Client is a fake transport bound to a Broker. It implements
// pkg/mqtt.Client.
type Client struct {
	broker *Broker

	mu          sync.Mutex
	connected   bool
	clientID    string
	subscribed  map[string]tahumqtt.QoS
	handlers    map[string]tahumqtt.MessageHandler
	Published   []Published
	Disconnects int
}

// Published records one call to Publish, for test assertions.
type Published struct {
	Topic    string
	QoS      tahumqtt.QoS
	Retained bool
	Payload  []byte
}

// NewClientFactory returns a ClientFactory that builds Clients bound to
// broker, suitable for TahuClient's ClientFactory field.
func NewClientFactory(broker *Broker) tahumqtt.ClientFactory {
	return func() tahumqtt.Client {
		return &Client{broker: broker, subscribed: make(map[string]tahumqtt.QoS), handlers: make(map[string]tahumqtt.MessageHandler)}
	}
}

func (c *Client) Connect(ctx context.Context, opts tahumqtt.ConnectOptions) tahumqtt.Token {
	c.broker.mu.Lock()
	err := c.broker.ConnectErr
	c.broker.ConnectErr = nil
	c.broker.mu.Unlock()

	if err != nil {
		return doneToken{err: err}
	}
	c.mu.Lock()
	c.connected = true
	c.clientID = opts.ClientID
	c.mu.Unlock()
	return doneToken{}
}

func (c *Client) Disconnect(quiesceMs uint) {
	c.mu.Lock()
	c.connected = false
	c.Disconnects++
	c.mu.Unlock()

	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	for topic, clients := range c.broker.subs {
		kept := clients[:0]
		for _, sub := range clients {
			if sub != c {
				kept = append(kept, sub)
			}
		}
		c.broker.subs[topic] = kept
	}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) Publish(topic string, qos tahumqtt.QoS, retained bool, payload []byte) tahumqtt.Token {
	c.mu.Lock()
	c.Published = append(c.Published, Published{Topic: topic, QoS: qos, Retained: retained, Payload: payload})
	connected := c.connected
	c.mu.Unlock()
	if !connected {
		return doneToken{err: context.DeadlineExceeded}
	}

	c.broker.mu.Lock()
	recipients := append([]*Client(nil), c.broker.subs[topic]...)
	c.broker.mu.Unlock()
	for _, sub := range recipients {
		sub.deliver(topic, payload, qos, retained)
	}
	return doneToken{}
}

func (c *Client) Subscribe(topic string, qos tahumqtt.QoS, handler tahumqtt.MessageHandler) (tahumqtt.QoS, tahumqtt.Token) {
	c.broker.mu.Lock()
	granted := qos
	if c.broker.GrantQoS != nil {
		if g, ok := c.broker.GrantQoS[topic]; ok {
			granted = g
		}
	}
	c.broker.subs[topic] = append(c.broker.subs[topic], c)
	c.broker.mu.Unlock()

	c.mu.Lock()
	c.subscribed[topic] = granted
	c.handlers[topic] = handler
	c.mu.Unlock()
	return granted, doneToken{}
}

func (c *Client) Unsubscribe(topic string) tahumqtt.Token {
	c.broker.mu.Lock()
	clients := c.broker.subs[topic]
	kept := clients[:0]
	for _, sub := range clients {
		if sub != c {
			kept = append(kept, sub)
		}
	}
	c.broker.subs[topic] = kept
	c.broker.mu.Unlock()

	c.mu.Lock()
	delete(c.subscribed, topic)
	delete(c.handlers, topic)
	c.mu.Unlock()
	return doneToken{}
}

// deliver routes an incoming message to the handler registered for its exact
// topic. Real brokers match subscriptions by filter (wildcards included);
// this fake only needs exact-topic matching since tests always subscribe and
// publish the same literal topic string.
func (c *Client) deliver(topic string, payload []byte, qos tahumqtt.QoS, retained bool) {
	c.mu.Lock()
	h := c.handlers[topic]
	c.mu.Unlock()
	if h != nil {
		h(topic, payload, qos, retained)
	}
}
