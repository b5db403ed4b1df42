// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mqtt

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tahu-edge/tahu-go/pkg/log"
	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

// State is one of TahuClient's four supervisor states.
type State int

const (
	Idle State = iota
	Connecting
	Connected
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	default:
		return "idle"
	}
}

// ConnectionLostHandler is invoked when a TahuClient loses an established
// connection without a call to Disconnect: when the connection monitor
// detects the loss or NotifyDisconnected is called. A forced disconnect
// after a failed subscription replay or BIRTH publish does not invoke it.
type ConnectionLostHandler func(cause error)

// BirthSpec configures the message published on entering Connected, if any.
type BirthSpec struct {
	Topic   string
	Payload []byte
	Retain  bool
}

// LWTSpec configures the will registered on the underlying transport's
// CONNECT packet and republished explicitly on a graceful disconnect.
type LWTSpec struct {
	Topic    string
	Payload  []byte
	QoS      QoS
	Retained bool
}

// subscription is one entry of the ordered topic->qos registry. Index order
// is preserved across re-subscribes so replay-on-reconnect is deterministic.
type subscription struct {
	topic   string
	qos     QoS
	handler MessageHandler
}

// TahuClient is one logical MQTT session, identified by (serverName,
// serverUrl, clientId). It owns a connect/retry loop, a connection monitor,
// a subscription registry replayed on every (re)connect, LWT publish on
// graceful disconnect, and accounting.
//
// TahuClient does not implement MQTT itself; it drives a Client built by a
// ClientFactory for each connect attempt.
type TahuClient struct {
	ServerName string
	cfg        ClientConfig
	factory    ClientFactory
	birth      *BirthSpec
	lwt        *LWTSpec
	onLost     ConnectionLostHandler

	stats *Stats
	sem   *semaphore.Weighted

	mu            sync.Mutex
	state         State
	client        Client
	subs          []subscription
	stopConnectCh chan struct{}
	stopMonitorCh chan struct{}
	missedTicks   int
	connectedAt   time.Time
	disconnectAt  time.Time
}

// NewTahuClient constructs a TahuClient in the Idle state. birth and lwt may
// be nil. onLost may be nil.
func NewTahuClient(serverName string, cfg ClientConfig, factory ClientFactory, birth *BirthSpec, lwt *LWTSpec, onLost ConnectionLostHandler) *TahuClient {
	return &TahuClient{
		ServerName: serverName,
		cfg:        cfg,
		factory:    factory,
		birth:      birth,
		lwt:        lwt,
		onLost:     onLost,
		stats:      NewStats(cfg.ClientID),
		sem:        semaphore.NewWeighted(int64(cfg.MaxInflight)),
	}
}

// State returns the supervisor's current state.
func (c *TahuClient) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns the client's accounting block.
func (c *TahuClient) Stats() *Stats { return c.stats }

// Connect transitions Idle -> Connecting and spawns the connect-retry loop.
// If the client is not Idle, or ServerURL does not parse, it returns an
// InvalidArgument error and leaves the state unchanged.
func (c *TahuClient) Connect() error {
	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return &sparkplug.Error{Kind: sparkplug.InvalidArgument, Op: "TahuClient.Connect", Err: fmt.Errorf("client is %s, not idle", c.state)}
	}
	if _, err := url.Parse(c.cfg.ServerURL); err != nil {
		c.mu.Unlock()
		return &sparkplug.Error{Kind: sparkplug.InvalidArgument, Op: "TahuClient.Connect", Err: err}
	}
	c.state = Connecting
	c.stopConnectCh = make(chan struct{})
	stop := c.stopConnectCh
	c.mu.Unlock()

	go c.connectLoop(stop)
	return nil
}

func (c *TahuClient) connectLoop(stop chan struct{}) {
	if d := c.cfg.randomStartupDelay(); d > 0 {
		jitter := time.Duration(rand.Int63n(int64(d) + 1))
		select {
		case <-time.After(jitter):
		case <-stop:
			return
		}
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		if c.attemptConnect(stop) {
			return
		}
		if !c.cfg.AutoReconnect {
			return
		}
		select {
		case <-time.After(c.cfg.connectRetryInterval()):
		case <-stop:
			return
		}
	}
}

// attemptConnect makes one connect attempt. It returns true once the client
// has settled into Connected (or the supervisor was stopped), false if the
// caller should retry.
func (c *TahuClient) attemptConnect(stop chan struct{}) bool {
	client := c.factory()

	opts := ConnectOptions{
		ServerURL:         c.cfg.ServerURL,
		ClientID:          c.cfg.ClientID,
		Username:          c.cfg.Username,
		Password:          c.cfg.Password,
		CleanSession:      c.cfg.CleanSession,
		KeepAlive:         c.cfg.KeepAlive,
		ConnectTimeoutSec: c.cfg.ConnectTimeoutSec,
	}
	if c.lwt != nil {
		opts.HasWill = true
		opts.WillTopic = c.lwt.Topic
		opts.WillPayload = c.lwt.Payload
		opts.WillQoS = c.lwt.QoS
		opts.WillRetained = c.lwt.Retained
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.connectTimeout())
	defer cancel()
	if err := client.Connect(ctx, opts).Wait(ctx); err != nil {
		log.Warnf("mqtt: connect to %s (%s) failed: %v", c.ServerName, c.cfg.ServerURL, err)
		return false
	}

	select {
	case <-stop:
		client.Disconnect(0)
		return true
	default:
	}

	if err := c.onConnected(client); err != nil {
		log.Warnf("mqtt: %s entered connected state but setup failed: %v", c.ServerName, err)
		client.Disconnect(0)
		c.mu.Lock()
		if c.client == client {
			c.client = nil
			if c.state == Connected {
				c.state = Connecting
			}
			if c.stopMonitorCh != nil {
				close(c.stopMonitorCh)
				c.stopMonitorCh = nil
			}
			c.stats.RecordDisconnect(time.Now())
		}
		c.mu.Unlock()
		return false
	}
	return true
}

// onConnected runs the Connecting -> Connected transition: starts the
// monitor, replays subscriptions, publishes BIRTH.
func (c *TahuClient) onConnected(client Client) error {
	c.mu.Lock()
	c.client = client
	c.state = Connected
	c.connectedAt = time.Now()
	c.disconnectAt = time.Time{}
	c.missedTicks = 0
	subs := append([]subscription(nil), c.subs...)
	monitorStop := make(chan struct{})
	c.stopMonitorCh = monitorStop
	c.mu.Unlock()

	c.stats.RecordConnect(time.Now())
	go c.monitorLoop(monitorStop)

	for _, s := range subs {
		granted, token := client.Subscribe(s.topic, s.qos, c.wrapHandler(s.handler))
		if err := token.Wait(context.Background()); err != nil {
			return fmt.Errorf("resubscribe %s: %w", s.topic, err)
		}
		if granted != s.qos {
			return &sparkplug.Error{Kind: sparkplug.NotAuthorized, Op: "TahuClient.onConnected", Err: fmt.Errorf("topic %s: wanted qos %d, granted %d", s.topic, s.qos, granted)}
		}
	}

	if c.birth != nil {
		token := client.Publish(c.birth.Topic, QoS1, c.birth.Retain, c.birth.Payload)
		if err := token.Wait(context.Background()); err != nil {
			return fmt.Errorf("birth publish: %w", err)
		}
	}
	return nil
}

// monitorLoop ticks every 10s; after 5 consecutive ticks observing
// !IsConnected it drives the unsolicited-disconnect transition.
func (c *TahuClient) monitorLoop(stop chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			client := c.client
			if client == nil || c.state != Connected {
				c.mu.Unlock()
				return
			}
			if client.IsConnected() {
				c.missedTicks = 0
				c.mu.Unlock()
				continue
			}
			c.missedTicks++
			lost := c.missedTicks >= 5
			c.mu.Unlock()
			if lost {
				c.handleUnsolicitedDisconnect(fmt.Errorf("connection monitor: %d missed ticks", c.missedTicks))
				return
			}
		}
	}
}

// NotifyDisconnected lets the underlying transport's own disconnect
// callback drive the same transition the monitor would eventually detect.
func (c *TahuClient) NotifyDisconnected(cause error) {
	c.handleUnsolicitedDisconnect(cause)
}

func (c *TahuClient) handleUnsolicitedDisconnect(cause error) {
	c.mu.Lock()
	if c.state != Connected {
		c.mu.Unlock()
		return
	}
	c.state = Connecting
	c.disconnectAt = time.Now()
	c.client = nil
	if c.stopMonitorCh != nil {
		close(c.stopMonitorCh)
		c.stopMonitorCh = nil
	}
	autoReconnect := c.cfg.AutoReconnect
	c.mu.Unlock()

	c.stats.RecordDisconnect(time.Now())
	if c.onLost != nil {
		c.onLost(cause)
	}
	if autoReconnect {
		c.mu.Lock()
		c.state = Connecting
		c.stopConnectCh = make(chan struct{})
		stop := c.stopConnectCh
		c.mu.Unlock()
		go c.connectLoop(stop)
	}
}

// DisconnectOptions configures a graceful Connected -> Disconnecting ->
// Idle transition.
type DisconnectOptions struct {
	QuiesceMs  uint
	TimeoutMs  uint
	PublishLWT bool
	WaitForLWT bool
}

// Disconnect cancels the connect loop and monitor, optionally publishes the
// configured LWT and waits for delivery confirmation, then forcibly
// disconnects and returns to Idle.
func (c *TahuClient) Disconnect(opts DisconnectOptions) {
	c.mu.Lock()
	if c.state == Idle {
		c.mu.Unlock()
		return
	}
	c.state = Disconnecting
	if c.stopConnectCh != nil {
		close(c.stopConnectCh)
		c.stopConnectCh = nil
	}
	if c.stopMonitorCh != nil {
		close(c.stopMonitorCh)
		c.stopMonitorCh = nil
	}
	client := c.client
	wasConnected := client != nil && client.IsConnected()
	c.mu.Unlock()

	if wasConnected && opts.PublishLWT && c.lwt != nil {
		token := client.Publish(c.lwt.Topic, c.lwt.QoS, c.lwt.Retained, c.lwt.Payload)
		_ = token.Wait(context.Background())
		if opts.WaitForLWT {
			c.waitForLWTDelivery(client, opts.TimeoutMs)
		}
	}

	if client != nil {
		client.Disconnect(opts.QuiesceMs)
	}
	c.stats.RecordDisconnect(time.Now())

	c.mu.Lock()
	c.client = nil
	c.state = Idle
	c.mu.Unlock()
}

// waitForLWTDelivery polls IsConnected-adjacent delivery state every 250ms
// until either the connection drops or timeoutMs elapses. A zero timeoutMs
// falls back to keepAlive * 4 * 250ms, matching spec.md's
// isLwtDeliveryComplete polling loop. Concrete delivery-confirmation
// semantics live in the Token returned by Publish; this loop only bounds how
// long the caller is willing to wait for it.
func (c *TahuClient) waitForLWTDelivery(client Client, timeoutMs uint) {
	budget := time.Duration(timeoutMs) * time.Millisecond
	if budget <= 0 {
		iterations := c.cfg.KeepAlive * 4
		if iterations <= 0 {
			iterations = 1
		}
		budget = time.Duration(iterations) * 250 * time.Millisecond
	}
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		if !client.IsConnected() {
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
}

// Subscribe records topic in the registry and, if connected, sends the
// subscribe to the broker and blocks until granted. Granted QoS must equal
// requested QoS or a NotAuthorized error is returned.
func (c *TahuClient) Subscribe(topic string, qos QoS, handler MessageHandler) error {
	c.mu.Lock()
	c.subs = append(c.subs, subscription{topic: topic, qos: qos, handler: handler})
	client := c.client
	connected := c.state == Connected && client != nil
	c.mu.Unlock()

	if !connected {
		return nil
	}
	granted, token := client.Subscribe(topic, qos, c.wrapHandler(handler))
	if err := token.Wait(context.Background()); err != nil {
		return err
	}
	if granted != qos {
		return &sparkplug.Error{Kind: sparkplug.NotAuthorized, Op: "TahuClient.Subscribe", Err: fmt.Errorf("topic %s: wanted qos %d, granted %d", topic, qos, granted)}
	}
	return nil
}

// wrapHandler records an arrived-message count against the client's Stats
// before dispatching to the caller's handler.
func (c *TahuClient) wrapHandler(handler MessageHandler) MessageHandler {
	return func(topic string, payload []byte, qos QoS, retained bool) {
		c.stats.RecordMessageArrived()
		handler(topic, payload, qos, retained)
	}
}

// Unsubscribe removes topic from the registry and, if connected, sends the
// unsubscribe to the broker.
func (c *TahuClient) Unsubscribe(topic string) error {
	c.mu.Lock()
	for i, s := range c.subs {
		if s.topic == topic {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	client := c.client
	connected := c.state == Connected && client != nil
	c.mu.Unlock()

	if !connected {
		return nil
	}
	return client.Unsubscribe(topic).Wait(context.Background())
}

// Publish synchronously publishes payload, failing with NotConnected if the
// client has no live connection.
func (c *TahuClient) Publish(topic string, qos QoS, retained bool, payload []byte) error {
	c.mu.Lock()
	client := c.client
	connected := c.state == Connected && client != nil
	c.mu.Unlock()
	if !connected {
		return &sparkplug.Error{Kind: sparkplug.NotConnected, Op: "TahuClient.Publish", Err: fmt.Errorf("topic %s", topic)}
	}
	return client.Publish(topic, qos, retained, payload).Wait(context.Background())
}

// AsyncPublish retries the publish up to numAttempts times, sleeping
// retryDelay whenever the client is not currently connected, bounded by
// maxInflight concurrent in-flight publishes across the TahuClient.
func (c *TahuClient) AsyncPublish(ctx context.Context, topic string, qos QoS, retained bool, payload []byte, numAttempts int, retryDelay time.Duration) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt < numAttempts; attempt++ {
		err := c.Publish(topic, qos, retained, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		if sparkplug.KindOf(err) != sparkplug.NotConnected {
			return err
		}
		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return &sparkplug.Error{Kind: sparkplug.Timeout, Op: "TahuClient.AsyncPublish", Err: lastErr}
}
