// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// tahu-demo wires one edge-node TahuClient and one host-side Dispatcher
// together over an in-memory broker, to exercise the library end-to-end
// without a real MQTT server. The wire transport is always an external
// collaborator (pkg/mqtt.Client); this demo supplies pkg/mqtt/mqtttest's
// fake rather than shipping a concrete network client.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tahu-edge/tahu-go/internal/codec"
	"github.com/tahu-edge/tahu-go/internal/dispatch"
	"github.com/tahu-edge/tahu-go/internal/edge"
	"github.com/tahu-edge/tahu-go/internal/sequence"
	"github.com/tahu-edge/tahu-go/pkg/log"
	"github.com/tahu-edge/tahu-go/pkg/mqtt"
	"github.com/tahu-edge/tahu-go/pkg/mqtt/mqtttest"
	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

var (
	groupID  = flag.String("group", "Demo", "Sparkplug group id")
	edgeID   = flag.String("edge", "Edge1", "Sparkplug edge node id")
	deviceID = flag.String("device", "Sensor1", "Sparkplug device id")
	period   = flag.Duration("period", 2*time.Second, "DDATA publish period")
	loglevel = flag.String("loglevel", "info", "debug|info|warn|err|crit")
)

// hostHandler logs every dispatched message and every sequence gap.
type hostHandler struct{}

func (hostHandler) HandleMessage(msg dispatch.Message) {
	log.Infof("host: %s from %s (%d metrics)", msg.Topic.Kind, msg.Edge, len(msg.Payload.Metrics))
}

func (hostHandler) HandleSequenceGap(server string, edgeNode sparkplug.EdgeNodeDescriptor, cause error) {
	log.Warnf("host: sequence gap for %s: %v", edgeNode, cause)
}

func (hostHandler) HandleStateMessage(server, hostID string, payload []byte) {
	log.Infof("host: STATE %s -> %s", hostID, payload)
}

// simulator produces a single fake temperature reading per tick.
type simulator struct{ n int }

func (s *simulator) NextPayload(dev sparkplug.DeviceDescriptor) (sparkplug.SparkplugBPayload, error) {
	s.n++
	return sparkplug.SparkplugBPayload{
		Timestamp: time.Now().UnixMilli(), HasTimestamp: true,
		Seq: uint64(s.n % 256), HasSeq: true,
		Metrics: []sparkplug.Metric{
			{Name: "Temperature", Value: sparkplug.NewDouble(20 + float64(s.n%5))},
		},
	}, nil
}

func main() {
	flag.Parse()
	log.SetLogLevel(*loglevel)

	broker := mqtttest.NewBroker()

	edgeCfg := mqtt.ClientConfig{
		ServerName: "demo", ServerURL: "tcp://demo-broker:1883", ClientID: "edge-client",
		AutoReconnect: true, MaxInflight: 10, ConnectTimeoutSec: 5, ConnectRetryIntervalMs: 500,
	}
	edgeDescriptor := sparkplug.EdgeNodeDescriptor{GroupID: *groupID, EdgeID: *edgeID}
	birthPayload, err := codec.Encode(sparkplug.SparkplugBPayload{
		Timestamp: time.Now().UnixMilli(), HasTimestamp: true,
		Seq: 0, HasSeq: true,
		Metrics: []sparkplug.Metric{{Name: "bdSeq", Value: sparkplug.NewUInt64(0)}},
	})
	if err != nil {
		log.Fatal(err)
	}
	birth := &mqtt.BirthSpec{Topic: sparkplug.BuildNodeTopic(sparkplug.NBIRTH, edgeDescriptor), Payload: birthPayload}
	lwt := &mqtt.LWTSpec{Topic: sparkplug.BuildNodeTopic(sparkplug.NDEATH, edgeDescriptor), QoS: mqtt.QoS1}

	edgeClient := mqtt.NewTahuClient("demo", edgeCfg, mqtttest.NewClientFactory(broker), birth, lwt, func(cause error) {
		log.Warnf("edge: connection lost: %v", cause)
	})
	if err := edgeClient.Connect(); err != nil {
		log.Fatal(err)
	}

	hostCfg := edgeCfg
	hostCfg.ClientID = "host-client"
	hostClient := mqtt.NewTahuClient("demo", hostCfg, mqtttest.NewClientFactory(broker), nil, nil, nil)
	if err := hostClient.Connect(); err != nil {
		log.Fatal(err)
	}

	registry := sequence.NewRegistry()
	reorder := sequence.NewReorderManager(sequence.DefaultReorderConfig())
	d := dispatch.New(dispatch.DefaultShardCount, registry, reorder, hostHandler{}, nil)

	if err := hostClient.Subscribe(sparkplug.BuildNodeTopic(sparkplug.NBIRTH, edgeDescriptor), mqtt.QoS1,
		func(topic string, payload []byte, qos mqtt.QoS, retained bool) { d.MessageArrived("demo", topic, payload) }); err != nil {
		log.Fatal(err)
	}
	if err := hostClient.Subscribe(sparkplug.BuildDeviceTopic(sparkplug.DDATA, sparkplug.DeviceDescriptor{EdgeNodeDescriptor: edgeDescriptor, DeviceID: *deviceID}), mqtt.QoS0,
		func(topic string, payload []byte, qos mqtt.QoS, retained bool) { d.MessageArrived("demo", topic, payload) }); err != nil {
		log.Fatal(err)
	}

	device := sparkplug.DeviceDescriptor{EdgeNodeDescriptor: edgeDescriptor, DeviceID: *deviceID}
	pub, err := edge.NewPublisher(edgeClient, &simulator{}, []sparkplug.DeviceDescriptor{device}, *period)
	if err != nil {
		log.Fatal(err)
	}
	if err := pub.Start(); err != nil {
		log.Fatal(err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("tahu-demo: shutting down")
	_ = pub.Shutdown()
	d.Stop()
	edgeClient.Disconnect(mqtt.DisconnectOptions{PublishLWT: true})
	hostClient.Disconnect(mqtt.DisconnectOptions{})
}
