// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package edge implements the edge-side periodic publisher: for each
// configured device, request a data payload from a DataSimulator and
// publish it as DDATA on a fixed schedule.
package edge

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/tahu-edge/tahu-go/internal/codec"
	"github.com/tahu-edge/tahu-go/pkg/log"
	"github.com/tahu-edge/tahu-go/pkg/mqtt"
	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

// DataSimulator produces the next DDATA payload for a device. Real
// deployments back this with sensor reads; tests back it with canned
// sequences.
type DataSimulator interface {
	NextPayload(dev sparkplug.DeviceDescriptor) (sparkplug.SparkplugBPayload, error)
}

// Publisher drives one gocron scheduler publishing DDATA for a fixed set of
// devices at a fixed period, via the given TahuClient.
type Publisher struct {
	client    *mqtt.TahuClient
	sim       DataSimulator
	devices   []sparkplug.DeviceDescriptor
	period    time.Duration
	scheduler gocron.Scheduler
	stopped   chan struct{}
}

// NewPublisher constructs a Publisher. It does not start the schedule;
// call Start.
func NewPublisher(client *mqtt.TahuClient, sim DataSimulator, devices []sparkplug.DeviceDescriptor, period time.Duration) (*Publisher, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		client:    client,
		sim:       sim,
		devices:   devices,
		period:    period,
		scheduler: s,
		stopped:   make(chan struct{}),
	}, nil
}

// Start registers the periodic job and starts the scheduler.
func (p *Publisher) Start() error {
	_, err := p.scheduler.NewJob(
		gocron.DurationJob(p.period),
		gocron.NewTask(p.tick),
	)
	if err != nil {
		return err
	}
	p.scheduler.Start()
	return nil
}

// tick publishes one DDATA payload per configured device. A cooperative
// shutdown flag (p.stopped) lets an in-flight tick notice Shutdown was
// called and stop early instead of publishing to every remaining device.
func (p *Publisher) tick() {
	for _, dev := range p.devices {
		select {
		case <-p.stopped:
			return
		default:
		}

		payload, err := p.sim.NextPayload(dev)
		if err != nil {
			log.Warnf("edge: data simulator failed for %s: %v", dev, err)
			continue
		}
		wire, err := codec.Encode(payload)
		if err != nil {
			log.Warnf("edge: encode DDATA for %s failed: %v", dev, err)
			continue
		}
		topic := sparkplug.BuildDeviceTopic(sparkplug.DDATA, dev)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = p.client.AsyncPublish(ctx, topic, mqtt.QoS0, false, wire, 3, 500*time.Millisecond)
		cancel()
		if err != nil {
			log.Warnf("edge: publish DDATA for %s failed: %v", dev, err)
		}
	}
}

// Shutdown sets the cooperative stop flag and tears down the scheduler.
func (p *Publisher) Shutdown() error {
	close(p.stopped)
	return p.scheduler.Shutdown()
}
