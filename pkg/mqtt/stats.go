// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mqtt

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	connectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tahu_mqtt_connections_total",
		Help: "Number of times a TahuClient has successfully connected.",
	}, []string{"client_id"})

	messagesArrivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tahu_mqtt_messages_arrived_total",
		Help: "Number of MQTT messages delivered to a TahuClient.",
	}, []string{"client_id"})

	availabilityPercent = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tahu_mqtt_availability_percent",
		Help: "uptime / (uptime + downtime) * 100 for a TahuClient.",
	}, []string{"client_id"})
)

func init() {
	prometheus.MustRegister(connectionsTotal, messagesArrivedTotal, availabilityPercent)
}

// Stats is a TahuClient's connection/message accounting, matching spec.md
// §4.4's "connectionCount, numMesgsArrived, delta-since-last-query,
// cumulative uptime/downtime, availability".
type Stats struct {
	clientID string

	mu                  sync.Mutex
	connectionCount     uint64
	numMesgsArrived     uint64
	lastQueryMesgCount  uint64
	uptime              time.Duration
	downtime            time.Duration
	online              bool
	lastTransition      time.Time
}

// NewStats constructs a Stats block labeled for Prometheus export under
// clientID.
func NewStats(clientID string) *Stats {
	return &Stats{clientID: clientID, lastTransition: timeNow()}
}

// timeNow is a seam so tests can observe deterministic uptime/downtime
// accounting without sleeping.
var timeNow = time.Now

func (s *Stats) accrue(now time.Time) {
	if s.lastTransition.IsZero() {
		s.lastTransition = now
		return
	}
	delta := now.Sub(s.lastTransition)
	if s.online {
		s.uptime += delta
	} else {
		s.downtime += delta
	}
	s.lastTransition = now
}

// RecordConnect marks the client as having completed a connection.
func (s *Stats) RecordConnect(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accrue(now)
	s.connectionCount++
	s.online = true
	connectionsTotal.WithLabelValues(s.clientID).Inc()
	availabilityPercent.WithLabelValues(s.clientID).Set(s.availabilityLocked())
}

// RecordDisconnect marks the client as having lost or ended its connection.
func (s *Stats) RecordDisconnect(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accrue(now)
	s.online = false
	availabilityPercent.WithLabelValues(s.clientID).Set(s.availabilityLocked())
}

// RecordMessageArrived increments the arrived-message counter.
func (s *Stats) RecordMessageArrived() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numMesgsArrived++
	messagesArrivedTotal.WithLabelValues(s.clientID).Inc()
}

// Snapshot is a point-in-time copy of a Stats block's counters.
type Snapshot struct {
	ConnectionCount       uint64
	NumMesgsArrived       uint64
	MesgsArrivedSinceLast uint64
	Uptime                time.Duration
	Downtime              time.Duration
	Availability          float64
}

// Query returns the current counters and resets the since-last-query delta.
func (s *Stats) Query(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accrue(now)
	delta := s.numMesgsArrived - s.lastQueryMesgCount
	s.lastQueryMesgCount = s.numMesgsArrived
	return Snapshot{
		ConnectionCount:       s.connectionCount,
		NumMesgsArrived:       s.numMesgsArrived,
		MesgsArrivedSinceLast: delta,
		Uptime:                s.uptime,
		Downtime:              s.downtime,
		Availability:          s.availabilityLocked(),
	}
}

func (s *Stats) availabilityLocked() float64 {
	total := s.uptime + s.downtime
	if total == 0 {
		return 0
	}
	return float64(s.uptime) / float64(total) * 100
}
