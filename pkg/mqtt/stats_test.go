package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStats_AvailabilityAccrual(t *testing.T) {
	s := NewStats("test-client-availability")
	start := time.Now()
	s.lastTransition = start

	s.RecordConnect(start)
	s.RecordDisconnect(start.Add(3 * time.Second))
	s.RecordConnect(start.Add(4 * time.Second))

	snap := s.Query(start.Add(5 * time.Second))
	assert.Equal(t, uint64(2), snap.ConnectionCount)
	assert.Equal(t, 4*time.Second, snap.Uptime)
	assert.Equal(t, 1*time.Second, snap.Downtime)
	assert.InDelta(t, 80.0, snap.Availability, 0.001)
}

func TestStats_MessageDelta(t *testing.T) {
	s := NewStats("test-client-delta")
	s.RecordMessageArrived()
	s.RecordMessageArrived()

	snap := s.Query(time.Now())
	assert.Equal(t, uint64(2), snap.NumMesgsArrived)
	assert.Equal(t, uint64(2), snap.MesgsArrivedSinceLast)

	s.RecordMessageArrived()
	snap = s.Query(time.Now())
	assert.Equal(t, uint64(3), snap.NumMesgsArrived)
	assert.Equal(t, uint64(1), snap.MesgsArrivedSinceLast)
}
