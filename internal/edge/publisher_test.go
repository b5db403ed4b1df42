package edge

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tahu-edge/tahu-go/pkg/mqtt"
	"github.com/tahu-edge/tahu-go/pkg/mqtt/mqtttest"
	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

type countingSimulator struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSimulator) NextPayload(dev sparkplug.DeviceDescriptor) (sparkplug.SparkplugBPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return sparkplug.SparkplugBPayload{
		Timestamp: 1, HasTimestamp: true,
		Metrics: []sparkplug.Metric{{Name: "temp", Value: sparkplug.NewDouble(21.5)}},
	}, nil
}

func (s *countingSimulator) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestPublisher_PublishesOnSchedule(t *testing.T) {
	broker := mqtttest.NewBroker()
	cfg := mqtt.ClientConfig{
		ServerName: "primary", ServerURL: "tcp://localhost:1883", ClientID: "edge-1",
		MaxInflight: 10, ConnectTimeoutSec: 1,
	}
	client := mqtt.NewTahuClient("primary", cfg, mqtttest.NewClientFactory(broker), nil, nil, nil)
	require.NoError(t, client.Connect())

	waitFor(t, func() bool { return client.State() == mqtt.Connected })

	dev := sparkplug.DeviceDescriptor{
		EdgeNodeDescriptor: sparkplug.EdgeNodeDescriptor{GroupID: "G", EdgeID: "E"},
		DeviceID:           "D",
	}
	sim := &countingSimulator{}
	pub, err := NewPublisher(client, sim, []sparkplug.DeviceDescriptor{dev}, 30*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, pub.Start())
	defer pub.Shutdown()

	waitFor(t, func() bool { return sim.count() >= 2 })
}
