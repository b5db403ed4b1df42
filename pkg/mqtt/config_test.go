package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	raw := json.RawMessage(`{
		"serverName": "primary",
		"serverUrl": "tcp://localhost:1883",
		"clientId": "edge-1"
	}`)

	cfg, err := ParseConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.ServerName)
	assert.Equal(t, 10, cfg.MaxInflight)
	assert.Equal(t, 30, cfg.ConnectTimeoutSec)
}

func TestParseConfig_RejectsMissingRequired(t *testing.T) {
	raw := json.RawMessage(`{"serverName": "primary"}`)
	_, err := ParseConfig(raw)
	assert.Error(t, err)
}

func TestParseConfig_GeneratesClientIDWhenOmitted(t *testing.T) {
	raw := json.RawMessage(`{
		"serverName": "primary",
		"serverUrl": "tcp://localhost:1883"
	}`)
	cfg, err := ParseConfig(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ClientID)
}

func TestParseConfig_RejectsBadLWTQoS(t *testing.T) {
	raw := json.RawMessage(`{
		"serverName": "primary",
		"serverUrl": "tcp://localhost:1883",
		"clientId": "edge-1",
		"lwtQos": 5
	}`)
	_, err := ParseConfig(raw)
	assert.Error(t, err)
}

func TestParseConfig_KeepsExplicitValues(t *testing.T) {
	raw := json.RawMessage(`{
		"serverName": "primary",
		"serverUrl": "tcp://localhost:1883",
		"clientId": "edge-1",
		"maxInflight": 25,
		"connectTimeoutSec": 5
	}`)
	cfg, err := ParseConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.MaxInflight)
	assert.Equal(t, 5, cfg.ConnectTimeoutSec)
}
