// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mqtt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ClientConfig configures one TahuClient. It is the JSON-facing shape a
// host or edge application loads and validates before constructing a
// client; loading the bytes from a file/env/flag source is the caller's
// job, not this package's.
type ClientConfig struct {
	ServerName string `json:"serverName"`
	ServerURL  string `json:"serverUrl"`
	ClientID   string `json:"clientId,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`

	CleanSession bool `json:"cleanSession"`
	KeepAlive    int  `json:"keepAlive"`
	MaxInflight  int  `json:"maxInflight"`

	AutoReconnect          bool `json:"autoReconnect"`
	ConnectRetryIntervalMs int  `json:"connectRetryIntervalMs"`
	RandomStartupDelayMs   int  `json:"randomStartupDelayMs,omitempty"`
	ConnectTimeoutSec      int  `json:"connectTimeoutSec"`

	BirthTopic  string `json:"birthTopic,omitempty"`
	BirthRetain bool   `json:"birthRetain,omitempty"`

	LWTTopic    string `json:"lwtTopic,omitempty"`
	LWTQoS      QoS    `json:"lwtQos,omitempty"`
	LWTRetained bool   `json:"lwtRetained,omitempty"`
}

// connectRetryInterval and connectTimeout convert the config's millisecond
// and second fields into time.Durations for use by the supervisor.
func (c ClientConfig) connectRetryInterval() time.Duration {
	return time.Duration(c.ConnectRetryIntervalMs) * time.Millisecond
}

func (c ClientConfig) randomStartupDelay() time.Duration {
	return time.Duration(c.RandomStartupDelayMs) * time.Millisecond
}

func (c ClientConfig) connectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSec) * time.Second
}

const configSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["serverName", "serverUrl"],
  "properties": {
    "serverName":   {"type": "string", "minLength": 1},
    "serverUrl":    {"type": "string", "minLength": 1},
    "clientId":     {"type": "string"},
    "username":     {"type": "string"},
    "password":     {"type": "string"},
    "cleanSession": {"type": "boolean"},
    "keepAlive":    {"type": "integer", "minimum": 0},
    "maxInflight":  {"type": "integer", "minimum": 1},
    "autoReconnect": {"type": "boolean"},
    "connectRetryIntervalMs": {"type": "integer", "minimum": 0},
    "randomStartupDelayMs":   {"type": "integer", "minimum": 0},
    "connectTimeoutSec":      {"type": "integer", "minimum": 1},
    "birthTopic":  {"type": "string"},
    "birthRetain": {"type": "boolean"},
    "lwtTopic":    {"type": "string"},
    "lwtQos":      {"type": "integer", "enum": [0, 1, 2]},
    "lwtRetained": {"type": "boolean"}
  }
}`

var configSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("mqtt-client-config.json", strings.NewReader(configSchemaJSON)); err != nil {
		panic(fmt.Sprintf("pkg/mqtt: invalid embedded config schema: %v", err))
	}
	configSchema = compiler.MustCompile("mqtt-client-config.json")
}

// ParseConfig validates raw against the ClientConfig schema, then unmarshals
// it. Defaults (MaxInflight=10, ConnectTimeoutSec=30) are applied after
// validation for any field the caller left at its zero value, and a random
// ClientID is generated if none was supplied.
func ParseConfig(raw json.RawMessage) (ClientConfig, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return ClientConfig{}, fmt.Errorf("mqtt: config is not valid JSON: %w", err)
	}
	if err := configSchema.Validate(generic); err != nil {
		return ClientConfig{}, fmt.Errorf("mqtt: config failed validation: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	var cfg ClientConfig
	if err := dec.Decode(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("mqtt: config decode: %w", err)
	}

	if cfg.MaxInflight == 0 {
		cfg.MaxInflight = 10
	}
	if cfg.ConnectTimeoutSec == 0 {
		cfg.ConnectTimeoutSec = 30
	}
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.New().String()
	}
	return cfg, nil
}
