// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sparkplug

// CompressedUUID marks a SparkplugBPayload whose Body carries a compressed
// inner payload rather than Metrics. See internal/codec's EncodeCompressed.
const CompressedUUID = "SPBV1.0_COMPRESSED"

// SparkplugBPayload is the top-level decoded/to-be-encoded Sparkplug B
// payload: a timestamp, a sequence number (absent on STATE messages), the
// metrics, and an opaque UUID/body pair used by the compressed envelope and
// by file-transfer payloads. The birth/death sequence number is not a field
// here; it travels as the "bdSeq" metric.
type SparkplugBPayload struct {
	Timestamp    int64
	HasTimestamp bool
	Metrics      []Metric
	Seq          uint64
	HasSeq       bool
	UUID         string
	Body         []byte
}

// IsCompressed reports whether p is a compressed-envelope payload per the
// convention in §3 (uuid == CompressedUUID, body holds the compressed
// inner-payload bytes).
func (p SparkplugBPayload) IsCompressed() bool {
	return p.UUID == CompressedUUID
}

// Validate recurses into every metric's Validate.
func (p SparkplugBPayload) Validate() error {
	for i := range p.Metrics {
		if err := p.Metrics[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CompressionAlgorithm returns the "algorithm" metric's string value from a
// compressed-envelope payload, and whether it was present and well-formed.
func (p SparkplugBPayload) CompressionAlgorithm() (string, bool) {
	if !p.IsCompressed() {
		return "", false
	}
	for _, m := range p.Metrics {
		if m.Name != "algorithm" {
			continue
		}
		s, ok := m.Value.Raw.(string)
		return s, ok
	}
	return "", false
}
