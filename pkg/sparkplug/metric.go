// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sparkplug

import "fmt"

// Metric is one named, typed datapoint inside a SparkplugBPayload.
//
// Alias carries the numeric alias a BIRTH message assigns to a metric name;
// DATA/CMD messages may then reference the metric by Alias alone, with Name
// left empty — resolving an alias back to a name is the responsibility of
// the birth/death cache, not of Metric itself.
type Metric struct {
	Name         string
	Alias        uint64
	HasAlias     bool
	Timestamp    int64
	HasTimestamp bool
	Value        Value
	IsHistorical bool
	IsTransient  bool
	IsNull       bool
	MetaData     *MetaData
	Properties   *PropertySet
}

// Validate checks the metric's own Value and, for DataSet/Template-typed
// metrics, recurses into the composite's structural validation.
func (m Metric) Validate() error {
	if m.Name == "" && !m.HasAlias {
		return &Error{Kind: MalformedWire, Op: "Metric.Validate", Err: fmt.Errorf("metric has neither name nor alias")}
	}
	if m.IsNull {
		return nil
	}
	if err := m.Value.Validate(); err != nil {
		return err
	}
	switch v := m.Value.Raw.(type) {
	case DataSet:
		return v.Validate()
	case Template:
		return v.Validate()
	}
	return nil
}
