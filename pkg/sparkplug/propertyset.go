// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sparkplug

import "fmt"

// PropertyValue is a single typed property, mirroring Value but drawn from
// PropertyDataType: PropertySet/PropertySetList and DataSet are legal here,
// scalar arrays and Template are not.
type PropertyValue struct {
	Type PropertyDataType
	Raw  any // nil means null
}

// PropertySet is an ordered set of named properties attached to a Metric.
type PropertySet struct {
	Keys   []string
	Values []PropertyValue
}

// Get returns the value for key and whether it was present.
func (p PropertySet) Get(key string) (PropertyValue, bool) {
	for i, k := range p.Keys {
		if k == key {
			return p.Values[i], true
		}
	}
	return PropertyValue{}, false
}

// Set adds or replaces the property named key.
func (p *PropertySet) Set(key string, v PropertyValue) {
	for i, k := range p.Keys {
		if k == key {
			p.Values[i] = v
			return
		}
	}
	p.Keys = append(p.Keys, key)
	p.Values = append(p.Values, v)
}

var propertyShapes = map[PropertyDataType]string{
	PropInt8:            "int8",
	PropInt16:           "int16",
	PropInt32:           "int32",
	PropInt64:           "int64",
	PropUInt8:           "uint8",
	PropUInt16:          "uint16",
	PropUInt32:          "uint32",
	PropUInt64:          "uint64",
	PropFloat:           "float32",
	PropDouble:          "float64",
	PropBoolean:         "bool",
	PropString:          "string",
	PropDateTime:        "int64",
	PropText:            "string",
	PropUUID:            "string",
	PropDataSet:         "sparkplug.DataSet",
	PropBytes:           "[]uint8",
	PropFile:            "[]uint8",
	PropPropertySet:     "sparkplug.PropertySet",
	PropPropertySetList: "[]sparkplug.PropertySet",
}

// Validate checks Raw's Go shape against Type, mirroring Value.Validate.
func (v PropertyValue) Validate() error {
	if v.Raw == nil {
		return nil
	}
	want, ok := propertyShapes[v.Type]
	if !ok {
		return &Error{Kind: UnknownType, Op: "PropertyValue.Validate", Err: fmt.Errorf("property datatype %d", v.Type)}
	}
	if got := fmt.Sprintf("%T", v.Raw); got != want {
		return &Error{Kind: InvalidType, Op: "PropertyValue.Validate",
			Err: fmt.Errorf("property datatype %d requires go type %s, got %s", v.Type, want, got)}
	}
	return nil
}
