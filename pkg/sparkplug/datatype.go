// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sparkplug provides the Sparkplug B data model: typed metric values,
// payloads, property sets, datasets, templates and topic identifiers.
//
// The package has no network or protobuf-wire dependency; it is the shape the
// codec (internal/codec) encodes to and decodes from, and the shape the MQTT
// supervisor (pkg/mqtt) and host dispatcher (internal/dispatch) pass around.
package sparkplug

// MetricDataType identifies the runtime shape of a Metric's value. The
// numeric value is the wire "datatype" field defined by the Sparkplug B
// specification and must not be renumbered.
type MetricDataType int32

const (
	Unknown MetricDataType = iota
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float
	Double
	Boolean
	String
	DateTime
	Text
	UUID
	DataSetType
	Bytes
	File
	TemplateType
	// 20 and 21 are PropertySet and PropertySetList, which only
	// PropertyDataType uses; the array codes start at 22.
	Int8Array MetricDataType = iota + 2
	Int16Array
	Int32Array
	Int64Array
	UInt8Array
	UInt16Array
	UInt32Array
	UInt64Array
	FloatArray
	DoubleArray
	BooleanArray
	StringArray
	DateTimeArray
)

func (t MetricDataType) String() string {
	if s, ok := metricDataTypeNames[t]; ok {
		return s
	}
	return "Unknown"
}

var metricDataTypeNames = map[MetricDataType]string{
	Unknown:       "Unknown",
	Int8:          "Int8",
	Int16:         "Int16",
	Int32:         "Int32",
	Int64:         "Int64",
	UInt8:         "UInt8",
	UInt16:        "UInt16",
	UInt32:        "UInt32",
	UInt64:        "UInt64",
	Float:         "Float",
	Double:        "Double",
	Boolean:       "Boolean",
	String:        "String",
	DateTime:      "DateTime",
	Text:          "Text",
	UUID:          "UUID",
	DataSetType:   "DataSet",
	Bytes:         "Bytes",
	File:          "File",
	TemplateType:  "Template",
	Int8Array:     "Int8Array",
	Int16Array:    "Int16Array",
	Int32Array:    "Int32Array",
	Int64Array:    "Int64Array",
	UInt8Array:    "UInt8Array",
	UInt16Array:   "UInt16Array",
	UInt32Array:   "UInt32Array",
	UInt64Array:   "UInt64Array",
	FloatArray:    "FloatArray",
	DoubleArray:   "DoubleArray",
	BooleanArray:  "BooleanArray",
	StringArray:   "StringArray",
	DateTimeArray: "DateTimeArray",
}

// IsArray reports whether t's value shape is a packed array ([]T).
func (t MetricDataType) IsArray() bool {
	return t >= Int8Array && t <= DateTimeArray
}

// PropertyDataType is the subset of MetricDataType legal for PropertyValue:
// no arrays or Template, but PropertySet/PropertySetList are only legal here
// (and not as plain Metric values).
type PropertyDataType int32

const (
	PropUnknown PropertyDataType = iota
	PropInt8
	PropInt16
	PropInt32
	PropInt64
	PropUInt8
	PropUInt16
	PropUInt32
	PropUInt64
	PropFloat
	PropDouble
	PropBoolean
	PropString
	PropDateTime
	PropText
	PropUUID
	PropDataSet
	PropBytes
	PropFile
	// 19 is Template, which is not a property type.
	PropPropertySet PropertyDataType = iota + 1
	PropPropertySetList
)

// ParameterDataType is the subset of MetricDataType legal for Template
// Parameters: no arrays, DataSet, Template or PropertySet.
type ParameterDataType int32

const (
	ParamUnknown ParameterDataType = iota
	ParamInt8
	ParamInt16
	ParamInt32
	ParamInt64
	ParamUInt8
	ParamUInt16
	ParamUInt32
	ParamUInt64
	ParamFloat
	ParamDouble
	ParamBoolean
	ParamString
	ParamDateTime
	ParamText
)

// DataSetDataType is the subset of MetricDataType legal for a DataSet
// column: scalars only, no composite types.
type DataSetDataType int32

const (
	DataSetUnknown DataSetDataType = iota
	DataSetInt8
	DataSetInt16
	DataSetInt32
	DataSetInt64
	DataSetUInt8
	DataSetUInt16
	DataSetUInt32
	DataSetUInt64
	DataSetFloat
	DataSetDouble
	DataSetBoolean
	DataSetString
)
