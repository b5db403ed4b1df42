// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sparkplug

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a tagged union over MetricDataType: exactly one Go shape is legal
// for a given Type, and Validate enforces that invariant. A None value with
// a declared Type is legal (encoded via the metric's isNull flag) and is
// represented by Raw == nil.
type Value struct {
	Type MetricDataType
	Raw  any
}

// None constructs a null value of the given type.
func None(t MetricDataType) Value { return Value{Type: t} }

func NewInt8(v int8) Value     { return Value{Type: Int8, Raw: v} }
func NewInt16(v int16) Value   { return Value{Type: Int16, Raw: v} }
func NewInt32(v int32) Value   { return Value{Type: Int32, Raw: v} }
func NewInt64(v int64) Value   { return Value{Type: Int64, Raw: v} }
func NewUInt8(v uint8) Value   { return Value{Type: UInt8, Raw: v} }
func NewUInt16(v uint16) Value { return Value{Type: UInt16, Raw: v} }
func NewUInt32(v uint32) Value { return Value{Type: UInt32, Raw: v} }

// NewUInt64 carries a full 64-bit unsigned value. Use NewUInt64FromBig for
// ingress paths (e.g. JSON) that parse into a wider/signed integer, so the
// [0, 2^64) bound is checked once here.
func NewUInt64(v uint64) Value       { return Value{Type: UInt64, Raw: v} }
func NewFloat(v float32) Value       { return Value{Type: Float, Raw: v} }
func NewDouble(v float64) Value      { return Value{Type: Double, Raw: v} }
func NewBoolean(v bool) Value        { return Value{Type: Boolean, Raw: v} }
func NewString(v string) Value       { return Value{Type: String, Raw: v} }
func NewDateTime(v int64) Value      { return Value{Type: DateTime, Raw: v} }
func NewText(v string) Value         { return Value{Type: Text, Raw: v} }
func NewUUID(v string) Value         { return Value{Type: UUID, Raw: v} }
func NewBytes(v []byte) Value        { return Value{Type: Bytes, Raw: v} }
func NewDataSet(v DataSet) Value     { return Value{Type: DataSetType, Raw: v} }
func NewTemplate(v Template) Value   { return Value{Type: TemplateType, Raw: v} }
func NewInt8Array(v []int8) Value    { return Value{Type: Int8Array, Raw: v} }
func NewInt16Array(v []int16) Value  { return Value{Type: Int16Array, Raw: v} }
func NewInt32Array(v []int32) Value  { return Value{Type: Int32Array, Raw: v} }
func NewInt64Array(v []int64) Value  { return Value{Type: Int64Array, Raw: v} }
func NewUInt8Array(v []uint8) Value  { return Value{Type: UInt8Array, Raw: v} }
func NewUInt16Array(v []uint16) Value {
	return Value{Type: UInt16Array, Raw: v}
}
func NewUInt32Array(v []uint32) Value { return Value{Type: UInt32Array, Raw: v} }
func NewUInt64Array(v []uint64) Value { return Value{Type: UInt64Array, Raw: v} }
func NewFloatArray(v []float32) Value { return Value{Type: FloatArray, Raw: v} }
func NewDoubleArray(v []float64) Value {
	return Value{Type: DoubleArray, Raw: v}
}
func NewBooleanArray(v []bool) Value   { return Value{Type: BooleanArray, Raw: v} }
func NewStringArray(v []string) Value  { return Value{Type: StringArray, Raw: v} }
func NewDateTimeArray(v []int64) Value { return Value{Type: DateTimeArray, Raw: v} }

// IsNull reports whether the value carries no payload (a typed null).
func (v Value) IsNull() bool { return v.Raw == nil }

// Validate checks that Raw's Go shape matches what Type requires.
// It is the authoritative check behind the codec's InvalidType rejection.
func (v Value) Validate() error {
	if v.Raw == nil {
		return nil
	}

	wantKind, ok := valueShapes[v.Type]
	if !ok {
		return &Error{Kind: UnknownType, Op: "Value.Validate", Err: fmt.Errorf("datatype %s", v.Type)}
	}
	if gotKind := fmt.Sprintf("%T", v.Raw); gotKind != wantKind {
		return &Error{Kind: InvalidType, Op: "Value.Validate",
			Err: fmt.Errorf("datatype %s requires go type %s, got %s", v.Type, wantKind, gotKind)}
	}
	if v.Type == UInt64 {
		// Representable range is enforced at ingress (NewUInt64FromBig); a
		// native uint64 is always in [0, 2^64) so there is nothing further
		// to check here.
		_ = v.Raw.(uint64)
	}
	return nil
}

var valueShapes = map[MetricDataType]string{
	Int8:          "int8",
	Int16:         "int16",
	Int32:         "int32",
	Int64:         "int64",
	UInt8:         "uint8",
	UInt16:        "uint16",
	UInt32:        "uint32",
	UInt64:        "uint64",
	Float:         "float32",
	Double:        "float64",
	Boolean:       "bool",
	String:        "string",
	DateTime:      "int64",
	Text:          "string",
	UUID:          "string",
	DataSetType:   "sparkplug.DataSet",
	Bytes:         "[]uint8",
	File:          "[]uint8",
	TemplateType:  "sparkplug.Template",
	Int8Array:     "[]int8",
	Int16Array:    "[]int16",
	Int32Array:    "[]int32",
	Int64Array:    "[]int64",
	UInt8Array:    "[]uint8",
	UInt16Array:   "[]uint16",
	UInt32Array:   "[]uint32",
	UInt64Array:   "[]uint64",
	FloatArray:    "[]float32",
	DoubleArray:   "[]float64",
	BooleanArray:  "[]bool",
	StringArray:   "[]string",
	DateTimeArray: "[]int64",
}

// NewUInt64FromBig validates a big-integer-sourced ingress value against the
// unsigned 64-bit range before wrapping it. Negative or >= 2^64 inputs are
// rejected with OutOfRange (scenario: spec.md §8 "UInt64 boundary").
func NewUInt64FromBig(negative bool, magnitude uint64, tooLarge bool) (Value, error) {
	if negative || tooLarge {
		return Value{}, &Error{Kind: OutOfRange, Op: "NewUInt64FromBig", Err: fmt.Errorf("value outside [0, 2^64)")}
	}
	return NewUInt64(magnitude), nil
}

// ToBoolean coerces a decoded or ingress value to bool per spec.md §4.1:
// numeric 0 is false, any other numeric is true; strings are parsed
// case-insensitively as "true"/"false"; anything else is rejected.
func ToBoolean(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return false, &Error{Kind: InvalidType, Op: "ToBoolean", Err: fmt.Errorf("not a boolean string: %q", x)}
		}
	case int8, int16, int32, int64, uint8, uint16, uint32, uint64, int, uint:
		n, _ := strconv.ParseInt(fmt.Sprintf("%d", x), 10, 64)
		return n != 0, nil
	case float32:
		return x != 0, nil
	case float64:
		return x != 0, nil
	default:
		return false, &Error{Kind: InvalidType, Op: "ToBoolean", Err: fmt.Errorf("unsupported type %T", v)}
	}
}
