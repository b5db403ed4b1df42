// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

// encodePackedArray packs an array-typed Value's Raw slice into the
// little-endian byte layouts spec.md §4.1 defines. It never emits a length
// prefix except for BooleanArray, which carries its own 4-byte LE count.
func encodePackedArray(t sparkplug.MetricDataType, raw any) ([]byte, error) {
	switch t {
	case sparkplug.Int8Array:
		vs := raw.([]int8)
		out := make([]byte, len(vs))
		for i, v := range vs {
			out[i] = byte(v)
		}
		return out, nil
	case sparkplug.Int16Array:
		vs := raw.([]int16)
		out := make([]byte, len(vs)*2)
		for i, v := range vs {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
		}
		return out, nil
	case sparkplug.Int32Array:
		vs := raw.([]int32)
		out := make([]byte, len(vs)*4)
		for i, v := range vs {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
		}
		return out, nil
	case sparkplug.Int64Array:
		vs := raw.([]int64)
		out := make([]byte, len(vs)*8)
		for i, v := range vs {
			binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
		}
		return out, nil
	case sparkplug.UInt8Array:
		vs := raw.([]uint8)
		out := make([]byte, len(vs))
		copy(out, vs)
		return out, nil
	case sparkplug.UInt16Array:
		vs := raw.([]uint16)
		out := make([]byte, len(vs)*2)
		for i, v := range vs {
			binary.LittleEndian.PutUint16(out[i*2:], v)
		}
		return out, nil
	case sparkplug.UInt32Array:
		vs := raw.([]uint32)
		out := make([]byte, len(vs)*4)
		for i, v := range vs {
			binary.LittleEndian.PutUint32(out[i*4:], v)
		}
		return out, nil
	case sparkplug.UInt64Array:
		vs := raw.([]uint64)
		out := make([]byte, len(vs)*8)
		for i, v := range vs {
			binary.LittleEndian.PutUint64(out[i*8:], v)
		}
		return out, nil
	case sparkplug.FloatArray:
		vs := raw.([]float32)
		out := make([]byte, len(vs)*4)
		for i, v := range vs {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
		}
		return out, nil
	case sparkplug.DoubleArray:
		vs := raw.([]float64)
		out := make([]byte, len(vs)*8)
		for i, v := range vs {
			binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
		}
		return out, nil
	case sparkplug.DateTimeArray:
		vs := raw.([]int64)
		out := make([]byte, len(vs)*8)
		for i, v := range vs {
			binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
		}
		return out, nil
	case sparkplug.BooleanArray:
		vs := raw.([]bool)
		n := len(vs)
		packed := (n + 7) / 8
		out := make([]byte, 4+packed)
		binary.LittleEndian.PutUint32(out[0:4], uint32(n))
		for i, v := range vs {
			if !v {
				continue
			}
			out[4+i/8] |= 1 << (7 - uint(i%8))
		}
		return out, nil
	case sparkplug.StringArray:
		vs := raw.([]string)
		var out []byte
		for _, s := range vs {
			out = append(out, []byte(s)...)
			out = append(out, 0)
		}
		return out, nil
	default:
		return nil, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "encodePackedArray", Err: fmt.Errorf("datatype %s is not an array type", t)}
	}
}

// decodePackedArray is the inverse of encodePackedArray.
func decodePackedArray(t sparkplug.MetricDataType, data []byte) (any, error) {
	switch t {
	case sparkplug.Int8Array:
		out := make([]int8, len(data))
		for i, b := range data {
			out[i] = int8(b)
		}
		return out, nil
	case sparkplug.Int16Array:
		if len(data)%2 != 0 {
			return nil, truncatedArray(t, len(data), 2)
		}
		out := make([]int16, len(data)/2)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
		return out, nil
	case sparkplug.Int32Array:
		if len(data)%4 != 0 {
			return nil, truncatedArray(t, len(data), 4)
		}
		out := make([]int32, len(data)/4)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return out, nil
	case sparkplug.Int64Array:
		if len(data)%8 != 0 {
			return nil, truncatedArray(t, len(data), 8)
		}
		out := make([]int64, len(data)/8)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return out, nil
	case sparkplug.UInt8Array:
		out := make([]uint8, len(data))
		copy(out, data)
		return out, nil
	case sparkplug.UInt16Array:
		if len(data)%2 != 0 {
			return nil, truncatedArray(t, len(data), 2)
		}
		out := make([]uint16, len(data)/2)
		for i := range out {
			out[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
		return out, nil
	case sparkplug.UInt32Array:
		if len(data)%4 != 0 {
			return nil, truncatedArray(t, len(data), 4)
		}
		out := make([]uint32, len(data)/4)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
		return out, nil
	case sparkplug.UInt64Array:
		if len(data)%8 != 0 {
			return nil, truncatedArray(t, len(data), 8)
		}
		out := make([]uint64, len(data)/8)
		for i := range out {
			out[i] = binary.LittleEndian.Uint64(data[i*8:])
		}
		return out, nil
	case sparkplug.FloatArray:
		if len(data)%4 != 0 {
			return nil, truncatedArray(t, len(data), 4)
		}
		out := make([]float32, len(data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return out, nil
	case sparkplug.DoubleArray:
		if len(data)%8 != 0 {
			return nil, truncatedArray(t, len(data), 8)
		}
		out := make([]float64, len(data)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return out, nil
	case sparkplug.DateTimeArray:
		if len(data)%8 != 0 {
			return nil, truncatedArray(t, len(data), 8)
		}
		out := make([]int64, len(data)/8)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return out, nil
	case sparkplug.BooleanArray:
		if len(data) < 4 {
			return nil, truncatedArray(t, len(data), 4)
		}
		n := int(binary.LittleEndian.Uint32(data[0:4]))
		packed := (n + 7) / 8
		if len(data) < 4+packed {
			return nil, truncatedArray(t, len(data), 4+packed)
		}
		out := make([]bool, n)
		body := data[4:]
		for i := 0; i < n; i++ {
			out[i] = (body[i/8]>>(7-uint(i%8)))&1 == 1
		}
		return out, nil
	case sparkplug.StringArray:
		var out []string
		start := 0
		for i, b := range data {
			if b == 0 {
				out = append(out, string(data[start:i]))
				start = i + 1
			}
		}
		if start != len(data) {
			return nil, &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: "decodePackedArray",
				Err: fmt.Errorf("string array missing trailing NUL")}
		}
		return out, nil
	default:
		return nil, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "decodePackedArray", Err: fmt.Errorf("datatype %s is not an array type", t)}
	}
}

func truncatedArray(t sparkplug.MetricDataType, got, want int) error {
	return &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: "decodePackedArray",
		Err: fmt.Errorf("%s: truncated array, have %d bytes, need multiple/minimum of %d", t, got, want)}
}
