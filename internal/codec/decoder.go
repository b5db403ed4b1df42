// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

// rawField is one decoded (but not yet type-interpreted) protobuf field.
type rawField struct {
	num protowire.Number
	typ protowire.Type
	u64 uint64 // VarintType, Fixed64Type (bit pattern), Fixed32Type (zero-extended)
	buf []byte // BytesType
}

func consumeFields(b []byte) ([]rawField, error) {
	var fields []rawField
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed("consumeFields", protowire.ParseError(n))
		}
		b = b[n:]
		var f rawField
		f.num, f.typ = num, typ
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, malformed("consumeFields", protowire.ParseError(n))
			}
			f.u64 = v
			b = b[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return nil, malformed("consumeFields", protowire.ParseError(n))
			}
			f.u64 = uint64(v)
			b = b[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, malformed("consumeFields", protowire.ParseError(n))
			}
			f.u64 = v
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, malformed("consumeFields", protowire.ParseError(n))
			}
			f.buf = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed("consumeFields", protowire.ParseError(n))
			}
			b = b[n:]
			continue // unknown wire type we don't model: forward-compat skip
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func malformed(op string, err error) error {
	return &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: op, Err: err}
}

// Decode parses protobuf wire bytes into a Sparkplug B payload.
func Decode(data []byte) (sparkplug.SparkplugBPayload, error) {
	fields, err := consumeFields(data)
	if err != nil {
		return sparkplug.SparkplugBPayload{}, err
	}
	var p sparkplug.SparkplugBPayload
	for _, f := range fields {
		switch f.num {
		case fPayloadTimestamp:
			p.Timestamp, p.HasTimestamp = int64(f.u64), true
		case fPayloadMetrics:
			m, err := decodeMetric(f.buf)
			if err != nil {
				return sparkplug.SparkplugBPayload{}, err
			}
			p.Metrics = append(p.Metrics, m)
		case fPayloadSeq:
			p.Seq, p.HasSeq = f.u64, true
		case fPayloadUUID:
			p.UUID = string(f.buf)
		case fPayloadBody:
			p.Body = append([]byte(nil), f.buf...)
		}
	}
	return p, nil
}

func decodeMetric(data []byte) (sparkplug.Metric, error) {
	fields, err := consumeFields(data)
	if err != nil {
		return sparkplug.Metric{}, err
	}
	var m sparkplug.Metric
	var dt sparkplug.MetricDataType
	haveDatatype := false
	var intValue, longValue uint64
	var floatValue uint32
	var doubleValue uint64
	var boolValue bool
	var stringValue string
	var bytesValue []byte
	var dataSetField, templateField []byte
	haveInt, haveLong, haveFloat, haveDouble, haveBool, haveString, haveBytes, haveDataSet, haveTemplate := false, false, false, false, false, false, false, false, false

	for _, f := range fields {
		switch f.num {
		case fMetricName:
			m.Name = string(f.buf)
		case fMetricAlias:
			m.Alias, m.HasAlias = f.u64, true
		case fMetricTimestamp:
			m.Timestamp, m.HasTimestamp = int64(f.u64), true
		case fMetricDatatype:
			dt, haveDatatype = sparkplug.MetricDataType(f.u64), true
		case fMetricIsHistorical:
			m.IsHistorical = f.u64 != 0
		case fMetricIsTransient:
			m.IsTransient = f.u64 != 0
		case fMetricIsNull:
			m.IsNull = f.u64 != 0
		case fMetricMetaData:
			md, err := decodeMetaData(f.buf)
			if err != nil {
				return sparkplug.Metric{}, err
			}
			m.MetaData = &md
		case fMetricProperties:
			ps, err := decodePropertySet(f.buf)
			if err != nil {
				return sparkplug.Metric{}, err
			}
			m.Properties = &ps
		case fMetricIntValue:
			intValue, haveInt = f.u64, true
		case fMetricLongValue:
			longValue, haveLong = f.u64, true
		case fMetricFloatValue:
			floatValue, haveFloat = uint32(f.u64), true
		case fMetricDoubleValue:
			doubleValue, haveDouble = f.u64, true
		case fMetricBooleanValue:
			boolValue, haveBool = f.u64 != 0, true
		case fMetricStringValue:
			stringValue, haveString = string(f.buf), true
		case fMetricBytesValue:
			bytesValue, haveBytes = f.buf, true
		case fMetricDataSetValue:
			dataSetField, haveDataSet = f.buf, true
		case fMetricTemplateValue:
			templateField, haveTemplate = f.buf, true
		}
	}

	if !haveDatatype {
		return sparkplug.Metric{}, &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: "decodeMetric", Err: fmt.Errorf("missing datatype")}
	}
	if m.IsNull {
		m.Value = sparkplug.None(dt)
		return m, nil
	}

	var raw any
	switch dt {
	case sparkplug.Int8:
		if !haveInt {
			return sparkplug.Metric{}, typeMismatch(dt, "intValue")
		}
		raw = int8(uint8(intValue))
	case sparkplug.Int16:
		if !haveInt {
			return sparkplug.Metric{}, typeMismatch(dt, "intValue")
		}
		raw = int16(uint16(intValue))
	case sparkplug.Int32:
		if !haveInt {
			return sparkplug.Metric{}, typeMismatch(dt, "intValue")
		}
		raw = int32(uint32(intValue))
	case sparkplug.UInt8:
		if !haveInt {
			return sparkplug.Metric{}, typeMismatch(dt, "intValue")
		}
		raw = uint8(intValue)
	case sparkplug.UInt16:
		if !haveInt {
			return sparkplug.Metric{}, typeMismatch(dt, "intValue")
		}
		raw = uint16(intValue)
	case sparkplug.UInt32:
		if !haveLong {
			return sparkplug.Metric{}, typeMismatch(dt, "longValue")
		}
		if longValue > math.MaxUint32 {
			return sparkplug.Metric{}, &sparkplug.Error{Kind: sparkplug.OutOfRange, Op: "decodeMetric", Err: fmt.Errorf("UInt32 value %d outside [0, 2^32)", longValue)}
		}
		raw = uint32(longValue)
	case sparkplug.Int64:
		if !haveLong {
			return sparkplug.Metric{}, typeMismatch(dt, "longValue")
		}
		raw = int64(longValue)
	case sparkplug.UInt64:
		if !haveLong {
			return sparkplug.Metric{}, typeMismatch(dt, "longValue")
		}
		raw = longValue
	case sparkplug.DateTime:
		if !haveLong {
			return sparkplug.Metric{}, typeMismatch(dt, "longValue")
		}
		raw = int64(longValue)
	case sparkplug.Float:
		if !haveFloat {
			return sparkplug.Metric{}, typeMismatch(dt, "floatValue")
		}
		raw = math.Float32frombits(floatValue)
	case sparkplug.Double:
		if !haveDouble {
			return sparkplug.Metric{}, typeMismatch(dt, "doubleValue")
		}
		raw = math.Float64frombits(doubleValue)
	case sparkplug.Boolean:
		if !haveBool {
			return sparkplug.Metric{}, typeMismatch(dt, "booleanValue")
		}
		raw = boolValue
	case sparkplug.String, sparkplug.Text, sparkplug.UUID:
		if !haveString {
			return sparkplug.Metric{}, typeMismatch(dt, "stringValue")
		}
		raw = stringValue
	case sparkplug.Bytes, sparkplug.File:
		if !haveBytes {
			return sparkplug.Metric{}, typeMismatch(dt, "bytesValue")
		}
		raw = append([]byte(nil), bytesValue...)
	case sparkplug.DataSetType:
		if !haveDataSet {
			return sparkplug.Metric{}, typeMismatch(dt, "datasetValue")
		}
		ds, err := decodeDataSet(dataSetField)
		if err != nil {
			return sparkplug.Metric{}, err
		}
		raw = ds
	case sparkplug.TemplateType:
		if !haveTemplate {
			return sparkplug.Metric{}, typeMismatch(dt, "templateValue")
		}
		tpl, err := decodeTemplate(templateField)
		if err != nil {
			return sparkplug.Metric{}, err
		}
		raw = tpl
	default:
		if !dt.IsArray() {
			return sparkplug.Metric{}, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "decodeMetric", Err: fmt.Errorf("datatype %s", dt)}
		}
		if !haveBytes {
			return sparkplug.Metric{}, typeMismatch(dt, "bytesValue")
		}
		arr, err := decodePackedArray(dt, bytesValue)
		if err != nil {
			return sparkplug.Metric{}, err
		}
		raw = arr
	}
	m.Value = sparkplug.Value{Type: dt, Raw: raw}
	return m, nil
}

func typeMismatch(dt sparkplug.MetricDataType, wantField string) error {
	return &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: "decodeMetric",
		Err: fmt.Errorf("datatype %s requires %s, field absent", dt, wantField)}
}

func decodeMetaData(data []byte) (sparkplug.MetaData, error) {
	fields, err := consumeFields(data)
	if err != nil {
		return sparkplug.MetaData{}, err
	}
	var md sparkplug.MetaData
	for _, f := range fields {
		switch f.num {
		case fMetaIsMultiPart:
			md.IsMultiPart = f.u64 != 0
		case fMetaContentType:
			md.ContentType = string(f.buf)
		case fMetaSize:
			md.Size = f.u64
		case fMetaSeq:
			md.Seq = f.u64
		case fMetaFileName:
			md.FileName = string(f.buf)
		case fMetaFileType:
			md.FileType = string(f.buf)
		case fMetaMD5:
			md.MD5 = string(f.buf)
		case fMetaDescription:
			md.Description = string(f.buf)
		}
	}
	return md, nil
}

func decodePropertySet(data []byte) (sparkplug.PropertySet, error) {
	fields, err := consumeFields(data)
	if err != nil {
		return sparkplug.PropertySet{}, err
	}
	var ps sparkplug.PropertySet
	for _, f := range fields {
		switch f.num {
		case fPropSetKeys:
			ps.Keys = append(ps.Keys, string(f.buf))
		case fPropSetValues:
			v, err := decodePropertyValue(f.buf)
			if err != nil {
				return sparkplug.PropertySet{}, err
			}
			ps.Values = append(ps.Values, v)
		}
	}
	if len(ps.Keys) != len(ps.Values) {
		return sparkplug.PropertySet{}, &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: "decodePropertySet",
			Err: fmt.Errorf("%d keys, %d values", len(ps.Keys), len(ps.Values))}
	}
	return ps, nil
}

func decodePropertyValue(data []byte) (sparkplug.PropertyValue, error) {
	fields, err := consumeFields(data)
	if err != nil {
		return sparkplug.PropertyValue{}, err
	}
	var pt sparkplug.PropertyDataType
	haveType := false
	isNull := false
	var intValue, longValue uint64
	var floatValue uint32
	var doubleValue uint64
	var boolValue bool
	var stringValue string
	var propSet []byte
	var propSetList [][]byte
	haveInt, haveLong, haveFloat, haveDouble, haveBool, haveString, havePropSet := false, false, false, false, false, false, false

	for _, f := range fields {
		switch f.num {
		case fPropValueType:
			pt, haveType = sparkplug.PropertyDataType(f.u64), true
		case fPropValueIsNull:
			isNull = f.u64 != 0
		case fPropValueIntValue:
			intValue, haveInt = f.u64, true
		case fPropValueLongValue:
			longValue, haveLong = f.u64, true
		case fPropValueFloatValue:
			floatValue, haveFloat = uint32(f.u64), true
		case fPropValueDoubleValue:
			doubleValue, haveDouble = f.u64, true
		case fPropValueBoolValue:
			boolValue, haveBool = f.u64 != 0, true
		case fPropValueStringValue:
			stringValue, haveString = string(f.buf), true
		case fPropValuePropSet:
			propSet, havePropSet = f.buf, true
		case fPropValuePropSetList:
			sub, err := consumeFields(f.buf)
			if err != nil {
				return sparkplug.PropertyValue{}, err
			}
			for _, s := range sub {
				if s.num == fPropSetListSets {
					propSetList = append(propSetList, s.buf)
				}
			}
		}
	}
	if !haveType {
		return sparkplug.PropertyValue{}, &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: "decodePropertyValue", Err: fmt.Errorf("missing type")}
	}
	if isNull {
		return sparkplug.PropertyValue{Type: pt}, nil
	}

	var raw any
	switch pt {
	case sparkplug.PropInt8:
		raw = int8(uint8(intValue))
	case sparkplug.PropInt16:
		raw = int16(uint16(intValue))
	case sparkplug.PropInt32:
		raw = int32(uint32(intValue))
	case sparkplug.PropUInt8:
		raw = uint8(intValue)
	case sparkplug.PropUInt16:
		raw = uint16(intValue)
	case sparkplug.PropUInt32:
		if longValue > math.MaxUint32 {
			return sparkplug.PropertyValue{}, &sparkplug.Error{Kind: sparkplug.OutOfRange, Op: "decodePropertyValue", Err: fmt.Errorf("UInt32 value %d outside [0, 2^32)", longValue)}
		}
		raw = uint32(longValue)
	case sparkplug.PropInt64:
		raw = int64(longValue)
	case sparkplug.PropUInt64:
		raw = longValue
	case sparkplug.PropDateTime:
		raw = int64(longValue)
	case sparkplug.PropFloat:
		raw = math.Float32frombits(floatValue)
	case sparkplug.PropDouble:
		raw = math.Float64frombits(doubleValue)
	case sparkplug.PropBoolean:
		raw = boolValue
	case sparkplug.PropString, sparkplug.PropText, sparkplug.PropUUID:
		raw = stringValue
	case sparkplug.PropBytes, sparkplug.PropFile:
		raw = []byte(stringValue)
	case sparkplug.PropDataSet:
		ds, err := decodeDataSet([]byte(stringValue))
		if err != nil {
			return sparkplug.PropertyValue{}, err
		}
		raw = ds
	case sparkplug.PropPropertySet:
		if !havePropSet {
			return sparkplug.PropertyValue{}, typeMismatch(sparkplug.MetricDataType(pt), "propertyset_value")
		}
		ps, err := decodePropertySet(propSet)
		if err != nil {
			return sparkplug.PropertyValue{}, err
		}
		raw = ps
	case sparkplug.PropPropertySetList:
		sets := make([]sparkplug.PropertySet, 0, len(propSetList))
		for _, sb := range propSetList {
			s, err := decodePropertySet(sb)
			if err != nil {
				return sparkplug.PropertyValue{}, err
			}
			sets = append(sets, s)
		}
		raw = sets
	default:
		return sparkplug.PropertyValue{}, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "decodePropertyValue", Err: fmt.Errorf("property datatype %d", pt)}
	}
	_, _, _, _, _, _ = haveInt, haveLong, haveFloat, haveDouble, haveBool, haveString
	return sparkplug.PropertyValue{Type: pt, Raw: raw}, nil
}

func decodeDataSet(data []byte) (sparkplug.DataSet, error) {
	fields, err := consumeFields(data)
	if err != nil {
		return sparkplug.DataSet{}, err
	}
	var ds sparkplug.DataSet
	var rowBufs [][]byte
	for _, f := range fields {
		switch f.num {
		case fDataSetNumCols:
			// num_of_columns is redundant with len(columns); no state to keep.
		case fDataSetColumns:
			ds.Columns = append(ds.Columns, string(f.buf))
		case fDataSetTypes:
			ds.Types = append(ds.Types, sparkplug.DataSetDataType(f.u64))
		case fDataSetRows:
			rowBufs = append(rowBufs, f.buf)
		}
	}
	for _, rb := range rowBufs {
		row, err := decodeDataSetRow(ds.Types, rb)
		if err != nil {
			return sparkplug.DataSet{}, err
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := ds.Validate(); err != nil {
		return sparkplug.DataSet{}, err
	}
	return ds, nil
}

func decodeDataSetRow(types []sparkplug.DataSetDataType, data []byte) (sparkplug.DataSetRow, error) {
	fields, err := consumeFields(data)
	if err != nil {
		return sparkplug.DataSetRow{}, err
	}
	var cellBufs [][]byte
	for _, f := range fields {
		if f.num == fDataSetRowElements {
			cellBufs = append(cellBufs, f.buf)
		}
	}
	if len(cellBufs) != len(types) {
		return sparkplug.DataSetRow{}, &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: "decodeDataSetRow",
			Err: fmt.Errorf("%d cells, want %d", len(cellBufs), len(types))}
	}
	row := sparkplug.DataSetRow{Cells: make([]sparkplug.DataSetCell, len(types))}
	for i, cb := range cellBufs {
		cell, err := decodeDataSetCell(types[i], cb)
		if err != nil {
			return sparkplug.DataSetRow{}, err
		}
		row.Cells[i] = cell
	}
	return row, nil
}

func decodeDataSetCell(t sparkplug.DataSetDataType, data []byte) (sparkplug.DataSetCell, error) {
	fields, err := consumeFields(data)
	if err != nil {
		return sparkplug.DataSetCell{}, err
	}
	var intValue, longValue uint64
	var floatValue uint32
	var doubleValue uint64
	var boolValue bool
	var stringValue string
	haveAny := false
	for _, f := range fields {
		haveAny = true
		switch f.num {
		case fDataSetValIntValue:
			intValue = f.u64
		case fDataSetValLongValue:
			longValue = f.u64
		case fDataSetValFloatValue:
			floatValue = uint32(f.u64)
		case fDataSetValDoubleValue:
			doubleValue = f.u64
		case fDataSetValBoolValue:
			boolValue = f.u64 != 0
		case fDataSetValStringValue:
			stringValue = string(f.buf)
		}
	}
	if !haveAny {
		return sparkplug.DataSetCell{}, nil
	}
	var raw any
	switch t {
	case sparkplug.DataSetInt8:
		raw = int8(uint8(intValue))
	case sparkplug.DataSetInt16:
		raw = int16(uint16(intValue))
	case sparkplug.DataSetInt32:
		raw = int32(uint32(intValue))
	case sparkplug.DataSetUInt8:
		raw = uint8(intValue)
	case sparkplug.DataSetUInt16:
		raw = uint16(intValue)
	case sparkplug.DataSetUInt32:
		if longValue > math.MaxUint32 {
			return sparkplug.DataSetCell{}, &sparkplug.Error{Kind: sparkplug.OutOfRange, Op: "decodeDataSetCell", Err: fmt.Errorf("UInt32 value %d outside [0, 2^32)", longValue)}
		}
		raw = uint32(longValue)
	case sparkplug.DataSetInt64:
		raw = int64(longValue)
	case sparkplug.DataSetUInt64:
		raw = longValue
	case sparkplug.DataSetFloat:
		raw = math.Float32frombits(floatValue)
	case sparkplug.DataSetDouble:
		raw = math.Float64frombits(doubleValue)
	case sparkplug.DataSetBoolean:
		raw = boolValue
	case sparkplug.DataSetString:
		raw = stringValue
	default:
		return sparkplug.DataSetCell{}, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "decodeDataSetCell", Err: fmt.Errorf("dataset datatype %d", t)}
	}
	return sparkplug.DataSetCell{Raw: raw}, nil
}

func decodeTemplate(data []byte) (sparkplug.Template, error) {
	fields, err := consumeFields(data)
	if err != nil {
		return sparkplug.Template{}, err
	}
	var tpl sparkplug.Template
	haveRef := false
	for _, f := range fields {
		switch f.num {
		case fTemplateVersion:
			// version is accepted but not modeled on sparkplug.Template.
		case fTemplateMetrics:
			m, err := decodeMetric(f.buf)
			if err != nil {
				return sparkplug.Template{}, err
			}
			tpl.Metrics = append(tpl.Metrics, m)
		case fTemplateParameters:
			p, err := decodeParameter(f.buf)
			if err != nil {
				return sparkplug.Template{}, err
			}
			tpl.Parameters = append(tpl.Parameters, p)
		case fTemplateRef:
			tpl.TemplateRef, haveRef = string(f.buf), true
		case fTemplateIsDefinition:
			tpl.IsDefinition = f.u64 != 0
		}
	}
	if !tpl.IsDefinition && !haveRef {
		return sparkplug.Template{}, &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: "decodeTemplate", Err: fmt.Errorf("instance missing template_ref")}
	}
	return tpl, nil
}

func decodeParameter(data []byte) (sparkplug.TemplateParameter, error) {
	fields, err := consumeFields(data)
	if err != nil {
		return sparkplug.TemplateParameter{}, err
	}
	var p sparkplug.TemplateParameter
	var pt sparkplug.ParameterDataType
	haveType := false
	var intValue, longValue uint64
	var floatValue uint32
	var doubleValue uint64
	var boolValue bool
	var stringValue string
	haveAny := false
	for _, f := range fields {
		switch f.num {
		case fParamName:
			p.Name = string(f.buf)
		case fParamType:
			pt, haveType = sparkplug.ParameterDataType(f.u64), true
		case fParamIntValue:
			intValue, haveAny = f.u64, true
		case fParamLongValue:
			longValue, haveAny = f.u64, true
		case fParamFloatValue:
			floatValue, haveAny = uint32(f.u64), true
		case fParamDoubleValue:
			doubleValue, haveAny = f.u64, true
		case fParamBoolValue:
			boolValue, haveAny = f.u64 != 0, true
		case fParamStringValue:
			stringValue, haveAny = string(f.buf), true
		}
	}
	if !haveType {
		return sparkplug.TemplateParameter{}, &sparkplug.Error{Kind: sparkplug.MalformedWire, Op: "decodeParameter", Err: fmt.Errorf("missing type")}
	}
	p.Type = pt
	if !haveAny {
		return p, nil
	}
	switch pt {
	case sparkplug.ParamInt8:
		p.Raw = int8(uint8(intValue))
	case sparkplug.ParamInt16:
		p.Raw = int16(uint16(intValue))
	case sparkplug.ParamInt32:
		p.Raw = int32(uint32(intValue))
	case sparkplug.ParamUInt8:
		p.Raw = uint8(intValue)
	case sparkplug.ParamUInt16:
		p.Raw = uint16(intValue)
	case sparkplug.ParamUInt32:
		if longValue > math.MaxUint32 {
			return sparkplug.TemplateParameter{}, &sparkplug.Error{Kind: sparkplug.OutOfRange, Op: "decodeParameter", Err: fmt.Errorf("UInt32 value %d outside [0, 2^32)", longValue)}
		}
		p.Raw = uint32(longValue)
	case sparkplug.ParamInt64:
		p.Raw = int64(longValue)
	case sparkplug.ParamUInt64:
		p.Raw = longValue
	case sparkplug.ParamDateTime:
		p.Raw = int64(longValue)
	case sparkplug.ParamFloat:
		p.Raw = math.Float32frombits(floatValue)
	case sparkplug.ParamDouble:
		p.Raw = math.Float64frombits(doubleValue)
	case sparkplug.ParamBoolean:
		p.Raw = boolValue
	case sparkplug.ParamString, sparkplug.ParamText:
		p.Raw = stringValue
	default:
		return sparkplug.TemplateParameter{}, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "decodeParameter", Err: fmt.Errorf("parameter datatype %d", pt)}
	}
	return p, nil
}
