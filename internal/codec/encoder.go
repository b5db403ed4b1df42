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

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendFixed32Field(b []byte, num protowire.Number, v uint32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, v)
}

func appendFixed64Field(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	return appendBytesField(b, num, []byte(v))
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	n := uint64(0)
	if v {
		n = 1
	}
	return appendVarintField(b, num, n)
}

// Encode serializes a Sparkplug B payload to its protobuf wire bytes.
func Encode(p sparkplug.SparkplugBPayload) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var b []byte
	if p.HasTimestamp {
		b = appendVarintField(b, fPayloadTimestamp, uint64(p.Timestamp))
	}
	for _, m := range p.Metrics {
		mb, err := encodeMetric(m)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fPayloadMetrics, mb)
	}
	if p.HasSeq {
		b = appendVarintField(b, fPayloadSeq, p.Seq)
	}
	if p.UUID != "" {
		b = appendStringField(b, fPayloadUUID, p.UUID)
	}
	if p.Body != nil {
		b = appendBytesField(b, fPayloadBody, p.Body)
	}
	return b, nil
}

func encodeMetric(m sparkplug.Metric) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	var b []byte
	if m.Name != "" {
		b = appendStringField(b, fMetricName, m.Name)
	}
	if m.HasAlias {
		b = appendVarintField(b, fMetricAlias, m.Alias)
	}
	if m.HasTimestamp {
		b = appendVarintField(b, fMetricTimestamp, uint64(m.Timestamp))
	}
	b = appendVarintField(b, fMetricDatatype, uint64(m.Value.Type))
	if m.IsHistorical {
		b = appendBoolField(b, fMetricIsHistorical, true)
	}
	if m.IsTransient {
		b = appendBoolField(b, fMetricIsTransient, true)
	}
	if m.IsNull || m.Value.IsNull() {
		b = appendBoolField(b, fMetricIsNull, true)
		return b, nil
	}
	if m.MetaData != nil {
		b = appendBytesField(b, fMetricMetaData, encodeMetaData(*m.MetaData))
	}
	if m.Properties != nil {
		pb, err := encodePropertySet(*m.Properties)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fMetricProperties, pb)
	}
	vb, err := encodeMetricValue(m.Value)
	if err != nil {
		return nil, err
	}
	return append(b, vb...), nil
}

// encodeMetricValue appends the datatype-specific value field(s) for a
// Metric's Value. The PropertyValue, DataSetCell and TemplateParameter
// encoders apply the same scalar wire rules in their own switches.
func encodeMetricValue(v sparkplug.Value) ([]byte, error) {
	var b []byte
	t := v.Type
	raw := v.Raw
	switch t {
	case sparkplug.Int8:
		b = appendVarintField(b, fMetricIntValue, uint64(uint32(uint8(raw.(int8)))))
	case sparkplug.Int16:
		b = appendVarintField(b, fMetricIntValue, uint64(uint32(uint16(raw.(int16)))))
	case sparkplug.Int32:
		b = appendVarintField(b, fMetricIntValue, uint64(uint32(raw.(int32))))
	case sparkplug.UInt8:
		b = appendVarintField(b, fMetricIntValue, uint64(raw.(uint8)))
	case sparkplug.UInt16:
		b = appendVarintField(b, fMetricIntValue, uint64(raw.(uint16)))
	case sparkplug.UInt32:
		b = appendVarintField(b, fMetricLongValue, uint64(raw.(uint32)))
	case sparkplug.Int64:
		b = appendVarintField(b, fMetricLongValue, uint64(raw.(int64)))
	case sparkplug.UInt64:
		b = appendVarintField(b, fMetricLongValue, raw.(uint64))
	case sparkplug.DateTime:
		b = appendVarintField(b, fMetricLongValue, uint64(raw.(int64)))
	case sparkplug.Float:
		b = appendFixed32Field(b, fMetricFloatValue, math.Float32bits(raw.(float32)))
	case sparkplug.Double:
		b = appendFixed64Field(b, fMetricDoubleValue, math.Float64bits(raw.(float64)))
	case sparkplug.Boolean:
		b = appendBoolField(b, fMetricBooleanValue, raw.(bool))
	case sparkplug.String, sparkplug.Text, sparkplug.UUID:
		b = appendStringField(b, fMetricStringValue, raw.(string))
	case sparkplug.Bytes, sparkplug.File:
		b = appendBytesField(b, fMetricBytesValue, raw.([]byte))
	case sparkplug.DataSetType:
		db, err := encodeDataSet(raw.(sparkplug.DataSet))
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fMetricDataSetValue, db)
	case sparkplug.TemplateType:
		tb, err := encodeTemplate(raw.(sparkplug.Template))
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fMetricTemplateValue, tb)
	default:
		if !t.IsArray() {
			return nil, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "encodeMetricValue", Err: fmt.Errorf("datatype %s", t)}
		}
		packed, err := encodePackedArray(t, raw)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fMetricBytesValue, packed)
	}
	return b, nil
}

func encodeMetaData(md sparkplug.MetaData) []byte {
	var b []byte
	if md.IsMultiPart {
		b = appendBoolField(b, fMetaIsMultiPart, true)
	}
	if md.ContentType != "" {
		b = appendStringField(b, fMetaContentType, md.ContentType)
	}
	if md.Size != 0 {
		b = appendVarintField(b, fMetaSize, md.Size)
	}
	if md.Seq != 0 {
		b = appendVarintField(b, fMetaSeq, md.Seq)
	}
	if md.FileName != "" {
		b = appendStringField(b, fMetaFileName, md.FileName)
	}
	if md.FileType != "" {
		b = appendStringField(b, fMetaFileType, md.FileType)
	}
	if md.MD5 != "" {
		b = appendStringField(b, fMetaMD5, md.MD5)
	}
	if md.Description != "" {
		b = appendStringField(b, fMetaDescription, md.Description)
	}
	return b
}

func encodePropertySet(ps sparkplug.PropertySet) ([]byte, error) {
	var b []byte
	for i, k := range ps.Keys {
		b = appendStringField(b, fPropSetKeys, k)
		vb, err := encodePropertyValue(ps.Values[i])
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fPropSetValues, vb)
	}
	return b, nil
}

func encodePropertyValue(v sparkplug.PropertyValue) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	var b []byte
	b = appendVarintField(b, fPropValueType, uint64(v.Type))
	if v.Raw == nil {
		b = appendBoolField(b, fPropValueIsNull, true)
		return b, nil
	}
	switch v.Type {
	case sparkplug.PropInt8:
		b = appendVarintField(b, fPropValueIntValue, uint64(uint32(uint8(v.Raw.(int8)))))
	case sparkplug.PropInt16:
		b = appendVarintField(b, fPropValueIntValue, uint64(uint32(uint16(v.Raw.(int16)))))
	case sparkplug.PropInt32:
		b = appendVarintField(b, fPropValueIntValue, uint64(uint32(v.Raw.(int32))))
	case sparkplug.PropUInt8:
		b = appendVarintField(b, fPropValueIntValue, uint64(v.Raw.(uint8)))
	case sparkplug.PropUInt16:
		b = appendVarintField(b, fPropValueIntValue, uint64(v.Raw.(uint16)))
	case sparkplug.PropUInt32:
		b = appendVarintField(b, fPropValueLongValue, uint64(v.Raw.(uint32)))
	case sparkplug.PropInt64:
		b = appendVarintField(b, fPropValueLongValue, uint64(v.Raw.(int64)))
	case sparkplug.PropUInt64:
		b = appendVarintField(b, fPropValueLongValue, v.Raw.(uint64))
	case sparkplug.PropDateTime:
		b = appendVarintField(b, fPropValueLongValue, uint64(v.Raw.(int64)))
	case sparkplug.PropFloat:
		b = appendFixed32Field(b, fPropValueFloatValue, math.Float32bits(v.Raw.(float32)))
	case sparkplug.PropDouble:
		b = appendFixed64Field(b, fPropValueDoubleValue, math.Float64bits(v.Raw.(float64)))
	case sparkplug.PropBoolean:
		b = appendBoolField(b, fPropValueBoolValue, v.Raw.(bool))
	case sparkplug.PropString, sparkplug.PropText, sparkplug.PropUUID:
		b = appendStringField(b, fPropValueStringValue, v.Raw.(string))
	case sparkplug.PropBytes, sparkplug.PropFile:
		b = appendBytesField(b, fPropValueStringValue, v.Raw.([]byte))
	case sparkplug.PropDataSet:
		db, err := encodeDataSet(v.Raw.(sparkplug.DataSet))
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fPropValueStringValue, db)
	case sparkplug.PropPropertySet:
		pb, err := encodePropertySet(v.Raw.(sparkplug.PropertySet))
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fPropValuePropSet, pb)
	case sparkplug.PropPropertySetList:
		sets := v.Raw.([]sparkplug.PropertySet)
		var lb []byte
		for _, s := range sets {
			sb, err := encodePropertySet(s)
			if err != nil {
				return nil, err
			}
			lb = appendBytesField(lb, fPropSetListSets, sb)
		}
		b = appendBytesField(b, fPropValuePropSetList, lb)
	default:
		return nil, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "encodePropertyValue", Err: fmt.Errorf("property datatype %d", v.Type)}
	}
	return b, nil
}

func encodeDataSet(ds sparkplug.DataSet) ([]byte, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	var b []byte
	b = appendVarintField(b, fDataSetNumCols, uint64(len(ds.Columns)))
	for _, c := range ds.Columns {
		b = appendStringField(b, fDataSetColumns, c)
	}
	for _, t := range ds.Types {
		b = appendVarintField(b, fDataSetTypes, uint64(t))
	}
	for _, row := range ds.Rows {
		rb, err := encodeDataSetRow(ds.Types, row)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fDataSetRows, rb)
	}
	return b, nil
}

func encodeDataSetRow(types []sparkplug.DataSetDataType, row sparkplug.DataSetRow) ([]byte, error) {
	var b []byte
	for i, cell := range row.Cells {
		vb, err := encodeDataSetCell(types[i], cell)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fDataSetRowElements, vb)
	}
	return b, nil
}

func encodeDataSetCell(t sparkplug.DataSetDataType, cell sparkplug.DataSetCell) ([]byte, error) {
	var b []byte
	if cell.Raw == nil {
		return b, nil
	}
	switch t {
	case sparkplug.DataSetInt8:
		b = appendVarintField(b, fDataSetValIntValue, uint64(uint32(uint8(cell.Raw.(int8)))))
	case sparkplug.DataSetInt16:
		b = appendVarintField(b, fDataSetValIntValue, uint64(uint32(uint16(cell.Raw.(int16)))))
	case sparkplug.DataSetInt32:
		b = appendVarintField(b, fDataSetValIntValue, uint64(uint32(cell.Raw.(int32))))
	case sparkplug.DataSetUInt8:
		b = appendVarintField(b, fDataSetValIntValue, uint64(cell.Raw.(uint8)))
	case sparkplug.DataSetUInt16:
		b = appendVarintField(b, fDataSetValIntValue, uint64(cell.Raw.(uint16)))
	case sparkplug.DataSetUInt32:
		b = appendVarintField(b, fDataSetValLongValue, uint64(cell.Raw.(uint32)))
	case sparkplug.DataSetInt64:
		b = appendVarintField(b, fDataSetValLongValue, uint64(cell.Raw.(int64)))
	case sparkplug.DataSetUInt64:
		b = appendVarintField(b, fDataSetValLongValue, cell.Raw.(uint64))
	case sparkplug.DataSetFloat:
		b = appendFixed32Field(b, fDataSetValFloatValue, math.Float32bits(cell.Raw.(float32)))
	case sparkplug.DataSetDouble:
		b = appendFixed64Field(b, fDataSetValDoubleValue, math.Float64bits(cell.Raw.(float64)))
	case sparkplug.DataSetBoolean:
		b = appendBoolField(b, fDataSetValBoolValue, cell.Raw.(bool))
	case sparkplug.DataSetString:
		b = appendStringField(b, fDataSetValStringValue, cell.Raw.(string))
	default:
		return nil, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "encodeDataSetCell", Err: fmt.Errorf("dataset datatype %d", t)}
	}
	return b, nil
}

func encodeTemplate(tpl sparkplug.Template) ([]byte, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	var b []byte
	for _, m := range tpl.Metrics {
		mb, err := encodeMetric(m)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fTemplateMetrics, mb)
	}
	for _, p := range tpl.Parameters {
		pb, err := encodeParameter(p)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fTemplateParameters, pb)
	}
	if !tpl.IsDefinition {
		b = appendStringField(b, fTemplateRef, tpl.TemplateRef)
	}
	if tpl.IsDefinition {
		b = appendBoolField(b, fTemplateIsDefinition, true)
	}
	return b, nil
}

func encodeParameter(p sparkplug.TemplateParameter) ([]byte, error) {
	var b []byte
	b = appendStringField(b, fParamName, p.Name)
	b = appendVarintField(b, fParamType, uint64(p.Type))
	if p.Raw == nil {
		return b, nil
	}
	switch p.Type {
	case sparkplug.ParamInt8:
		b = appendVarintField(b, fParamIntValue, uint64(uint32(uint8(p.Raw.(int8)))))
	case sparkplug.ParamInt16:
		b = appendVarintField(b, fParamIntValue, uint64(uint32(uint16(p.Raw.(int16)))))
	case sparkplug.ParamInt32:
		b = appendVarintField(b, fParamIntValue, uint64(uint32(p.Raw.(int32))))
	case sparkplug.ParamUInt8:
		b = appendVarintField(b, fParamIntValue, uint64(p.Raw.(uint8)))
	case sparkplug.ParamUInt16:
		b = appendVarintField(b, fParamIntValue, uint64(p.Raw.(uint16)))
	case sparkplug.ParamUInt32:
		b = appendVarintField(b, fParamLongValue, uint64(p.Raw.(uint32)))
	case sparkplug.ParamInt64:
		b = appendVarintField(b, fParamLongValue, uint64(p.Raw.(int64)))
	case sparkplug.ParamUInt64:
		b = appendVarintField(b, fParamLongValue, p.Raw.(uint64))
	case sparkplug.ParamDateTime:
		b = appendVarintField(b, fParamLongValue, uint64(p.Raw.(int64)))
	case sparkplug.ParamFloat:
		b = appendFixed32Field(b, fParamFloatValue, math.Float32bits(p.Raw.(float32)))
	case sparkplug.ParamDouble:
		b = appendFixed64Field(b, fParamDoubleValue, math.Float64bits(p.Raw.(float64)))
	case sparkplug.ParamBoolean:
		b = appendBoolField(b, fParamBoolValue, p.Raw.(bool))
	case sparkplug.ParamString, sparkplug.ParamText:
		b = appendStringField(b, fParamStringValue, p.Raw.(string))
	default:
		return nil, &sparkplug.Error{Kind: sparkplug.UnknownType, Op: "encodeParameter", Err: fmt.Errorf("parameter datatype %d", p.Type)}
	}
	return b, nil
}
