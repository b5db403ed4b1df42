// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package codec encodes and decodes Sparkplug B payloads over the protobuf
// wire format defined by the Eclipse Tahu sparkplug_b.proto schema, using
// google.golang.org/protobuf/encoding/protowire directly rather than a
// generated .pb.go — the schema is small, stable, and entirely owned by
// this package.
package codec

// Field numbers for the Sparkplug B Payload message and its nested types.
// These match the published sparkplug_b.proto field numbering; renumbering
// any of them breaks wire compatibility with every other Sparkplug B
// implementation.
const (
	fPayloadTimestamp = 1
	fPayloadMetrics   = 2
	fPayloadSeq       = 3
	fPayloadUUID      = 4
	fPayloadBody      = 5
)

const (
	fMetricName         = 1
	fMetricAlias        = 2
	fMetricTimestamp    = 3
	fMetricDatatype     = 4
	fMetricIsHistorical = 5
	fMetricIsTransient  = 6
	fMetricIsNull       = 7
	fMetricMetaData     = 8
	fMetricProperties   = 9
	fMetricIntValue     = 10
	fMetricLongValue    = 11
	fMetricFloatValue   = 12
	fMetricDoubleValue  = 13
	fMetricBooleanValue = 14
	fMetricStringValue  = 15
	fMetricBytesValue   = 16
	fMetricDataSetValue = 17
	fMetricTemplateValue = 18
)

const (
	fMetaIsMultiPart = 1
	fMetaContentType = 2
	fMetaSize        = 3
	fMetaSeq         = 4
	fMetaFileName    = 5
	fMetaFileType    = 6
	fMetaMD5         = 7
	fMetaDescription = 8
)

const (
	fPropValueType        = 1
	fPropValueIsNull      = 2
	fPropValueIntValue    = 3
	fPropValueLongValue   = 4
	fPropValueFloatValue  = 5
	fPropValueDoubleValue = 6
	fPropValueBoolValue   = 7
	fPropValueStringValue = 8
	fPropValuePropSet     = 9
	fPropValuePropSetList = 10
)

const (
	fPropSetKeys   = 1
	fPropSetValues = 2
)

const fPropSetListSets = 1

const (
	fDataSetNumCols = 1
	fDataSetColumns = 2
	fDataSetTypes   = 3
	fDataSetRows    = 4
)

const (
	fDataSetValIntValue    = 1
	fDataSetValLongValue   = 2
	fDataSetValFloatValue  = 3
	fDataSetValDoubleValue = 4
	fDataSetValBoolValue   = 5
	fDataSetValStringValue = 6
)

const fDataSetRowElements = 1

const (
	fTemplateVersion      = 1
	fTemplateMetrics      = 2
	fTemplateParameters   = 3
	fTemplateRef          = 4
	fTemplateIsDefinition = 5
)

const (
	fParamName        = 1
	fParamType        = 2
	fParamIntValue    = 3
	fParamLongValue   = 4
	fParamFloatValue  = 5
	fParamDoubleValue = 6
	fParamBoolValue   = 7
	fParamStringValue = 8
)
