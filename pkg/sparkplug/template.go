// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sparkplug

import "fmt"

// TemplateParameter is a single named, typed parameter of a Template
// definition or instance.
type TemplateParameter struct {
	Name string
	Type ParameterDataType
	Raw  any // nil means null
}

// Template is either a definition (IsDefinition true, TemplateRef empty) or
// an instance of a previously-birthed definition (TemplateRef names it).
type Template struct {
	TemplateRef  string
	IsDefinition bool
	Metrics      []Metric
	Parameters   []TemplateParameter
}

var parameterShapes = map[ParameterDataType]string{
	ParamInt8:     "int8",
	ParamInt16:    "int16",
	ParamInt32:    "int32",
	ParamInt64:    "int64",
	ParamUInt8:    "uint8",
	ParamUInt16:   "uint16",
	ParamUInt32:   "uint32",
	ParamUInt64:   "uint64",
	ParamFloat:    "float32",
	ParamDouble:   "float64",
	ParamBoolean:  "bool",
	ParamString:   "string",
	ParamDateTime: "int64",
	ParamText:     "string",
}

// Validate checks every parameter's Go shape and recurses into the
// template's embedded metrics.
func (t Template) Validate() error {
	if !t.IsDefinition && t.TemplateRef == "" {
		return &Error{Kind: MalformedWire, Op: "Template.Validate", Err: fmt.Errorf("instance missing template ref")}
	}
	for _, p := range t.Parameters {
		if p.Raw == nil {
			continue
		}
		want, ok := parameterShapes[p.Type]
		if !ok {
			return &Error{Kind: UnknownType, Op: "Template.Validate", Err: fmt.Errorf("parameter %q: unknown datatype %d", p.Name, p.Type)}
		}
		if got := fmt.Sprintf("%T", p.Raw); got != want {
			return &Error{Kind: InvalidType, Op: "Template.Validate",
				Err: fmt.Errorf("parameter %q: requires go type %s, got %s", p.Name, want, got)}
		}
	}
	for i := range t.Metrics {
		if err := t.Metrics[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
