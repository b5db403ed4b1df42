// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sparkplug

import "fmt"

// DataSet is a typed table: Types declares one DataSetDataType per column,
// Columns names them, and Rows holds the data, each row having len(Types)
// cells in column order.
type DataSet struct {
	Types   []DataSetDataType
	Columns []string
	Rows    []DataSetRow
}

// DataSetRow is one row of a DataSet: exactly len(DataSet.Types) cells.
type DataSetRow struct {
	Cells []DataSetCell
}

// DataSetCell is a single typed cell. Raw's Go shape must match the column's
// DataSetDataType (checked by DataSet.Validate, never per-cell in isolation
// since a cell alone doesn't know which column it belongs to).
type DataSetCell struct {
	Raw any // nil means null
}

var dataSetShapes = map[DataSetDataType]string{
	DataSetInt8:    "int8",
	DataSetInt16:   "int16",
	DataSetInt32:   "int32",
	DataSetInt64:   "int64",
	DataSetUInt8:   "uint8",
	DataSetUInt16:  "uint16",
	DataSetUInt32:  "uint32",
	DataSetUInt64:  "uint64",
	DataSetFloat:   "float32",
	DataSetDouble:  "float64",
	DataSetBoolean: "bool",
	DataSetString:  "string",
}

// Validate checks structural consistency: every row has one cell per
// declared column, and each cell's Go shape matches its column's type.
func (d DataSet) Validate() error {
	n := len(d.Types)
	if len(d.Columns) != n {
		return &Error{Kind: MalformedWire, Op: "DataSet.Validate",
			Err: fmt.Errorf("%d column names for %d types", len(d.Columns), n)}
	}
	for ri, row := range d.Rows {
		if len(row.Cells) != n {
			return &Error{Kind: MalformedWire, Op: "DataSet.Validate",
				Err: fmt.Errorf("row %d has %d cells, want %d", ri, len(row.Cells), n)}
		}
		for ci, cell := range row.Cells {
			if cell.Raw == nil {
				continue
			}
			want, ok := dataSetShapes[d.Types[ci]]
			if !ok {
				return &Error{Kind: UnknownType, Op: "DataSet.Validate",
					Err: fmt.Errorf("column %d: unknown datatype %d", ci, d.Types[ci])}
			}
			if got := fmt.Sprintf("%T", cell.Raw); got != want {
				return &Error{Kind: InvalidType, Op: "DataSet.Validate",
					Err: fmt.Errorf("row %d column %d (%s): requires go type %s, got %s", ri, ci, d.Columns[ci], want, got)}
			}
		}
	}
	return nil
}
