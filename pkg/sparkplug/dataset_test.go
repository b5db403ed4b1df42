package sparkplug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDataSet() DataSet {
	return DataSet{
		Types:   []DataSetDataType{DataSetString, DataSetInt32},
		Columns: []string{"name", "count"},
		Rows: []DataSetRow{
			{Cells: []DataSetCell{{Raw: "a"}, {Raw: int32(1)}}},
			{Cells: []DataSetCell{{Raw: "b"}, {Raw: int32(2)}}},
		},
	}
}

func TestDataSetValidate_OK(t *testing.T) {
	require.NoError(t, validDataSet().Validate())
}

func TestDataSetValidate_ColumnCountMismatch(t *testing.T) {
	ds := validDataSet()
	ds.Columns = ds.Columns[:1]
	err := ds.Validate()
	require.Error(t, err)
	assert.Equal(t, MalformedWire, KindOf(err))
}

func TestDataSetValidate_RowCellCountMismatch(t *testing.T) {
	ds := validDataSet()
	ds.Rows[0].Cells = ds.Rows[0].Cells[:1]
	err := ds.Validate()
	require.Error(t, err)
	assert.Equal(t, MalformedWire, KindOf(err))
}

func TestDataSetValidate_CellTypeMismatch(t *testing.T) {
	ds := validDataSet()
	ds.Rows[0].Cells[1] = DataSetCell{Raw: "not an int32"}
	err := ds.Validate()
	require.Error(t, err)
	assert.Equal(t, InvalidType, KindOf(err))
}

func TestDataSetValidate_NullCellSkipped(t *testing.T) {
	ds := validDataSet()
	ds.Rows[0].Cells[1] = DataSetCell{Raw: nil}
	assert.NoError(t, ds.Validate())
}
