package sparkplug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricValidate_RequiresNameOrAlias(t *testing.T) {
	m := Metric{Value: NewInt32(1)}
	err := m.Validate()
	require.Error(t, err)
	assert.Equal(t, MalformedWire, KindOf(err))
}

func TestMetricValidate_AliasOnlyOK(t *testing.T) {
	m := Metric{Alias: 7, HasAlias: true, Value: NewInt32(1)}
	assert.NoError(t, m.Validate())
}

func TestMetricValidate_NullSkipsValueCheck(t *testing.T) {
	m := Metric{Name: "x", IsNull: true, Value: Value{Type: Int32, Raw: "garbage"}}
	assert.NoError(t, m.Validate())
}

func TestMetricValidate_RecursesIntoDataSet(t *testing.T) {
	bad := DataSet{
		Types:   []DataSetDataType{DataSetInt32},
		Columns: []string{"c"},
		Rows:    []DataSetRow{{Cells: []DataSetCell{{Raw: "nope"}}}},
	}
	m := Metric{Name: "ds", Value: NewDataSet(bad)}
	err := m.Validate()
	require.Error(t, err)
	assert.Equal(t, InvalidType, KindOf(err))
}

func TestMetricValidate_RecursesIntoTemplate(t *testing.T) {
	tpl := Template{
		IsDefinition: true,
		Parameters:   []TemplateParameter{{Name: "p", Type: ParamInt32, Raw: "nope"}},
	}
	m := Metric{Name: "t", Value: NewTemplate(tpl)}
	err := m.Validate()
	require.Error(t, err)
	assert.Equal(t, InvalidType, KindOf(err))
}
