package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahu-edge/tahu-go/pkg/sparkplug"
)

func roundTrip(t *testing.T, p sparkplug.SparkplugBPayload) sparkplug.SparkplugBPayload {
	t.Helper()
	b, err := Encode(p)
	require.NoError(t, err)
	got, err := Decode(b)
	require.NoError(t, err)
	return got
}

func TestEncodeDecode_Int32(t *testing.T) {
	p := sparkplug.SparkplugBPayload{
		Metrics: []sparkplug.Metric{{Name: "t", Value: sparkplug.NewInt32(-1)}},
	}
	b, err := Encode(p)
	require.NoError(t, err)

	fields, err := consumeFields(b)
	require.NoError(t, err)
	mf := findField(t, fields, fPayloadMetrics)
	mfields, err := consumeFields(mf.buf)
	require.NoError(t, err)
	iv := findField(t, mfields, fMetricIntValue)
	assert.Equal(t, uint64(0xFFFFFFFF), iv.u64)

	got := roundTrip(t, p)
	require.Len(t, got.Metrics, 1)
	assert.Equal(t, int32(-1), got.Metrics[0].Value.Raw)
}

func TestUInt64Boundary(t *testing.T) {
	p := sparkplug.SparkplugBPayload{
		Metrics: []sparkplug.Metric{{Name: "u", Value: sparkplug.NewUInt64(18446744073709551615)}},
	}
	got := roundTrip(t, p)
	assert.Equal(t, uint64(18446744073709551615), got.Metrics[0].Value.Raw)

	_, err := NewUInt64Rejects(t)
	require.Error(t, err)
}

// NewUInt64Rejects exercises the two out-of-range ingress paths named in
// spec.md scenario 2 (value 2^64 and value -1), both of which must be
// rejected by the ingress constructor before they ever reach the encoder.
func NewUInt64Rejects(t *testing.T) (sparkplug.Value, error) {
	t.Helper()
	if _, err := sparkplug.NewUInt64FromBig(true, 0, false); err == nil {
		t.Fatal("expected negative UInt64 to be rejected")
	}
	return sparkplug.NewUInt64FromBig(false, 0, true)
}

func TestBooleanArrayLayout(t *testing.T) {
	vals := []bool{true, false, true, true, false, false, false, false, true}
	packed, err := encodePackedArray(sparkplug.BooleanArray, vals)
	require.NoError(t, err)
	require.Len(t, packed, 4+2)
	assert.Equal(t, []byte{0x09, 0x00, 0x00, 0x00}, packed[:4])
	assert.Equal(t, []byte{0xB0, 0x80}, packed[4:])

	back, err := decodePackedArray(sparkplug.BooleanArray, packed)
	require.NoError(t, err)
	assert.Equal(t, vals, back)
}

func TestStringArrayLayout(t *testing.T) {
	vals := []string{"ab", "", "c"}
	packed, err := encodePackedArray(sparkplug.StringArray, vals)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x61, 0x62, 0x00, 0x00, 0x63, 0x00}, packed)

	back, err := decodePackedArray(sparkplug.StringArray, packed)
	require.NoError(t, err)
	assert.Equal(t, vals, back)
}

func TestEncode_RejectsShapeMismatch(t *testing.T) {
	p := sparkplug.SparkplugBPayload{
		Metrics: []sparkplug.Metric{{Name: "bad", Value: sparkplug.Value{Type: sparkplug.Int32, Raw: "nope"}}},
	}
	_, err := Encode(p)
	require.Error(t, err)
	assert.Equal(t, sparkplug.InvalidType, sparkplug.KindOf(err))
}

func TestRoundTrip_AllScalarTypes(t *testing.T) {
	metrics := []sparkplug.Metric{
		{Name: "i8", Value: sparkplug.NewInt8(-12)},
		{Name: "i16", Value: sparkplug.NewInt16(-1234)},
		{Name: "i32", Value: sparkplug.NewInt32(-123456)},
		{Name: "i64", Value: sparkplug.NewInt64(-123456789)},
		{Name: "u8", Value: sparkplug.NewUInt8(250)},
		{Name: "u16", Value: sparkplug.NewUInt16(64000)},
		{Name: "u32", Value: sparkplug.NewUInt32(4000000000)},
		{Name: "u64", Value: sparkplug.NewUInt64(18000000000000000000)},
		{Name: "f", Value: sparkplug.NewFloat(3.5)},
		{Name: "d", Value: sparkplug.NewDouble(3.14159)},
		{Name: "b", Value: sparkplug.NewBoolean(true)},
		{Name: "s", Value: sparkplug.NewString("hello")},
		{Name: "dt", Value: sparkplug.NewDateTime(1700000000000)},
		{Name: "bytes", Value: sparkplug.NewBytes([]byte{1, 2, 3})},
	}
	p := sparkplug.SparkplugBPayload{Metrics: metrics, HasTimestamp: true, Timestamp: 1700000000000, HasSeq: true, Seq: 5}
	got := roundTrip(t, p)
	require.Len(t, got.Metrics, len(metrics))
	for i, m := range metrics {
		assert.Equal(t, m.Value.Raw, got.Metrics[i].Value.Raw, "metric %s", m.Name)
	}
	assert.Equal(t, p.Timestamp, got.Timestamp)
	assert.Equal(t, p.Seq, got.Seq)
}

func TestRoundTrip_PropertySet(t *testing.T) {
	ps := sparkplug.PropertySet{}
	ps.Set("engUnit", sparkplug.PropertyValue{Type: sparkplug.PropString, Raw: "psi"})
	ps.Set("quality", sparkplug.PropertyValue{Type: sparkplug.PropInt32, Raw: int32(192)})
	m := sparkplug.Metric{Name: "pressure", Value: sparkplug.NewDouble(12.5), Properties: &ps}
	p := sparkplug.SparkplugBPayload{Metrics: []sparkplug.Metric{m}}
	got := roundTrip(t, p)
	require.NotNil(t, got.Metrics[0].Properties)
	v, ok := got.Metrics[0].Properties.Get("engUnit")
	require.True(t, ok)
	assert.Equal(t, "psi", v.Raw)
}

func TestRoundTrip_DataSet(t *testing.T) {
	ds := sparkplug.DataSet{
		Types:   []sparkplug.DataSetDataType{sparkplug.DataSetString, sparkplug.DataSetInt32},
		Columns: []string{"name", "count"},
		Rows: []sparkplug.DataSetRow{
			{Cells: []sparkplug.DataSetCell{{Raw: "a"}, {Raw: int32(1)}}},
			{Cells: []sparkplug.DataSetCell{{Raw: "b"}, {Raw: int32(2)}}},
		},
	}
	p := sparkplug.SparkplugBPayload{Metrics: []sparkplug.Metric{{Name: "ds", Value: sparkplug.NewDataSet(ds)}}}
	got := roundTrip(t, p)
	gds := got.Metrics[0].Value.Raw.(sparkplug.DataSet)
	assert.Equal(t, ds.Columns, gds.Columns)
	assert.Equal(t, ds.Types, gds.Types)
	require.Len(t, gds.Rows, 2)
	assert.Equal(t, "a", gds.Rows[0].Cells[0].Raw)
	assert.Equal(t, int32(2), gds.Rows[1].Cells[1].Raw)
}

func TestRoundTrip_Template(t *testing.T) {
	tpl := sparkplug.Template{
		IsDefinition: true,
		Metrics:      []sparkplug.Metric{{Name: "speed", Value: sparkplug.NewDouble(42.0)}},
		Parameters:   []sparkplug.TemplateParameter{{Name: "p1", Type: sparkplug.ParamInt32, Raw: int32(9)}},
	}
	p := sparkplug.SparkplugBPayload{Metrics: []sparkplug.Metric{{Name: "motor", Value: sparkplug.NewTemplate(tpl)}}}
	got := roundTrip(t, p)
	gtpl := got.Metrics[0].Value.Raw.(sparkplug.Template)
	assert.True(t, gtpl.IsDefinition)
	require.Len(t, gtpl.Metrics, 1)
	assert.Equal(t, 42.0, gtpl.Metrics[0].Value.Raw)
	require.Len(t, gtpl.Parameters, 1)
	assert.Equal(t, int32(9), gtpl.Parameters[0].Raw)
}

func TestRoundTrip_NullMetric(t *testing.T) {
	p := sparkplug.SparkplugBPayload{
		Metrics: []sparkplug.Metric{{Name: "n", IsNull: true, Value: sparkplug.None(sparkplug.Int32)}},
	}
	got := roundTrip(t, p)
	assert.True(t, got.Metrics[0].IsNull)
	assert.True(t, got.Metrics[0].Value.IsNull())
}

func TestCompressedEnvelope_GZIP(t *testing.T) {
	inner := sparkplug.SparkplugBPayload{Metrics: []sparkplug.Metric{{Name: "x", Value: sparkplug.NewInt32(7)}}}
	outer, err := EncodeCompressed(inner, GZIP)
	require.NoError(t, err)
	assert.True(t, outer.IsCompressed())

	back, err := DecodeCompressed(outer)
	require.NoError(t, err)
	require.Len(t, back.Metrics, 1)
	assert.Equal(t, int32(7), back.Metrics[0].Value.Raw)
}

func TestCompressedEnvelope_DEFLATE(t *testing.T) {
	inner := sparkplug.SparkplugBPayload{Metrics: []sparkplug.Metric{{Name: "x", Value: sparkplug.NewString("hi")}}}
	outer, err := EncodeCompressed(inner, DEFLATE)
	require.NoError(t, err)

	back, err := DecodeCompressed(outer)
	require.NoError(t, err)
	assert.Equal(t, "hi", back.Metrics[0].Value.Raw)
}

func findField(t *testing.T, fields []rawField, num int) rawField {
	t.Helper()
	for _, f := range fields {
		if int(f.num) == num {
			return f
		}
	}
	t.Fatalf("field %d not found", num)
	return rawField{}
}
