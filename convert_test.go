package odbc

import (
	"bytes"
	"encoding/hex"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const sentinel = 0xFF

// convertInto runs one conversion into a buffer one byte larger than
// capacity, pre-filled with a sentinel, and checks that the byte past
// capacity survives. It returns the outcome and the capacity-sized window.
func convertInto(t *testing.T, v Value, ct CType, capacity int, opts ...ConverterOption) (Outcome, []byte) {
	t.Helper()
	buf := bytes.Repeat([]byte{sentinel}, capacity+1)
	out := NewConverter(opts...).Convert(v, Target{Type: ct, Capacity: capacity}, buf)
	require.Equal(t, byte(sentinel), buf[capacity], "byte past capacity was written")
	require.LessOrEqual(t, out.Written, capacity)
	if out.Status == Failed {
		require.Equal(t, bytes.Repeat([]byte{sentinel}, capacity), buf[:capacity], "failed conversion wrote data")
		require.NotNil(t, out.Diag)
	}
	return out, buf[:capacity]
}

func hexOf(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// =============================================================================
// Scenarios
// =============================================================================

func TestConvert_BigIntToBinary(t *testing.T) {
	out, buf := convertInto(t, Int{V: 1234567890, Size: 8}, CBinary, 8)
	assert.Equal(t, Exact, out.Status)
	assert.Equal(t, SQLLEN(8), out.Indicator)
	assert.Equal(t, 8, out.Written)
	assert.Equal(t, "D202964900000000", hexOf(buf))
	assert.Equal(t, SQL_SUCCESS, out.Return())
	assert.NoError(t, out.Err())
}

func TestConvert_BoolTargets(t *testing.T) {
	out, buf := convertInto(t, Bool(true), CChar, 8)
	assert.Equal(t, Exact, out.Status)
	assert.Equal(t, "true\x00", string(buf[:out.Written]))
	assert.Equal(t, SQLLEN(4), out.Indicator)

	out, buf = convertInto(t, Bool(true), CBit, 1)
	assert.Equal(t, Exact, out.Status)
	assert.Equal(t, []byte{1}, buf)

	out, buf = convertInto(t, Bool(false), CChar, 8)
	assert.Equal(t, "false\x00", string(buf[:out.Written]))

	out, buf = convertInto(t, Bool(true), CSLong, 4)
	assert.Equal(t, "01000000", hexOf(buf))

	out, buf = convertInto(t, Bool(false), CBinary, 4)
	assert.Equal(t, 1, out.Written)
	assert.Equal(t, byte(0), buf[0])
}

func TestConvert_EmptyTextCapacityOne(t *testing.T) {
	out, buf := convertInto(t, Text{S: ""}, CChar, 1)
	assert.Equal(t, Exact, out.Status)
	assert.Equal(t, SQLLEN(0), out.Indicator)
	assert.Equal(t, 1, out.Written)
	assert.Equal(t, byte(0), buf[0])
	assert.Nil(t, out.Diag)
}

func TestConvert_TextTruncated(t *testing.T) {
	out, buf := convertInto(t, Text{S: "foobar"}, CChar, 5)
	assert.Equal(t, Truncated, out.Status)
	assert.Equal(t, "foob\x00", string(buf))
	assert.Equal(t, SQLLEN(6), out.Indicator)
	assert.Equal(t, 5, out.Written)
	require.NotNil(t, out.Diag)
	assert.Equal(t, SQLStateDataTruncation, out.Diag.SQLState)
	assert.Equal(t, SQL_SUCCESS_WITH_INFO, out.Return())
	assert.True(t, IsDataTruncation(out.Err()))
}

func TestConvert_TextCapacityZero(t *testing.T) {
	out, _ := convertInto(t, Text{S: "abc"}, CChar, 0)
	assert.Equal(t, Truncated, out.Status)
	assert.Equal(t, 0, out.Written)
	assert.Equal(t, SQLLEN(3), out.Indicator)

	out, _ = convertInto(t, Text{S: ""}, CChar, 0)
	assert.Equal(t, Exact, out.Status)
}

func TestConvert_IntegerNarrowing(t *testing.T) {
	v := Int{V: 1234567890, Size: 8}
	tests := []struct {
		target CType
		hex    string
	}{
		{CSShort, "D202"},
		{CShort, "D202"},
		{CUShort, "D202"},
		{CSTinyInt, "D2"},
		{CTinyInt, "D2"},
		{CUTinyInt, "D2"},
		{CSLong, "D2029649"},
		{CULong, "D2029649"},
		{CSBigInt, "D202964900000000"},
		{CUBigInt, "D202964900000000"},
	}
	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			out, buf := convertInto(t, v, tt.target, tt.target.Width())
			assert.Equal(t, Exact, out.Status)
			assert.Equal(t, tt.hex, hexOf(buf))
			assert.Equal(t, SQLLEN(tt.target.Width()), out.Indicator)
		})
	}

	_, buf := convertInto(t, v, CSShort, 2)
	assert.Equal(t, int16(722), int16(le.Uint16(buf)))
	_, buf = convertInto(t, v, CSTinyInt, 1)
	assert.Equal(t, int8(-46), int8(buf[0]))
	_, buf = convertInto(t, v, CUTinyInt, 1)
	assert.Equal(t, uint8(210), buf[0])

	_, buf = convertInto(t, Int{V: -1, Size: 4}, CUShort, 2)
	assert.Equal(t, uint16(65535), le.Uint16(buf))

	_, buf = convertInto(t, Uint{V: math.MaxUint64, Size: 8}, CSBigInt, 8)
	assert.Equal(t, int64(-1), int64(le.Uint64(buf)))
}

func TestConvert_DecimalRoundsHalfAwayFromZero(t *testing.T) {
	d, err := ParseDecimal("1234.567890")
	require.NoError(t, err)

	for _, ct := range []CType{CSShort, CUShort, CSLong, CULong, CSBigInt, CUBigInt, CShort, CLong} {
		out, buf := convertInto(t, d, ct, ct.Width())
		require.Equal(t, Exact, out.Status, ct.String())
		assert.Equal(t, uint64(1235), readUint(buf), ct.String())
	}

	neg, err := ParseDecimal("-1234.5")
	require.NoError(t, err)
	_, buf := convertInto(t, neg, CSLong, 4)
	assert.Equal(t, int32(-1235), int32(le.Uint32(buf)))

	_, buf = convertInto(t, Text{S: " 12.5 "}, CSLong, 4)
	assert.Equal(t, int32(13), int32(le.Uint32(buf)))
}

func readUint(b []byte) uint64 {
	var n uint64
	for i := len(b) - 1; i >= 0; i-- {
		n = n<<8 | uint64(b[i])
	}
	return n
}

func TestConvert_DecimalOutOfRange(t *testing.T) {
	d, err := ParseDecimal("123456789012345678901234567890")
	require.NoError(t, err)
	out, _ := convertInto(t, d, CSBigInt, 8)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err(), ErrOutOfRange)
	assert.Equal(t, SQLStateGeneralError, out.Diag.SQLState)
}

func TestConvert_TinyDoubleToNumeric(t *testing.T) {
	out, buf := convertInto(t, Float64(1e-40), CNumeric, NumericStructSize)
	require.NotEqual(t, Failed, out.Status, "diag: %v", out.Diag)
	n, err := DecodeNumeric(buf)
	require.NoError(t, err)
	assert.True(t, n.Decimal().IsZero())
	assert.Equal(t, SQLSCHAR(38), n.Scale)
}

func TestParseDecimal_ClampsScale(t *testing.T) {
	d, err := ParseDecimal("0.1234567890123456789012345678901234567891")
	require.NoError(t, err)
	assert.Equal(t, 38, d.Scale)
	assert.Equal(t, 38, d.Precision)
	assert.Equal(t, "0.12345678901234567890123456789012345679", d.V.String())

	d, err = ParseDecimal("12.000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, 36, d.Scale)
	assert.Equal(t, "12", d.V.String())

	_, err = ParseDecimal(strings.Repeat("9", 39))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestConvert_FloatSpecialValues(t *testing.T) {
	tests := []struct {
		v    Value
		text string
	}{
		{Float64(math.NaN()), "nan"},
		{Float64(math.Inf(1)), "inf"},
		{Float64(math.Inf(-1)), "-inf"},
		{Float32(float32(math.NaN())), "nan"},
		{Float32(float32(math.Inf(-1))), "-inf"},
	}
	for _, tt := range tests {
		out, buf := convertInto(t, tt.v, CChar, 16)
		assert.Equal(t, Exact, out.Status)
		assert.Equal(t, tt.text, string(buf[:out.Indicator]))
	}

	// spellings a data source may use all parse to the same IEEE values
	for text, want := range map[string]string{"NaN": "nan", "Infinity": "inf", "-Infinity": "-inf", "inf": "inf"} {
		v, err := ParseValue(SQL_DOUBLE, text)
		require.NoError(t, err, text)
		out, buf := convertInto(t, v, CChar, 16)
		assert.Equal(t, want, string(buf[:out.Indicator]), text)

		_, buf = convertInto(t, Text{S: text}, CDouble, 8)
		assert.Equal(t, want, formatFloat(math.Float64frombits(le.Uint64(buf)), 64), text)
	}

	_, buf := convertInto(t, Float64(math.Inf(1)), CFloat, 4)
	assert.True(t, math.IsInf(float64(math.Float32frombits(le.Uint32(buf))), 1))
	_, buf = convertInto(t, Float64(math.NaN()), CDouble, 8)
	assert.True(t, math.IsNaN(math.Float64frombits(le.Uint64(buf))))
}

func TestConvert_FloatToInteger(t *testing.T) {
	_, buf := convertInto(t, Float64(3.99), CSLong, 4)
	assert.Equal(t, int32(3), int32(le.Uint32(buf)))
	_, buf = convertInto(t, Float64(-3.99), CSLong, 4)
	assert.Equal(t, int32(-3), int32(le.Uint32(buf)))

	for _, f := range []float64{math.NaN(), math.Inf(1), 1e20, -1e19} {
		out, _ := convertInto(t, Float64(f), CSBigInt, 8)
		assert.Equal(t, Failed, out.Status, "%g", f)
		assert.ErrorIs(t, out.Err(), ErrOutOfRange)
	}
}

func TestConvert_DoubleToFloatRoundsToNearest(t *testing.T) {
	_, buf := convertInto(t, Float64(0.1), CFloat, 4)
	assert.Equal(t, math.Float32bits(float32(0.1)), le.Uint32(buf))

	out, _ := convertInto(t, Float64(1e300), CFloat, 4)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err(), ErrOutOfRange)
}

func TestConvert_FloatText(t *testing.T) {
	out, buf := convertInto(t, Float64(3.14159265359), CChar, 32)
	assert.Equal(t, "3.14159265359", string(buf[:out.Indicator]))
	out, buf = convertInto(t, Float32(0.1), CChar, 32)
	assert.Equal(t, "0.1", string(buf[:out.Indicator]))
}

func TestConvert_NumericToBit(t *testing.T) {
	tests := []struct {
		name   string
		v      Value
		status Status
		bit    byte
	}{
		{"zero", Int{V: 0}, Exact, 0},
		{"one", Int{V: 1}, Exact, 1},
		{"one and a half", Float64(1.5), Truncated, 1},
		{"half", Float64(0.5), Truncated, 0},
		{"decimal one", Decimal{V: decimal.RequireFromString("1.00"), Precision: 3, Scale: 2}, Exact, 1},
		{"text true", Text{S: "TRUE"}, Exact, 1},
		{"text zero", Text{S: "0"}, Exact, 0},
		{"two", Int{V: 2}, Failed, 0},
		{"negative", Float64(-0.5), Failed, 0},
		{"nan", Float64(math.NaN()), Failed, 0},
		{"garbage", Text{S: "yes"}, Failed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, buf := convertInto(t, tt.v, CBit, 1)
			assert.Equal(t, tt.status, out.Status)
			if tt.status != Failed {
				assert.Equal(t, tt.bit, buf[0])
			}
			if tt.status == Truncated {
				assert.Equal(t, SQLStateDataTruncation, out.Diag.SQLState)
			}
		})
	}
}

func TestConvert_Null(t *testing.T) {
	for _, ct := range CTypes() {
		capacity := max(ct.Width(), 8)
		out, buf := convertInto(t, Null{}, ct, capacity)
		assert.Equal(t, SQL_NULL_DATA, out.Indicator, ct.String())
		assert.Equal(t, Exact, out.Status, ct.String())
		assert.Equal(t, 0, out.Written, ct.String())
		assert.True(t, out.IsNull())
		assert.Equal(t, bytes.Repeat([]byte{sentinel}, capacity), buf, ct.String())
	}

	out := Convert(nil, Target{Type: CChar, Capacity: 0}, nil)
	assert.True(t, out.IsNull())
}

// =============================================================================
// Failures
// =============================================================================

func TestConvert_Incompatible(t *testing.T) {
	g := GUID(uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"))
	tests := []struct {
		v      Value
		target CType
	}{
		{g, CSLong},
		{g, CDouble},
		{Date{2024, 1, 15}, CTime},
		{Time{Hour: 10}, CDate},
		{Time{Hour: 10}, CTimestamp},
		{Bool(true), CDate},
		{Float64(1), CIntervalDay},
		{Interval{Type: SQL_INTERVAL_DAY, Day: 1}, CDouble},
	}
	for _, tt := range tests {
		require.False(t, Feasible(tt.v.Kind(), tt.target))
		out, _ := convertInto(t, tt.v, tt.target, tt.target.Width())
		assert.Equal(t, Failed, out.Status)
		assert.ErrorIs(t, out.Err(), ErrIncompatible)
		assert.ErrorIs(t, out.Err(), ErrGeneral)
		assert.Equal(t, SQL_ERROR, out.Return())
	}
}

func TestConvert_TextToGUID(t *testing.T) {
	out, buf := convertInto(t, Text{S: "550e8400-e29b-41d4-a716-446655440000"}, CGUID, 16)
	assert.Equal(t, Exact, out.Status)
	assert.Equal(t, "00840E559BE2D441A716446655440000", hexOf(buf))

	out, _ = convertInto(t, Text{S: "not-a-guid"}, CGUID, 16)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err(), ErrMalformed)
	assert.Equal(t, SQLStateGeneralError, out.Diag.SQLState)
}

func TestConvert_BufferPreconditions(t *testing.T) {
	out, _ := convertInto(t, Int{V: 1}, CSLong, 2)
	assert.Equal(t, Failed, out.Status)
	assert.Equal(t, SQLStateInvalidStringLength, out.Diag.SQLState)
	assert.ErrorIs(t, out.Err(), ErrBufferTooSmall)

	buf := make([]byte, 4)
	out = Convert(Text{S: "x"}, Target{Type: CChar, Capacity: 8}, buf)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err(), ErrInvalidLength)

	out = Convert(Text{S: "x"}, Target{Type: CChar, Capacity: -1}, buf)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err(), ErrBufferTooSmall)
}

func TestConvert_UnknownCType(t *testing.T) {
	out := Convert(Int{V: 1}, Target{Type: CType(1234), Capacity: 8}, make([]byte, 8))
	assert.Equal(t, Failed, out.Status)
	assert.Equal(t, SQLStateProgramTypeRange, out.Diag.SQLState)
	assert.ErrorIs(t, out.Err(), ErrUnknownType)
}

// =============================================================================
// Binary sources and targets
// =============================================================================

func TestConvert_BinaryTruncated(t *testing.T) {
	data := Binary{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	out, buf := convertInto(t, data, CBinary, 4)
	assert.Equal(t, Truncated, out.Status)
	assert.Equal(t, 4, out.Written)
	assert.Equal(t, SQLLEN(10), out.Indicator)
	assert.Equal(t, []byte{0, 1, 2, 3}, buf)
}

func TestConvert_BinaryToFixedRequiresExactWidth(t *testing.T) {
	out, buf := convertInto(t, Binary{0x01, 0x02, 0x03, 0x04}, CSLong, 4)
	assert.Equal(t, Exact, out.Status)
	assert.Equal(t, "01020304", hexOf(buf))

	out, _ = convertInto(t, Binary{0x01, 0x02, 0x03}, CSLong, 4)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err(), ErrMalformed)
}

func TestConvert_BinaryToText(t *testing.T) {
	out, buf := convertInto(t, Binary{0xDE, 0xAD, 0xBE, 0xEF}, CChar, 16)
	assert.Equal(t, "DEADBEEF", string(buf[:out.Indicator]))
}

func TestConvert_FloatToBinary(t *testing.T) {
	_, buf := convertInto(t, Float64(1), CBinary, 8)
	assert.Equal(t, "000000000000F03F", hexOf(buf))
	out, buf := convertInto(t, Float32(1), CBinary, 8)
	assert.Equal(t, 4, out.Written)
	assert.Equal(t, "0000803F", hexOf(buf[:4]))
}

func TestConvert_NationalTextToBinary(t *testing.T) {
	out, buf := convertInto(t, Text{S: "hé", National: true}, CBinary, 8)
	assert.Equal(t, SQLLEN(4), out.Indicator)
	assert.Equal(t, "6800E900", hexOf(buf[:4]))
}

// =============================================================================
// Text renderings
// =============================================================================

func TestConvert_TextRenderings(t *testing.T) {
	d, _ := ParseDecimal("1234.567890")
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"bigint", Int{V: -1234567890}, "-1234567890"},
		{"ubigint", Uint{V: math.MaxUint64}, "18446744073709551615"},
		{"decimal keeps scale", d, "1234.567890"},
		{"date", Date{2024, 2, 29}, "2024-02-29"},
		{"time", Time{Hour: 10, Minute: 30, Second: 5}, "10:30:05"},
		{"time fraction", Time{Hour: 10, Minute: 30, Fraction: 500000000}, "10:30:00.5"},
		{"timestamp", Timestamp{Date{2024, 1, 15}, Time{14, 30, 45, 123456789}}, "2024-01-15 14:30:45.123456789"},
		{"guid", GUID(uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")), "550E8400-E29B-41D4-A716-446655440000"},
		{"interval day to second", Interval{Type: SQL_INTERVAL_DAY_TO_SECOND, Day: 3, Hour: 4, Minute: 5, Second: 6, Fraction: 500000000}, "3 04:05:06.5"},
		{"interval year to month", Interval{Type: SQL_INTERVAL_YEAR_TO_MONTH, Negative: true, Year: 5, Month: 3}, "-5-03"},
		{"interval second", Interval{Type: SQL_INTERVAL_SECOND, Second: 90, Fraction: 250000000}, "90.25"},
		{"interval hour to minute", Interval{Type: SQL_INTERVAL_HOUR_TO_MINUTE, Hour: 7, Minute: 5}, "7:05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, buf := convertInto(t, tt.v, CChar, 64)
			require.Equal(t, Exact, out.Status)
			assert.Equal(t, tt.want, string(buf[:out.Indicator]))
			assert.Equal(t, byte(0), buf[out.Indicator])
		})
	}
}

func TestConvert_TimestampPrecision(t *testing.T) {
	ts := Timestamp{Date{2024, 1, 15}, Time{14, 30, 45, 123456789}}
	tests := []struct {
		precision TimestampPrecision
		want      string
	}{
		{TimestampPrecisionAuto, "2024-01-15 14:30:45.123456789"},
		{TimestampPrecisionSeconds, "2024-01-15 14:30:45"},
		{TimestampPrecisionMilliseconds, "2024-01-15 14:30:45.123"},
		{TimestampPrecisionMicroseconds, "2024-01-15 14:30:45.123456"},
		{TimestampPrecisionNanoseconds, "2024-01-15 14:30:45.123456789"},
	}
	for _, tt := range tests {
		out, buf := convertInto(t, ts, CChar, 64, WithTimestampPrecision(tt.precision))
		assert.Equal(t, tt.want, string(buf[:out.Indicator]))
	}

	out, buf := convertInto(t, Time{Hour: 1, Fraction: 500000000}, CChar, 64, WithTimestampPrecision(TimestampPrecisionMilliseconds))
	assert.Equal(t, "01:00:00.500", string(buf[:out.Indicator]))
}

// =============================================================================
// Wide text
// =============================================================================

func TestConvert_WideText(t *testing.T) {
	out, buf := convertInto(t, Text{S: "héllo"}, CWChar, 64)
	assert.Equal(t, Exact, out.Status)
	assert.Equal(t, SQLLEN(10), out.Indicator)
	assert.Equal(t, 12, out.Written)
	assert.Equal(t, "6800E9006C006C006F000000", hexOf(buf[:12]))
	assert.Equal(t, "héllo", DecodeWide(buf))
}

func TestConvert_WideTextTruncated(t *testing.T) {
	out, buf := convertInto(t, Text{S: "abcdef"}, CWChar, 8)
	assert.Equal(t, Truncated, out.Status)
	assert.Equal(t, SQLLEN(12), out.Indicator)
	assert.Equal(t, 8, out.Written)
	assert.Equal(t, "abc", DecodeWide(buf))

	// odd capacity: the last byte is never used
	out, buf = convertInto(t, Text{S: "abcdef"}, CWChar, 7)
	assert.Equal(t, 6, out.Written)
	assert.Equal(t, byte(sentinel), buf[6])
}

// Capacity counts bytes for wide targets too, as BufferLength does for
// SQL_C_WCHAR: five bytes hold one unit plus the terminator.
func TestConvert_WideCapacityIsInBytes(t *testing.T) {
	out, buf := convertInto(t, Text{S: "foobar"}, CWChar, 5)
	assert.Equal(t, Truncated, out.Status)
	assert.Equal(t, SQLLEN(12), out.Indicator)
	assert.Equal(t, 4, out.Written)
	assert.Equal(t, "f", DecodeWide(buf))
	assert.Equal(t, byte(sentinel), buf[4])

	out, buf = convertInto(t, Text{S: "foobar"}, CWChar, 10)
	assert.Equal(t, Truncated, out.Status)
	assert.Equal(t, 10, out.Written)
	assert.Equal(t, "foob", DecodeWide(buf))

	out, _ = convertInto(t, Text{S: "foobar"}, CWChar, 14)
	assert.Equal(t, Exact, out.Status)
	assert.Equal(t, 14, out.Written)
}

func TestConvert_WideTextKeepsSurrogatePairs(t *testing.T) {
	out, buf := convertInto(t, Text{S: "a\U0001F600"}, CWChar, 6)
	assert.Equal(t, Truncated, out.Status)
	assert.Equal(t, SQLLEN(6), out.Indicator)
	assert.Equal(t, 4, out.Written)
	assert.Equal(t, "61000000", hexOf(buf[:4]))

	out, buf = convertInto(t, Text{S: "a\U0001F600"}, CWChar, 8)
	assert.Equal(t, Exact, out.Status)
	assert.Equal(t, "a\U0001F600", DecodeWide(buf))
}

func TestConvert_WideTextSmallCapacity(t *testing.T) {
	out, _ := convertInto(t, Text{S: "x"}, CWChar, 1)
	assert.Equal(t, Truncated, out.Status)
	assert.Equal(t, 0, out.Written)

	out, buf := convertInto(t, Text{S: ""}, CWChar, 2)
	assert.Equal(t, Exact, out.Status)
	assert.Equal(t, []byte{0, 0}, buf)
}

func TestEscapeWide(t *testing.T) {
	units, err := encodeWide("Aé中\U0001F600\x01")
	require.NoError(t, err)
	assert.Equal(t, `Aé\4E2D\D83D\DE00\0001`, EscapeWide(units))
}

// =============================================================================
// Date and time structs
// =============================================================================

func TestConvert_DateTimeStructs(t *testing.T) {
	_, buf := convertInto(t, Date{2024, 2, 29}, CTimestamp, 16)
	assert.Equal(t, "E80702001D00"+"000000000000"+"00000000", hexOf(buf))

	ts := Timestamp{Date{2024, 1, 15}, Time{14, 30, 45, 123456789}}
	_, buf = convertInto(t, ts, CDate, 6)
	assert.Equal(t, "E80701000F00", hexOf(buf))

	_, buf = convertInto(t, ts, CTime, 6)
	assert.Equal(t, "0E001E002D00", hexOf(buf))

	_, buf = convertInto(t, Text{S: "2024-01-15 14:30:45.5"}, CTimestamp, 16)
	decoded, err := DecodeTimestamp(buf)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 14, 30, 45, 500000000, time.UTC), decoded.Time(nil))

	out, _ := convertInto(t, Text{S: "2024-13-01"}, CDate, 6)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err(), ErrMalformed)

	out, _ = convertInto(t, Date{2023, 2, 29}, CDate, 6)
	assert.Equal(t, Failed, out.Status)
}

func TestConvert_DateYearRange(t *testing.T) {
	tests := []struct {
		name  string
		v     Value
		valid bool
	}{
		{"first year", Date{MinYear, 1, 1}, true},
		{"last year", Date{MaxYear, 12, 31}, true},
		{"year zero", Date{0, 1, 1}, false},
		{"negative year", Date{-5, 1, 2}, false},
		{"five digit year", Date{10000, 1, 1}, false},
		{"timestamp five digit year", Timestamp{Date{10000, 1, 1}, Time{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, ct := range []CType{CChar, CWChar, CDate, CTimestamp} {
				out, _ := convertInto(t, tt.v, ct, 64)
				if tt.valid {
					assert.NotEqual(t, Failed, out.Status, "%s", ct)
					continue
				}
				assert.Equal(t, Failed, out.Status, "%s", ct)
				assert.ErrorIs(t, out.Err(), ErrMalformed, "%s", ct)
			}
		})
	}
}

func TestConvert_InvalidTimeText(t *testing.T) {
	out, _ := convertInto(t, Time{Hour: 24}, CChar, 16)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err(), ErrMalformed)
}

// =============================================================================
// Intervals
// =============================================================================

func TestConvert_IntervalRenormalize(t *testing.T) {
	ym := Interval{Type: SQL_INTERVAL_YEAR_TO_MONTH, Year: 5, Month: 3}
	_, buf := convertInto(t, ym, CIntervalMonth, IntervalStructSize)
	iv, err := DecodeInterval(buf)
	require.NoError(t, err)
	assert.Equal(t, Interval{Type: SQL_INTERVAL_MONTH, Month: 63}, iv.Interval())

	ds := Interval{Type: SQL_INTERVAL_DAY_TO_SECOND, Negative: true, Day: 3, Hour: 4, Minute: 5, Second: 6, Fraction: 7}
	_, buf = convertInto(t, ds, CIntervalHour, IntervalStructSize)
	iv, err = DecodeInterval(buf)
	require.NoError(t, err)
	assert.Equal(t, Interval{Type: SQL_INTERVAL_HOUR, Negative: true, Hour: 76}, iv.Interval())

	_, buf = convertInto(t, Interval{Type: SQL_INTERVAL_MINUTE, Minute: 125}, CIntervalHourToSecond, IntervalStructSize)
	iv, err = DecodeInterval(buf)
	require.NoError(t, err)
	assert.Equal(t, Interval{Type: SQL_INTERVAL_HOUR_TO_SECOND, Hour: 2, Minute: 5}, iv.Interval())

	out, _ := convertInto(t, ym, CIntervalDay, IntervalStructSize)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err(), ErrIncompatible)
}

func TestConvert_IntervalNumbers(t *testing.T) {
	sec := Interval{Type: SQL_INTERVAL_SECOND, Negative: true, Second: 90, Fraction: 250000000}
	_, buf := convertInto(t, sec, CSLong, 4)
	assert.Equal(t, int32(-90), int32(le.Uint32(buf)))

	_, buf = convertInto(t, sec, CNumeric, NumericStructSize)
	n, err := DecodeNumeric(buf)
	require.NoError(t, err)
	assert.Equal(t, "-90.25", n.Decimal().String())

	_, buf = convertInto(t, Int{V: 42}, CIntervalMinute, IntervalStructSize)
	// type, sign and padding, day, hour, minute
	assert.Equal(t, "05000000"+"00000000"+"00000000"+"00000000"+"2A000000", hexOf(buf[:20]))

	out, _ := convertInto(t, Interval{Type: SQL_INTERVAL_DAY_TO_SECOND, Day: 1}, CSLong, 4)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err(), ErrIncompatible)

	out, _ = convertInto(t, Int{V: 42}, CIntervalDayToHour, IntervalStructSize)
	assert.ErrorIs(t, out.Err(), ErrIncompatible)
}

func TestConvert_TextToInterval(t *testing.T) {
	_, buf := convertInto(t, Text{S: "-5-03"}, CIntervalYearToMonth, IntervalStructSize)
	iv, err := DecodeInterval(buf)
	require.NoError(t, err)
	assert.Equal(t, Interval{Type: SQL_INTERVAL_YEAR_TO_MONTH, Negative: true, Year: 5, Month: 3}, iv.Interval())

	_, buf = convertInto(t, Text{S: "3 04:05:06.5"}, CIntervalDayToSecond, IntervalStructSize)
	iv, err = DecodeInterval(buf)
	require.NoError(t, err)
	assert.Equal(t, Interval{Type: SQL_INTERVAL_DAY_TO_SECOND, Day: 3, Hour: 4, Minute: 5, Second: 6, Fraction: 500000000}, iv.Interval())

	out, _ := convertInto(t, Text{S: "1 02:03"}, CIntervalDayToMinute, IntervalStructSize)
	assert.ErrorIs(t, out.Err(), ErrIncompatible)

	out, _ = convertInto(t, Text{S: "5-13"}, CIntervalYearToMonth, IntervalStructSize)
	assert.ErrorIs(t, out.Err(), ErrMalformed)
}

// =============================================================================
// Logging and concurrency
// =============================================================================

func TestConvert_LogsFailuresAndTruncation(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := NewConverter(WithLogger(zap.New(core)))

	c.Convert(Text{S: "foobar"}, Target{Type: CChar, Capacity: 3}, make([]byte, 3))
	c.Convert(Text{S: "nope"}, Target{Type: CGUID, Capacity: 16}, make([]byte, 16))
	c.Convert(Text{S: "ok"}, Target{Type: CChar, Capacity: 8}, make([]byte, 8))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "conversion truncated", entries[0].Message)
	assert.Equal(t, "01004", entries[0].ContextMap()["sqlstate"])
	assert.Equal(t, "conversion failed", entries[1].Message)
	assert.Equal(t, "SQL_C_GUID", entries[1].ContextMap()["target"])
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	Convert(Int{V: 1}, Target{Type: CSLong, Capacity: 1}, make([]byte, 1))
	assert.Equal(t, 1, logs.Len())
}

func TestConvert_Concurrent(t *testing.T) {
	c := NewConverter()
	values := []struct {
		v    Value
		ct   CType
		want string
	}{
		{Int{V: 1234567890}, CSShort, "D202"},
		{Text{S: "foobar"}, CChar, "666F6F6200"},
		{Bool(true), CBit, "01"},
		{Text{S: "550e8400-e29b-41d4-a716-446655440000"}, CGUID, "00840E559BE2D441A716446655440000"},
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				tt := values[i%len(values)]
				capacity := max(tt.ct.Width(), len(tt.want)/2)
				buf := make([]byte, capacity)
				out := c.Convert(tt.v, Target{Type: tt.ct, Capacity: capacity}, buf)
				if hexOf(buf[:out.Written]) != tt.want {
					t.Errorf("goroutine %d: expected %s, got %s", g, tt.want, hexOf(buf[:out.Written]))
					return
				}
			}
		}()
	}
	wg.Wait()
}
