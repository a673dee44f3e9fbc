package odbc

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Converter renders values into caller buffers. A Converter holds only
// configuration; it is safe for concurrent use and every call works on
// its own scratch space.
type Converter struct {
	log       *zap.Logger
	precision TimestampPrecision
	tz        *time.Location
}

// NewConverter creates a Converter with the given options
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{
		log:       Logger(),
		precision: TimestampPrecisionAuto,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert renders v as t into buf using the default configuration.
func Convert(v Value, t Target, buf []byte) Outcome {
	return NewConverter().Convert(v, t, buf)
}

// ValueOf converts a native Go value, moving time.Time arguments into the
// configured timezone first.
func (c *Converter) ValueOf(x any) (Value, error) {
	if tm, ok := x.(time.Time); ok && c.tz != nil {
		x = tm.In(c.tz)
	}
	return ValueOf(x)
}

// Convert renders v as the target representation t into buf. Bytes at
// offsets >= t.Capacity are never written, and a Failed outcome writes
// nothing at all.
func (c *Converter) Convert(v Value, t Target, buf []byte) Outcome {
	out := c.convert(v, t, buf)
	switch out.Status {
	case Truncated:
		c.log.Debug("conversion truncated",
			zap.String("source", kindOf(v).String()),
			zap.String("target", t.Type.String()),
			zap.Int("capacity", t.Capacity),
			zap.Int64("indicator", int64(out.Indicator)),
			zap.String("sqlstate", out.Diag.SQLState))
	case Failed:
		c.log.Debug("conversion failed",
			zap.String("source", kindOf(v).String()),
			zap.String("target", t.Type.String()),
			zap.String("sqlstate", out.Diag.SQLState),
			zap.Error(out.Diag))
	}
	return out
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

func (c *Converter) convert(v Value, t Target, buf []byte) Outcome {
	info, ok := catalog[t.Type]
	if !ok {
		return failed(ErrUnknownType, "C type %d", int(t.Type))
	}
	if err := checkBuffer(info, t, buf); err != nil {
		return failed(err, "%s", info.name)
	}
	if v == nil {
		v = Null{}
	}
	if _, ok := v.(Null); ok {
		return Outcome{Indicator: SQL_NULL_DATA}
	}
	if !Feasible(v.Kind(), t.Type) {
		return failed(ErrIncompatible, "converting %s to %s", v.Kind(), info.name)
	}

	buf = buf[:t.Capacity]
	switch info.class {
	case classText:
		s, err := renderText(v, c.precision)
		if err != nil {
			return failed(err, "converting %s to %s", v.Kind(), info.name)
		}
		return copyText(s, buf, t.Capacity)

	case classWide:
		s, err := renderText(v, c.precision)
		if err != nil {
			return failed(err, "converting %s to %s", v.Kind(), info.name)
		}
		units, err := encodeWide(s)
		if err != nil {
			return failed(err, "converting %s to %s", v.Kind(), info.name)
		}
		return copyWide(units, buf, t.Capacity)

	case classBinary:
		b, err := binaryImage(v)
		if err != nil {
			return failed(err, "converting %s to %s", v.Kind(), info.name)
		}
		return copyBinary(b, buf, t.Capacity)

	default:
		// per-call scratch, large enough for every fixed struct
		var scratch [IntervalStructSize]byte
		image := scratch[:info.width]
		status, err := packFixed(v, info, image)
		if err != nil {
			return failed(err, "converting %s to %s", v.Kind(), info.name)
		}
		out := putFixed(image, buf)
		if status == Truncated {
			out.Status = Truncated
			out.Diag = fractionalDiag()
		}
		return out
	}
}

// binaryImage returns the bytes a SQL_C_BINARY target receives: the
// native little-endian representation of the source.
func binaryImage(v Value) ([]byte, error) {
	switch v := v.(type) {
	case Bool:
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case Int:
		return le.AppendUint64(nil, uint64(v.V))[:v.width()], nil
	case Uint:
		return le.AppendUint64(nil, v.V)[:v.width()], nil
	case Float32:
		return le.AppendUint32(nil, math.Float32bits(float32(v))), nil
	case Float64:
		return le.AppendUint64(nil, math.Float64bits(float64(v))), nil
	case Decimal:
		n, err := numericFromDecimal(v.V, v.Precision, v.Scale)
		if err != nil {
			return nil, err
		}
		b := make([]byte, NumericStructSize)
		n.Put(b)
		return b, nil
	case Text:
		if v.National {
			return encodeWide(v.S)
		}
		return []byte(v.S), nil
	case Binary:
		return v, nil
	case Date:
		b := make([]byte, DateStructSize)
		dateStruct(v).Put(b)
		return b, nil
	case Time:
		b := make([]byte, TimeStructSize)
		timeStruct(v).Put(b)
		return b, nil
	case Timestamp:
		b := make([]byte, TimestampStructSize)
		timestampStruct(v).Put(b)
		return b, nil
	case Interval:
		b := make([]byte, IntervalStructSize)
		intervalStruct(v).Put(b)
		return b, nil
	case GUID:
		b := make([]byte, GUIDStructSize)
		guidStruct(uuid.UUID(v)).Put(b)
		return b, nil
	}
	return nil, fmt.Errorf("%w: %T has no binary form", ErrIncompatible, v)
}

// packFixed fills image (exactly the target width) for a fixed-width target.
func packFixed(v Value, info cTypeInfo, image []byte) (Status, error) {
	if b, ok := v.(Binary); ok {
		if len(b) != info.width {
			return Failed, fmt.Errorf("%w: %d bytes of binary data for a %d-byte %s", ErrMalformed, len(b), info.width, info.name)
		}
		copy(image, b)
		return Exact, nil
	}

	switch info.class {
	case classBit:
		bit, status, err := bitValue(v)
		if err != nil {
			return Failed, err
		}
		image[0] = bit
		return status, nil

	case classInteger:
		bits, err := integerBits(v)
		if err != nil {
			return Failed, err
		}
		putNarrowed(image, bits)
		return Exact, nil

	case classFloat:
		f, err := floatValue(v, 32)
		if err != nil {
			return Failed, err
		}
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return Failed, fmt.Errorf("%w: %g overflows a 32-bit float", ErrOutOfRange, f)
		}
		le.PutUint32(image, math.Float32bits(float32(f)))
		return Exact, nil

	case classDouble:
		f, err := floatValue(v, 64)
		if err != nil {
			return Failed, err
		}
		le.PutUint64(image, math.Float64bits(f))
		return Exact, nil

	case classNumeric:
		d, err := decimalValue(v)
		if err != nil {
			return Failed, err
		}
		n, err := numericFromDecimal(d.V, d.Precision, d.Scale)
		if err != nil {
			return Failed, err
		}
		n.Put(image)
		return Exact, nil

	case classDate:
		d, err := dateValue(v)
		if err != nil {
			return Failed, err
		}
		dateStruct(d).Put(image)
		return Exact, nil

	case classTime:
		t, err := timeValue(v)
		if err != nil {
			return Failed, err
		}
		timeStruct(t).Put(image)
		return Exact, nil

	case classTimestamp:
		ts, err := timestampValue(v)
		if err != nil {
			return Failed, err
		}
		timestampStruct(ts).Put(image)
		return Exact, nil

	case classGUID:
		g, err := guidValue(v)
		if err != nil {
			return Failed, err
		}
		guidStruct(uuid.UUID(g)).Put(image)
		return Exact, nil

	case classInterval:
		iv, err := intervalValue(v, SQLSMALLINT(info.ctype))
		if err != nil {
			return Failed, err
		}
		intervalStruct(iv).Put(image)
		return Exact, nil
	}
	return Failed, fmt.Errorf("%w: %s", ErrIncompatible, info.name)
}

// putNarrowed keeps the low len(image) bytes of the two's-complement bits,
// least significant first. The result is v modulo 2^(8*len(image)).
func putNarrowed(image []byte, bits uint64) {
	for i := range image {
		image[i] = byte(bits >> (8 * i))
	}
}

var (
	minInt64  = new(big.Int).SetInt64(math.MinInt64)
	maxUint64 = new(big.Int).SetUint64(math.MaxUint64)
	mask64    = maxUint64
)

// integerBits returns the 64-bit two's-complement bits of the source
// value. Fractions are truncated toward zero for floats and rounded half
// away from zero for decimals and text. Values outside
// [-2^63, 2^64) are out of range.
func integerBits(v Value) (uint64, error) {
	switch v := v.(type) {
	case Bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case Int:
		return uint64(v.V), nil
	case Uint:
		return v.V, nil
	case Float32:
		return floatBits(float64(v))
	case Float64:
		return floatBits(float64(v))
	case Decimal:
		return decimalBits(v.V)
	case Text:
		d, err := parseDecimalText(v.S)
		if err != nil {
			return 0, err
		}
		return decimalBits(d)
	case Interval:
		d, err := intervalScalar(v)
		if err != nil {
			return 0, err
		}
		return decimalBits(d.Truncate(0))
	}
	return 0, fmt.Errorf("%w: %s to integer", ErrIncompatible, v.Kind())
}

func floatBits(f float64) (uint64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s has no integer value", ErrOutOfRange, formatFloat(f, 64))
	}
	t := math.Trunc(f)
	switch {
	case t < math.MinInt64 || t >= 1<<64:
		return 0, fmt.Errorf("%w: %g exceeds 64 bits", ErrOutOfRange, f)
	case t >= 1<<63:
		return uint64(t), nil
	default:
		return uint64(int64(t)), nil
	}
}

func decimalBits(d decimal.Decimal) (uint64, error) {
	r := d.Round(0).BigInt()
	if r.Cmp(minInt64) < 0 || r.Cmp(maxUint64) > 0 {
		return 0, fmt.Errorf("%w: %s exceeds 64 bits", ErrOutOfRange, d.String())
	}
	return new(big.Int).And(r, mask64).Uint64(), nil
}

var (
	decimalOne = decimal.NewFromInt(1)
	decimalTwo = decimal.NewFromInt(2)
)

// bitValue applies the SQL_C_BIT rule: 0 and 1 are exact, values strictly
// between 0 and 2 truncate toward zero, anything else is out of range.
func bitValue(v Value) (byte, Status, error) {
	var d decimal.Decimal
	switch v := v.(type) {
	case Bool:
		if v {
			return 1, Exact, nil
		}
		return 0, Exact, nil
	case Int:
		d = decimal.NewFromInt(v.V)
	case Uint:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(v.V), 0)
	case Float32, Float64:
		f, _ := floatValue(v, 64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, Failed, fmt.Errorf("%w: %s is not a bit", ErrOutOfRange, formatFloat(f, 64))
		}
		d = decimal.NewFromFloat(f)
	case Decimal:
		d = v.V
	case Text:
		switch s := strings.TrimSpace(v.S); {
		case strings.EqualFold(s, "true"):
			return 1, Exact, nil
		case strings.EqualFold(s, "false"):
			return 0, Exact, nil
		}
		var err error
		if d, err = parseDecimalText(v.S); err != nil {
			return 0, Failed, err
		}
	default:
		return 0, Failed, fmt.Errorf("%w: %s to bit", ErrIncompatible, v.Kind())
	}

	switch {
	case d.IsZero():
		return 0, Exact, nil
	case d.Equal(decimalOne):
		return 1, Exact, nil
	case d.IsPositive() && d.LessThan(decimalTwo):
		return byte(d.IntPart()), Truncated, nil
	}
	return 0, Failed, fmt.Errorf("%w: %s is not a bit", ErrOutOfRange, d.String())
}

// floatValue returns the source as a float64. Text is parsed at bitSize,
// so "NaN", "Infinity" and "-Infinity" are accepted.
func floatValue(v Value, bitSize int) (float64, error) {
	switch v := v.(type) {
	case Bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case Int:
		return float64(v.V), nil
	case Uint:
		return float64(v.V), nil
	case Float32:
		return float64(v), nil
	case Float64:
		return float64(v), nil
	case Decimal:
		f, _ := v.V.Float64()
		return f, nil
	case Text:
		return parseFloatText(v.S, bitSize)
	}
	return 0, fmt.Errorf("%w: %s to float", ErrIncompatible, v.Kind())
}

// decimalValue returns the exact value and the precision/scale a
// SQL_C_NUMERIC target is packed with.
func decimalValue(v Value) (Decimal, error) {
	switch v := v.(type) {
	case Bool:
		if v {
			return Decimal{V: decimalOne, Precision: 1}, nil
		}
		return Decimal{V: decimal.Zero, Precision: 1}, nil
	case Int:
		return decimalOf(decimal.NewFromInt(v.V))
	case Uint:
		return decimalOf(decimal.NewFromBigInt(new(big.Int).SetUint64(v.V), 0))
	case Float32, Float64:
		f, _ := floatValue(v, 64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Decimal{}, fmt.Errorf("%w: %s has no numeric value", ErrOutOfRange, formatFloat(f, 64))
		}
		if _, ok := v.(Float32); ok {
			return ParseDecimal(formatFloat(f, 32))
		}
		return decimalOf(decimal.NewFromFloat(f))
	case Decimal:
		return v, nil
	case Text:
		return ParseDecimal(strings.TrimSpace(v.S))
	case Interval:
		d, err := intervalScalar(v)
		if err != nil {
			return Decimal{}, err
		}
		return decimalOf(d)
	}
	return Decimal{}, fmt.Errorf("%w: %s to numeric", ErrIncompatible, v.Kind())
}

func dateValue(v Value) (Date, error) {
	switch v := v.(type) {
	case Date:
		if !v.Valid() {
			return Date{}, fmt.Errorf("%w: invalid date %s", ErrMalformed, formatDate(v))
		}
		return v, nil
	case Timestamp:
		return dateValue(v.Date)
	case Text:
		ts, err := parseDateTimeText(v.S, SQL_TYPE_DATE)
		if err != nil {
			return Date{}, err
		}
		return ts.Date, nil
	}
	return Date{}, fmt.Errorf("%w: %s to date", ErrIncompatible, v.Kind())
}

func timeValue(v Value) (Time, error) {
	switch v := v.(type) {
	case Time:
		if !v.Valid() {
			return Time{}, fmt.Errorf("%w: invalid time %s", ErrMalformed, formatTime(v, TimestampPrecisionAuto))
		}
		return v, nil
	case Timestamp:
		return timeValue(v.Time)
	case Text:
		ts, err := parseDateTimeText(v.S, SQL_TYPE_TIME)
		if err != nil {
			return Time{}, err
		}
		return ts.Time, nil
	}
	return Time{}, fmt.Errorf("%w: %s to time", ErrIncompatible, v.Kind())
}

func timestampValue(v Value) (Timestamp, error) {
	switch v := v.(type) {
	case Timestamp:
		if !v.Valid() {
			return Timestamp{}, fmt.Errorf("%w: invalid timestamp", ErrMalformed)
		}
		return v, nil
	case Date:
		d, err := dateValue(v)
		return Timestamp{Date: d}, err
	case Text:
		return parseDateTimeText(v.S, SQL_TYPE_TIMESTAMP)
	}
	return Timestamp{}, fmt.Errorf("%w: %s to timestamp", ErrIncompatible, v.Kind())
}

func guidValue(v Value) (GUID, error) {
	switch v := v.(type) {
	case GUID:
		return v, nil
	case Text:
		u, err := parseGUIDText(v.S)
		return GUID(u), err
	}
	return GUID{}, fmt.Errorf("%w: %s to GUID", ErrIncompatible, v.Kind())
}

func dateStruct(d Date) SQL_DATE_STRUCT {
	return SQL_DATE_STRUCT{Year: SQLSMALLINT(d.Year), Month: SQLUSMALLINT(d.Month), Day: SQLUSMALLINT(d.Day)}
}

func timeStruct(t Time) SQL_TIME_STRUCT {
	return SQL_TIME_STRUCT{Hour: SQLUSMALLINT(t.Hour), Minute: SQLUSMALLINT(t.Minute), Second: SQLUSMALLINT(t.Second)}
}

func timestampStruct(ts Timestamp) SQL_TIMESTAMP_STRUCT {
	return SQL_TIMESTAMP_STRUCT{
		Year:     SQLSMALLINT(ts.Year),
		Month:    SQLUSMALLINT(ts.Month),
		Day:      SQLUSMALLINT(ts.Day),
		Hour:     SQLUSMALLINT(ts.Hour),
		Minute:   SQLUSMALLINT(ts.Minute),
		Second:   SQLUSMALLINT(ts.Second),
		Fraction: SQLUINTEGER(ts.Fraction),
	}
}
