package odbc

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Value is a typed scalar retrieved from a data source, before any
// caller-requested re-encoding. The set of implementations is closed.
type Value interface {
	// Kind reports the source kind used by the feasibility matrix
	Kind() Kind
	// SQLType reports the SQL type the value was described with
	SQLType() SQLSMALLINT

	isValue()
}

// Null is the SQL NULL. It carries no payload.
type Null struct{}

// Bool is a BIT or BOOLEAN value
type Bool bool

// Int is a signed integer column value. Size is the column width in bytes
// (1, 2, 4 or 8); zero means 8.
type Int struct {
	V    int64
	Size int
}

// Uint is an unsigned integer column value
type Uint struct {
	V    uint64
	Size int
}

// Float32 is a REAL value
type Float32 float32

// Float64 is a FLOAT or DOUBLE value
type Float64 float64

// Decimal is an exact NUMERIC/DECIMAL value with its declared precision and scale
type Decimal struct {
	V         decimal.Decimal
	Precision int
	Scale     int
}

// Text is a character column value. Fixed marks CHAR columns, National
// marks NCHAR/NVARCHAR columns.
type Text struct {
	S        string
	Fixed    bool
	National bool
}

// Binary is a BINARY/VARBINARY value
type Binary []byte

// Date is a calendar date
type Date struct {
	Year  int
	Month int
	Day   int
}

// Time is a time of day. Fraction is in nanoseconds.
type Time struct {
	Hour     int
	Minute   int
	Second   int
	Fraction int
}

// Timestamp is a date and time of day
type Timestamp struct {
	Date
	Time
}

// Interval is an SQL interval value. Type is one of the SQL_INTERVAL_*
// codes and selects which fields are meaningful; the others are zero.
type Interval struct {
	Type     SQLSMALLINT
	Negative bool
	Year     uint32
	Month    uint32
	Day      uint32
	Hour     uint32
	Minute   uint32
	Second   uint32
	Fraction uint32 // nanoseconds
}

// GUID is a UNIQUEIDENTIFIER value
type GUID uuid.UUID

func (Null) isValue()      {}
func (Bool) isValue()      {}
func (Int) isValue()       {}
func (Uint) isValue()      {}
func (Float32) isValue()   {}
func (Float64) isValue()   {}
func (Decimal) isValue()   {}
func (Text) isValue()      {}
func (Binary) isValue()    {}
func (Date) isValue()      {}
func (Time) isValue()      {}
func (Timestamp) isValue() {}
func (Interval) isValue()  {}
func (GUID) isValue()      {}

func (Null) Kind() Kind      { return KindNull }
func (Bool) Kind() Kind      { return KindBool }
func (Int) Kind() Kind       { return KindInteger }
func (Uint) Kind() Kind      { return KindInteger }
func (Float32) Kind() Kind   { return KindFloat }
func (Float64) Kind() Kind   { return KindFloat }
func (Decimal) Kind() Kind   { return KindDecimal }
func (Text) Kind() Kind      { return KindText }
func (Binary) Kind() Kind    { return KindBinary }
func (Date) Kind() Kind      { return KindDate }
func (Time) Kind() Kind      { return KindTime }
func (Timestamp) Kind() Kind { return KindTimestamp }
func (Interval) Kind() Kind  { return KindInterval }
func (GUID) Kind() Kind      { return KindGUID }

func (Null) SQLType() SQLSMALLINT      { return SQL_UNKNOWN_TYPE }
func (Bool) SQLType() SQLSMALLINT      { return SQL_BIT }
func (v Int) SQLType() SQLSMALLINT     { return intSQLType(v.Size) }
func (v Uint) SQLType() SQLSMALLINT    { return intSQLType(v.Size) }
func (Float32) SQLType() SQLSMALLINT   { return SQL_REAL }
func (Float64) SQLType() SQLSMALLINT   { return SQL_DOUBLE }
func (Decimal) SQLType() SQLSMALLINT   { return SQL_DECIMAL }
func (Binary) SQLType() SQLSMALLINT    { return SQL_VARBINARY }
func (Date) SQLType() SQLSMALLINT      { return SQL_TYPE_DATE }
func (Time) SQLType() SQLSMALLINT      { return SQL_TYPE_TIME }
func (Timestamp) SQLType() SQLSMALLINT { return SQL_TYPE_TIMESTAMP }
func (v Interval) SQLType() SQLSMALLINT {
	return v.Type
}
func (GUID) SQLType() SQLSMALLINT { return SQL_GUID }

func (v Text) SQLType() SQLSMALLINT {
	switch {
	case v.National && v.Fixed:
		return SQL_WCHAR
	case v.National:
		return SQL_WVARCHAR
	case v.Fixed:
		return SQL_CHAR
	default:
		return SQL_VARCHAR
	}
}

func intSQLType(size int) SQLSMALLINT {
	switch size {
	case 1:
		return SQL_TINYINT
	case 2:
		return SQL_SMALLINT
	case 4:
		return SQL_INTEGER
	default:
		return SQL_BIGINT
	}
}

// width returns the native byte width of the integer
func (v Int) width() int  { return intWidth(v.Size) }
func (v Uint) width() int { return intWidth(v.Size) }

func intWidth(size int) int {
	switch size {
	case 1, 2, 4:
		return size
	default:
		return 8
	}
}

// DateOf returns the date part of t
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// TimeOf returns the time-of-day part of t
func TimeOf(t time.Time) Time {
	return Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Fraction: t.Nanosecond()}
}

// TimestampOf returns t as a Timestamp value in t's location
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Date: DateOf(t), Time: TimeOf(t)}
}

// Years outside MinYear..MaxYear have no four-digit ISO text form.
const (
	MinYear = 1
	MaxYear = 9999
)

// Valid reports whether the date names a real calendar day between
// 0001-01-01 and 9999-12-31
func (d Date) Valid() bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Year < MinYear || d.Year > MaxYear {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Day() == d.Day && int(t.Month()) == d.Month
}

// Valid reports whether every field is within its range
func (t Time) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60 &&
		t.Second >= 0 && t.Second < 60 && t.Fraction >= 0 && t.Fraction < 1e9
}

// Valid reports whether both the date and the time of day are valid
func (ts Timestamp) Valid() bool {
	return ts.Date.Valid() && ts.Time.Valid()
}

// GoTime converts the timestamp to a time.Time in UTC
func (ts Timestamp) GoTime() time.Time {
	return time.Date(ts.Year, time.Month(ts.Month), ts.Day,
		ts.Hour, ts.Minute, ts.Second, ts.Fraction, time.UTC)
}

// NewDecimal validates precision (1..38) and scale (0..precision) and
// returns v rounded to the declared scale.
func NewDecimal(v decimal.Decimal, precision, scale int) (Decimal, error) {
	if precision < 1 || precision > 38 {
		return Decimal{}, fmt.Errorf("%w: precision %d not in 1..38", ErrOutOfRange, precision)
	}
	if scale < 0 || scale > precision {
		return Decimal{}, fmt.Errorf("%w: scale %d not in 0..%d", ErrOutOfRange, scale, precision)
	}
	v = v.Round(int32(scale))
	unscaled := v.Shift(int32(scale)).BigInt()
	if len(unscaled.Abs(unscaled).String()) > precision {
		return Decimal{}, fmt.Errorf("%w: %s exceeds precision %d", ErrOutOfRange, v.StringFixed(int32(scale)), precision)
	}
	return Decimal{V: v, Precision: precision, Scale: scale}, nil
}

// ParseDecimal parses s and derives precision and scale from its digits,
// so "1234.567890" yields precision 10, scale 6.
func ParseDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q is not a decimal: %v", ErrMalformed, s, err)
	}
	return decimalOf(d)
}

// decimalOf derives precision and scale from d. Values with more than 38
// significant digits are rounded to the largest scale that fits; only an
// integer part beyond 38 digits is out of range.
func decimalOf(d decimal.Decimal) (Decimal, error) {
	precision, scale := decimalDigits(d)
	for precision > maxNumericPrecision {
		intDigits := precision - scale
		if intDigits > maxNumericPrecision || scale == 0 {
			return Decimal{}, fmt.Errorf("%w: %s has more than %d integer digits", ErrOutOfRange, d.String(), maxNumericPrecision)
		}
		d = d.Round(int32(max(maxNumericPrecision-intDigits, 0)))
		precision, scale = decimalDigits(d)
	}
	return Decimal{V: d, Precision: precision, Scale: scale}, nil
}

const maxNumericPrecision = 38

func decimalDigits(d decimal.Decimal) (precision, scale int) {
	if exp := d.Exponent(); exp < 0 {
		scale = int(-exp)
	}
	digits := len(d.Coefficient().String())
	if d.Coefficient().Sign() < 0 {
		digits--
	}
	if exp := d.Exponent(); exp > 0 {
		digits += int(exp)
	}
	return max(digits, scale, 1), scale
}

// ValueOf converts a native Go value into a Value. Unrecognised types are
// rendered with %v as variable text.
func ValueOf(value any) (Value, error) {
	if value == nil {
		return Null{}, nil
	}

	switch v := value.(type) {
	case Value:
		return v, nil

	case bool:
		return Bool(v), nil

	case int:
		return Int{V: int64(v), Size: 8}, nil

	case int8:
		return Int{V: int64(v), Size: 1}, nil

	case int16:
		return Int{V: int64(v), Size: 2}, nil

	case int32:
		return Int{V: int64(v), Size: 4}, nil

	case int64:
		return Int{V: v, Size: 8}, nil

	case uint:
		return Uint{V: uint64(v), Size: 8}, nil

	case uint8:
		return Uint{V: uint64(v), Size: 1}, nil

	case uint16:
		return Uint{V: uint64(v), Size: 2}, nil

	case uint32:
		return Uint{V: uint64(v), Size: 4}, nil

	case uint64:
		return Uint{V: v, Size: 8}, nil

	case float32:
		return Float32(v), nil

	case float64:
		return Float64(v), nil

	case string:
		return Text{S: v}, nil

	case WideString:
		return Text{S: string(v), National: true}, nil

	case []byte:
		return Binary(append([]byte(nil), v...)), nil

	case time.Time:
		return TimestampOf(v), nil

	case decimal.Decimal:
		return decimalOf(v)

	case uuid.UUID:
		return GUID(v), nil

	case IntervalYearMonth:
		return Interval{
			Type:     SQL_INTERVAL_YEAR_TO_MONTH,
			Negative: v.Negative,
			Year:     uint32(abs(v.Years)),
			Month:    uint32(abs(v.Months)),
		}, nil

	case IntervalDaySecond:
		return Interval{
			Type:     SQL_INTERVAL_DAY_TO_SECOND,
			Negative: v.Negative,
			Day:      uint32(abs(v.Days)),
			Hour:     uint32(abs(v.Hours)),
			Minute:   uint32(abs(v.Minutes)),
			Second:   uint32(abs(v.Seconds)),
			Fraction: uint32(abs(v.Nanoseconds)),
		}, nil

	case time.Duration:
		return durationInterval(v), nil

	default:
		return Text{S: fmt.Sprintf("%v", v)}, nil
	}
}

func durationInterval(d time.Duration) Interval {
	iv := Interval{Type: SQL_INTERVAL_DAY_TO_SECOND, Negative: d < 0}
	n := uint64(d)
	if d < 0 {
		n = uint64(-d)
	}
	const day = uint64(24 * time.Hour)
	iv.Day = uint32(n / day)
	n %= day
	iv.Hour = uint32(n / uint64(time.Hour))
	n %= uint64(time.Hour)
	iv.Minute = uint32(n / uint64(time.Minute))
	n %= uint64(time.Minute)
	iv.Second = uint32(n / uint64(time.Second))
	iv.Fraction = uint32(n % uint64(time.Second))
	return iv
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
