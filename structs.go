package odbc

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Packed sizes of the fixed-layout C structs. Every struct below is written
// field by field in little-endian order; the host compiler's struct layout is
// never consulted.
const (
	DateStructSize      = 6
	TimeStructSize      = 6
	TimestampStructSize = 16
	NumericStructSize   = 3 + SQL_MAX_NUMERIC_LEN
	GUIDStructSize      = 16
	IntervalStructSize  = 28

	SQL_MAX_NUMERIC_LEN = 16
)

var le = binary.LittleEndian

func shortStruct(name string, want, got int) error {
	return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrBufferTooSmall, name, want, got)
}

// SQL_DATE_STRUCT layout: year int16 | month uint16 | day uint16
type SQL_DATE_STRUCT struct {
	Year  SQLSMALLINT
	Month SQLUSMALLINT
	Day   SQLUSMALLINT
}

// Put writes the packed struct into b[:DateStructSize].
func (d SQL_DATE_STRUCT) Put(b []byte) {
	le.PutUint16(b[0:], uint16(d.Year))
	le.PutUint16(b[2:], uint16(d.Month))
	le.PutUint16(b[4:], uint16(d.Day))
}

// Time converts the date to midnight UTC
func (d SQL_DATE_STRUCT) Time() time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC)
}

// DecodeDate reads a packed SQL_DATE_STRUCT
func DecodeDate(b []byte) (SQL_DATE_STRUCT, error) {
	if len(b) < DateStructSize {
		return SQL_DATE_STRUCT{}, shortStruct("SQL_DATE_STRUCT", DateStructSize, len(b))
	}
	return SQL_DATE_STRUCT{
		Year:  SQLSMALLINT(le.Uint16(b[0:])),
		Month: SQLUSMALLINT(le.Uint16(b[2:])),
		Day:   SQLUSMALLINT(le.Uint16(b[4:])),
	}, nil
}

// SQL_TIME_STRUCT layout: hour | minute | second, each uint16
type SQL_TIME_STRUCT struct {
	Hour   SQLUSMALLINT
	Minute SQLUSMALLINT
	Second SQLUSMALLINT
}

// Put writes the packed struct into b[:TimeStructSize].
func (t SQL_TIME_STRUCT) Put(b []byte) {
	le.PutUint16(b[0:], uint16(t.Hour))
	le.PutUint16(b[2:], uint16(t.Minute))
	le.PutUint16(b[4:], uint16(t.Second))
}

// Time converts the time of day to a time.Time on 0000-01-01 UTC
func (t SQL_TIME_STRUCT) Time() time.Time {
	return time.Date(0, 1, 1, int(t.Hour), int(t.Minute), int(t.Second), 0, time.UTC)
}

// DecodeTime reads a packed SQL_TIME_STRUCT
func DecodeTime(b []byte) (SQL_TIME_STRUCT, error) {
	if len(b) < TimeStructSize {
		return SQL_TIME_STRUCT{}, shortStruct("SQL_TIME_STRUCT", TimeStructSize, len(b))
	}
	return SQL_TIME_STRUCT{
		Hour:   SQLUSMALLINT(le.Uint16(b[0:])),
		Minute: SQLUSMALLINT(le.Uint16(b[2:])),
		Second: SQLUSMALLINT(le.Uint16(b[4:])),
	}, nil
}

// SQL_TIMESTAMP_STRUCT layout: date fields | time fields | fraction uint32
type SQL_TIMESTAMP_STRUCT struct {
	Year     SQLSMALLINT
	Month    SQLUSMALLINT
	Day      SQLUSMALLINT
	Hour     SQLUSMALLINT
	Minute   SQLUSMALLINT
	Second   SQLUSMALLINT
	Fraction SQLUINTEGER // billionths of a second
}

// Put writes the packed struct into b[:TimestampStructSize].
func (ts SQL_TIMESTAMP_STRUCT) Put(b []byte) {
	SQL_DATE_STRUCT{Year: ts.Year, Month: ts.Month, Day: ts.Day}.Put(b[0:])
	SQL_TIME_STRUCT{Hour: ts.Hour, Minute: ts.Minute, Second: ts.Second}.Put(b[6:])
	le.PutUint32(b[12:], uint32(ts.Fraction))
}

// Time converts the timestamp to a time.Time in loc (UTC when nil)
func (ts SQL_TIMESTAMP_STRUCT) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	// Fraction is in billionths of a second, i.e. nanoseconds
	return time.Date(int(ts.Year), time.Month(ts.Month), int(ts.Day),
		int(ts.Hour), int(ts.Minute), int(ts.Second), int(ts.Fraction), loc)
}

// DecodeTimestamp reads a packed SQL_TIMESTAMP_STRUCT
func DecodeTimestamp(b []byte) (SQL_TIMESTAMP_STRUCT, error) {
	if len(b) < TimestampStructSize {
		return SQL_TIMESTAMP_STRUCT{}, shortStruct("SQL_TIMESTAMP_STRUCT", TimestampStructSize, len(b))
	}
	d, _ := DecodeDate(b[0:])
	t, _ := DecodeTime(b[6:])
	return SQL_TIMESTAMP_STRUCT{
		Year: d.Year, Month: d.Month, Day: d.Day,
		Hour: t.Hour, Minute: t.Minute, Second: t.Second,
		Fraction: SQLUINTEGER(le.Uint32(b[12:])),
	}, nil
}

// SQL_NUMERIC_STRUCT layout: precision uint8 | scale int8 | sign uint8 |
// val [16]uint8 holding the unscaled magnitude, least significant byte first.
type SQL_NUMERIC_STRUCT struct {
	Precision SQLCHAR
	Scale     SQLSCHAR
	Sign      SQLCHAR // 1 = positive, 0 = negative
	Val       [SQL_MAX_NUMERIC_LEN]byte
}

// Put writes the packed struct into b[:NumericStructSize].
func (n SQL_NUMERIC_STRUCT) Put(b []byte) {
	b[0] = byte(n.Precision)
	b[1] = byte(n.Scale)
	b[2] = byte(n.Sign)
	copy(b[3:NumericStructSize], n.Val[:])
}

// Decimal returns the exact value held by the struct
func (n SQL_NUMERIC_STRUCT) Decimal() decimal.Decimal {
	be := make([]byte, SQL_MAX_NUMERIC_LEN)
	for i, v := range n.Val {
		be[SQL_MAX_NUMERIC_LEN-1-i] = v
	}
	mag := new(big.Int).SetBytes(be)
	if n.Sign == 0 {
		mag.Neg(mag)
	}
	return decimal.NewFromBigInt(mag, -int32(n.Scale))
}

// DecodeNumeric reads a packed SQL_NUMERIC_STRUCT
func DecodeNumeric(b []byte) (SQL_NUMERIC_STRUCT, error) {
	if len(b) < NumericStructSize {
		return SQL_NUMERIC_STRUCT{}, shortStruct("SQL_NUMERIC_STRUCT", NumericStructSize, len(b))
	}
	n := SQL_NUMERIC_STRUCT{
		Precision: SQLCHAR(b[0]),
		Scale:     SQLSCHAR(int8(b[1])),
		Sign:      SQLCHAR(b[2]),
	}
	copy(n.Val[:], b[3:NumericStructSize])
	return n, nil
}

// numericFromDecimal builds the struct for d at the given scale, rounding
// half away from zero. A precision of 0 is replaced by the digit count of
// the unscaled value.
func numericFromDecimal(d decimal.Decimal, precision, scale int) (SQL_NUMERIC_STRUCT, error) {
	if scale < -128 || scale > 127 {
		return SQL_NUMERIC_STRUCT{}, fmt.Errorf("%w: numeric scale %d", ErrOutOfRange, scale)
	}
	unscaled := d.Round(int32(scale)).Shift(int32(scale)).BigInt()

	n := SQL_NUMERIC_STRUCT{Scale: SQLSCHAR(scale), Sign: 1}
	if unscaled.Sign() < 0 {
		n.Sign = 0
		unscaled.Neg(unscaled)
	}
	be := unscaled.Bytes()
	if len(be) > SQL_MAX_NUMERIC_LEN {
		return SQL_NUMERIC_STRUCT{}, fmt.Errorf("%w: %s does not fit a %d-byte numeric", ErrOutOfRange, d.String(), SQL_MAX_NUMERIC_LEN)
	}
	for i, v := range be {
		n.Val[len(be)-1-i] = v
	}
	if precision <= 0 {
		precision = len(unscaled.String())
	}
	if precision > 255 {
		precision = 255
	}
	n.Precision = SQLCHAR(precision)
	return n, nil
}

// Interval type codes stored in SQL_INTERVAL_STRUCT (the SQLINTERVAL enum)
const (
	SQL_IS_YEAR             SQLINTEGER = 1
	SQL_IS_MONTH            SQLINTEGER = 2
	SQL_IS_DAY              SQLINTEGER = 3
	SQL_IS_HOUR             SQLINTEGER = 4
	SQL_IS_MINUTE           SQLINTEGER = 5
	SQL_IS_SECOND           SQLINTEGER = 6
	SQL_IS_YEAR_TO_MONTH    SQLINTEGER = 7
	SQL_IS_DAY_TO_HOUR      SQLINTEGER = 8
	SQL_IS_DAY_TO_MINUTE    SQLINTEGER = 9
	SQL_IS_DAY_TO_SECOND    SQLINTEGER = 10
	SQL_IS_HOUR_TO_MINUTE   SQLINTEGER = 11
	SQL_IS_HOUR_TO_SECOND   SQLINTEGER = 12
	SQL_IS_MINUTE_TO_SECOND SQLINTEGER = 13
)

// SQL_YEAR_MONTH_STRUCT for year-month intervals
type SQL_YEAR_MONTH_STRUCT struct {
	Year  SQLUINTEGER
	Month SQLUINTEGER
}

// SQL_DAY_SECOND_STRUCT for day-time intervals
type SQL_DAY_SECOND_STRUCT struct {
	Day      SQLUINTEGER
	Hour     SQLUINTEGER
	Minute   SQLUINTEGER
	Second   SQLUINTEGER
	Fraction SQLUINTEGER // billionths of a second
}

// SQL_INTERVAL_STRUCT layout:
//
//	offset 0  interval type  uint32 (SQL_IS_*)
//	offset 4  interval sign  int16  (1 = negative)
//	offset 6  reserved       2 zero bytes
//	offset 8  year, month                          (year-month subtypes)
//	          day, hour, minute, second, fraction  (day-time subtypes)
//
// Unused payload bytes are zero.
type SQL_INTERVAL_STRUCT struct {
	IntervalType SQLINTEGER
	IntervalSign SQLSMALLINT
	YearMonth    SQL_YEAR_MONTH_STRUCT
	DaySecond    SQL_DAY_SECOND_STRUCT
}

func (iv SQL_INTERVAL_STRUCT) yearMonth() bool {
	return iv.IntervalType == SQL_IS_YEAR || iv.IntervalType == SQL_IS_MONTH ||
		iv.IntervalType == SQL_IS_YEAR_TO_MONTH
}

// Put writes the packed struct into b[:IntervalStructSize].
func (iv SQL_INTERVAL_STRUCT) Put(b []byte) {
	clear(b[:IntervalStructSize])
	le.PutUint32(b[0:], uint32(iv.IntervalType))
	le.PutUint16(b[4:], uint16(iv.IntervalSign))
	if iv.yearMonth() {
		le.PutUint32(b[8:], uint32(iv.YearMonth.Year))
		le.PutUint32(b[12:], uint32(iv.YearMonth.Month))
		return
	}
	le.PutUint32(b[8:], uint32(iv.DaySecond.Day))
	le.PutUint32(b[12:], uint32(iv.DaySecond.Hour))
	le.PutUint32(b[16:], uint32(iv.DaySecond.Minute))
	le.PutUint32(b[20:], uint32(iv.DaySecond.Second))
	le.PutUint32(b[24:], uint32(iv.DaySecond.Fraction))
}

// DecodeInterval reads a packed SQL_INTERVAL_STRUCT
func DecodeInterval(b []byte) (SQL_INTERVAL_STRUCT, error) {
	if len(b) < IntervalStructSize {
		return SQL_INTERVAL_STRUCT{}, shortStruct("SQL_INTERVAL_STRUCT", IntervalStructSize, len(b))
	}
	iv := SQL_INTERVAL_STRUCT{
		IntervalType: SQLINTEGER(le.Uint32(b[0:])),
		IntervalSign: SQLSMALLINT(le.Uint16(b[4:])),
	}
	if iv.yearMonth() {
		iv.YearMonth = SQL_YEAR_MONTH_STRUCT{
			Year:  SQLUINTEGER(le.Uint32(b[8:])),
			Month: SQLUINTEGER(le.Uint32(b[12:])),
		}
		return iv, nil
	}
	iv.DaySecond = SQL_DAY_SECOND_STRUCT{
		Day:      SQLUINTEGER(le.Uint32(b[8:])),
		Hour:     SQLUINTEGER(le.Uint32(b[12:])),
		Minute:   SQLUINTEGER(le.Uint32(b[16:])),
		Second:   SQLUINTEGER(le.Uint32(b[20:])),
		Fraction: SQLUINTEGER(le.Uint32(b[24:])),
	}
	return iv, nil
}

// Interval converts the struct back into an Interval value
func (iv SQL_INTERVAL_STRUCT) Interval() Interval {
	return Interval{
		Type:     SQLSMALLINT(iv.IntervalType) + 100,
		Negative: iv.IntervalSign == 1,
		Year:     uint32(iv.YearMonth.Year),
		Month:    uint32(iv.YearMonth.Month),
		Day:      uint32(iv.DaySecond.Day),
		Hour:     uint32(iv.DaySecond.Hour),
		Minute:   uint32(iv.DaySecond.Minute),
		Second:   uint32(iv.DaySecond.Second),
		Fraction: uint32(iv.DaySecond.Fraction),
	}
}

func intervalStruct(iv Interval) SQL_INTERVAL_STRUCT {
	s := SQL_INTERVAL_STRUCT{IntervalType: SQLINTEGER(iv.Type - 100)}
	if iv.Negative {
		s.IntervalSign = 1
	}
	s.YearMonth = SQL_YEAR_MONTH_STRUCT{Year: SQLUINTEGER(iv.Year), Month: SQLUINTEGER(iv.Month)}
	s.DaySecond = SQL_DAY_SECOND_STRUCT{
		Day:      SQLUINTEGER(iv.Day),
		Hour:     SQLUINTEGER(iv.Hour),
		Minute:   SQLUINTEGER(iv.Minute),
		Second:   SQLUINTEGER(iv.Second),
		Fraction: SQLUINTEGER(iv.Fraction),
	}
	return s
}

// SQL_GUID_STRUCT layout: Data1 uint32 | Data2 uint16 | Data3 uint16 | Data4 [8]byte
type SQL_GUID_STRUCT struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// Put writes the packed struct into b[:GUIDStructSize].
func (g SQL_GUID_STRUCT) Put(b []byte) {
	le.PutUint32(b[0:], g.Data1)
	le.PutUint16(b[4:], g.Data2)
	le.PutUint16(b[6:], g.Data3)
	copy(b[8:16], g.Data4[:])
}

// UUID returns the GUID in RFC 4122 byte order
func (g SQL_GUID_STRUCT) UUID() uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:], g.Data1)
	binary.BigEndian.PutUint16(u[4:], g.Data2)
	binary.BigEndian.PutUint16(u[6:], g.Data3)
	copy(u[8:], g.Data4[:])
	return u
}

// String returns the GUID as a formatted string (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx)
func (g SQL_GUID_STRUCT) String() string {
	return formatGUID(g.UUID())
}

func guidStruct(u uuid.UUID) SQL_GUID_STRUCT {
	g := SQL_GUID_STRUCT{
		Data1: binary.BigEndian.Uint32(u[0:]),
		Data2: binary.BigEndian.Uint16(u[4:]),
		Data3: binary.BigEndian.Uint16(u[6:]),
	}
	copy(g.Data4[:], u[8:])
	return g
}

// DecodeGUID reads a packed SQL_GUID_STRUCT
func DecodeGUID(b []byte) (SQL_GUID_STRUCT, error) {
	if len(b) < GUIDStructSize {
		return SQL_GUID_STRUCT{}, shortStruct("SQL_GUID_STRUCT", GUIDStructSize, len(b))
	}
	g := SQL_GUID_STRUCT{
		Data1: le.Uint32(b[0:]),
		Data2: le.Uint16(b[4:]),
		Data3: le.Uint16(b[6:]),
	}
	copy(g.Data4[:], b[8:16])
	return g, nil
}
