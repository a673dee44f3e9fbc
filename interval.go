package odbc

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type intervalField int

const (
	fieldYear intervalField = iota
	fieldMonth
	fieldDay
	fieldHour
	fieldMinute
	fieldSecond
)

// intervalFields gives the leading and trailing field of each subtype
var intervalFields = map[SQLSMALLINT][2]intervalField{
	SQL_INTERVAL_YEAR:             {fieldYear, fieldYear},
	SQL_INTERVAL_MONTH:            {fieldMonth, fieldMonth},
	SQL_INTERVAL_DAY:              {fieldDay, fieldDay},
	SQL_INTERVAL_HOUR:             {fieldHour, fieldHour},
	SQL_INTERVAL_MINUTE:           {fieldMinute, fieldMinute},
	SQL_INTERVAL_SECOND:           {fieldSecond, fieldSecond},
	SQL_INTERVAL_YEAR_TO_MONTH:    {fieldYear, fieldMonth},
	SQL_INTERVAL_DAY_TO_HOUR:      {fieldDay, fieldHour},
	SQL_INTERVAL_DAY_TO_MINUTE:    {fieldDay, fieldMinute},
	SQL_INTERVAL_DAY_TO_SECOND:    {fieldDay, fieldSecond},
	SQL_INTERVAL_HOUR_TO_MINUTE:   {fieldHour, fieldMinute},
	SQL_INTERVAL_HOUR_TO_SECOND:   {fieldHour, fieldSecond},
	SQL_INTERVAL_MINUTE_TO_SECOND: {fieldMinute, fieldSecond},
}

// size of each field in months (year-month class) or seconds (day-time class)
var fieldUnit = [...]uint64{
	fieldYear:   12,
	fieldMonth:  1,
	fieldDay:    86400,
	fieldHour:   3600,
	fieldMinute: 60,
	fieldSecond: 1,
}

func yearMonthField(f intervalField) bool {
	return f == fieldYear || f == fieldMonth
}

func (iv Interval) get(f intervalField) uint32 {
	switch f {
	case fieldYear:
		return iv.Year
	case fieldMonth:
		return iv.Month
	case fieldDay:
		return iv.Day
	case fieldHour:
		return iv.Hour
	case fieldMinute:
		return iv.Minute
	default:
		return iv.Second
	}
}

func (iv *Interval) set(f intervalField, n uint32) {
	switch f {
	case fieldYear:
		iv.Year = n
	case fieldMonth:
		iv.Month = n
	case fieldDay:
		iv.Day = n
	case fieldHour:
		iv.Hour = n
	case fieldMinute:
		iv.Minute = n
	default:
		iv.Second = n
	}
}

// IsYearMonth reports whether the interval belongs to the year-month class
func (iv Interval) IsYearMonth() bool {
	fields, ok := intervalFields[iv.Type]
	return ok && yearMonthField(fields[0])
}

// total returns the magnitude in the class unit (months or whole seconds)
func (iv Interval) total() uint64 {
	fields := intervalFields[iv.Type]
	var n uint64
	for f := fields[0]; f <= fields[1]; f++ {
		n += uint64(iv.get(f)) * fieldUnit[f]
	}
	return n
}

// renormalize re-expresses iv as target within the same class. The leading
// target field absorbs any overflow; fields below the trailing target field
// are dropped.
func renormalize(iv Interval, target SQLSMALLINT) (Interval, error) {
	from, ok := intervalFields[iv.Type]
	if !ok {
		return Interval{}, fmt.Errorf("%w: interval type %d", ErrMalformed, iv.Type)
	}
	to := intervalFields[target]
	if iv.IsYearMonth() != yearMonthField(to[0]) {
		return Interval{}, fmt.Errorf("%w: %s to %s", ErrIncompatible, SQLTypeName(iv.Type), SQLTypeName(target))
	}

	out := Interval{Type: target, Negative: iv.Negative}
	rem := iv.total()
	for f := to[0]; f <= to[1]; f++ {
		n := rem / fieldUnit[f]
		if n > math.MaxUint32 {
			return Interval{}, fmt.Errorf("%w: %s field overflows 32 bits", ErrOutOfRange, SQLTypeName(target))
		}
		out.set(f, uint32(n))
		rem -= n * fieldUnit[f]
	}
	if to[1] == fieldSecond && from[1] == fieldSecond {
		out.Fraction = iv.Fraction
	}
	return out, nil
}

// intervalScalar returns a single-field interval as a signed number in
// units of its field; seconds keep their fraction.
func intervalScalar(iv Interval) (decimal.Decimal, error) {
	fields, ok := intervalFields[iv.Type]
	if !ok || fields[0] != fields[1] {
		return decimal.Zero, fmt.Errorf("%w: %s has no single numeric value", ErrIncompatible, SQLTypeName(iv.Type))
	}
	d := decimal.NewFromInt(int64(iv.get(fields[0])))
	if fields[0] == fieldSecond && iv.Fraction != 0 {
		d = d.Add(decimal.New(int64(iv.Fraction), -9))
	}
	if iv.Negative {
		d = d.Neg()
	}
	return d, nil
}

// intervalValue converts a source into an interval of the target subtype
func intervalValue(v Value, target SQLSMALLINT) (Interval, error) {
	fields, ok := intervalFields[target]
	if !ok {
		return Interval{}, fmt.Errorf("%w: interval type %d", ErrUnknownType, target)
	}

	var d decimal.Decimal
	switch v := v.(type) {
	case Interval:
		return renormalize(v, target)
	case Text:
		return parseIntervalText(v.S, target)
	case Int:
		d = decimal.NewFromInt(v.V)
	case Uint:
		d = decimal.NewFromBigInt(new(big.Int).SetUint64(v.V), 0)
	case Decimal:
		d = v.V
	default:
		return Interval{}, fmt.Errorf("%w: %s to %s", ErrIncompatible, v.Kind(), SQLTypeName(target))
	}
	return intervalFromScalar(d, target, fields)
}

// intervalFromScalar builds a single-field interval from a number
func intervalFromScalar(d decimal.Decimal, target SQLSMALLINT, fields [2]intervalField) (Interval, error) {
	if fields[0] != fields[1] {
		return Interval{}, fmt.Errorf("%w: number to %s", ErrIncompatible, SQLTypeName(target))
	}
	iv := Interval{Type: target, Negative: d.IsNegative()}
	d = d.Abs()
	whole := d.Truncate(0)
	if whole.GreaterThan(decimal.NewFromInt(math.MaxUint32)) {
		return Interval{}, fmt.Errorf("%w: %s overflows an interval field", ErrOutOfRange, d.String())
	}
	iv.set(fields[0], uint32(whole.IntPart()))
	if fields[0] == fieldSecond {
		iv.Fraction = uint32(d.Sub(whole).Shift(9).IntPart())
	}
	return iv, nil
}

// parseIntervalText parses the literal body produced by formatInterval.
// The single-field subtypes, YEAR TO MONTH and DAY TO SECOND are accepted.
func parseIntervalText(s string, target SQLSMALLINT) (Interval, error) {
	s = strings.TrimSpace(s)
	iv := Interval{Type: target}
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		iv.Negative = true
		s = rest
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	bad := func() (Interval, error) {
		return Interval{}, fmt.Errorf("%w: %q is not an %s literal", ErrMalformed, s, SQLTypeName(target))
	}

	fields := intervalFields[target]
	switch target {
	case SQL_INTERVAL_YEAR, SQL_INTERVAL_MONTH, SQL_INTERVAL_DAY,
		SQL_INTERVAL_HOUR, SQL_INTERVAL_MINUTE:
		n, err := parseField(s, math.MaxUint32)
		if err != nil {
			return bad()
		}
		iv.set(fields[0], n)

	case SQL_INTERVAL_SECOND:
		sec, frac, err := parseSeconds(s, math.MaxUint32)
		if err != nil {
			return bad()
		}
		iv.Second, iv.Fraction = sec, frac

	case SQL_INTERVAL_YEAR_TO_MONTH:
		y, m, ok := strings.Cut(s, "-")
		if !ok {
			return bad()
		}
		year, err1 := parseField(y, math.MaxUint32)
		month, err2 := parseField(m, 11)
		if err1 != nil || err2 != nil {
			return bad()
		}
		iv.Year, iv.Month = year, month

	case SQL_INTERVAL_DAY_TO_SECOND:
		d, clock, ok := strings.Cut(s, " ")
		if !ok {
			return bad()
		}
		parts := strings.Split(strings.TrimSpace(clock), ":")
		if len(parts) != 3 {
			return bad()
		}
		day, err1 := parseField(d, math.MaxUint32)
		hour, err2 := parseField(parts[0], 23)
		minute, err3 := parseField(parts[1], 59)
		sec, frac, err4 := parseSeconds(parts[2], 59)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return bad()
		}
		iv.Day, iv.Hour, iv.Minute, iv.Second, iv.Fraction = day, hour, minute, sec, frac

	default:
		return Interval{}, fmt.Errorf("%w: text to %s", ErrIncompatible, SQLTypeName(target))
	}
	return iv, nil
}

func parseField(s string, limit uint64) (uint32, error) {
	if s == "" || strings.ContainsAny(s, "+-") {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n > limit {
		return 0, strconv.ErrRange
	}
	return uint32(n), nil
}

// parseSeconds parses "SS[.fffffffff]" into whole seconds and nanoseconds
func parseSeconds(s string, limit uint64) (uint32, uint32, error) {
	whole, frac, hasFrac := strings.Cut(s, ".")
	sec, err := parseField(whole, limit)
	if err != nil {
		return 0, 0, err
	}
	if !hasFrac {
		return sec, 0, nil
	}
	if frac == "" || len(frac) > 9 {
		return 0, 0, strconv.ErrSyntax
	}
	nanos, err := parseField(frac+strings.Repeat("0", 9-len(frac)), 999999999)
	if err != nil {
		return 0, 0, err
	}
	return sec, nanos, nil
}
