package odbc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParseValue parses text into a value of the given SQL type. It accepts
// the narrow-text rendering the converter produces, so rendering a value
// as SQL_C_CHAR and parsing it back yields the same value for integers,
// decimals and ISO dates, times and timestamps.
func ParseValue(sqlType SQLSMALLINT, text string) (Value, error) {
	s := strings.TrimSpace(text)
	switch sqlType {
	case SQL_BIT, SQL_BOOLEAN:
		switch strings.ToLower(s) {
		case "true", "1":
			return Bool(true), nil
		case "false", "0":
			return Bool(false), nil
		}
		return nil, fmt.Errorf("%w: %q is not a boolean", ErrMalformed, text)

	case SQL_TINYINT:
		return parseInt(s, 1)
	case SQL_SMALLINT:
		return parseInt(s, 2)
	case SQL_INTEGER:
		return parseInt(s, 4)
	case SQL_BIGINT:
		return parseInt(s, 8)

	case SQL_REAL:
		f, err := parseFloatText(s, 32)
		if err != nil {
			return nil, err
		}
		return Float32(f), nil
	case SQL_FLOAT, SQL_DOUBLE:
		f, err := parseFloatText(s, 64)
		if err != nil {
			return nil, err
		}
		return Float64(f), nil

	case SQL_DECIMAL, SQL_NUMERIC:
		return ParseDecimal(s)

	case SQL_CHAR:
		return Text{S: text, Fixed: true}, nil
	case SQL_VARCHAR, SQL_LONGVARCHAR:
		return Text{S: text}, nil
	case SQL_WCHAR:
		return Text{S: text, Fixed: true, National: true}, nil
	case SQL_WVARCHAR, SQL_WLONGVARCHAR:
		return Text{S: text, National: true}, nil

	case SQL_BINARY, SQL_VARBINARY, SQL_LONGVARBINARY:
		b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not hex: %v", ErrMalformed, text, err)
		}
		return Binary(b), nil

	case SQL_TYPE_DATE:
		ts, err := parseDateTimeText(s, SQL_TYPE_DATE)
		if err != nil {
			return nil, err
		}
		return ts.Date, nil
	case SQL_TYPE_TIME:
		ts, err := parseDateTimeText(s, SQL_TYPE_TIME)
		if err != nil {
			return nil, err
		}
		return ts.Time, nil
	case SQL_TYPE_TIMESTAMP, SQL_DATETIME:
		ts, err := parseDateTimeText(s, SQL_TYPE_TIMESTAMP)
		if err != nil {
			return nil, err
		}
		return ts, nil

	case SQL_GUID:
		u, err := parseGUIDText(s)
		if err != nil {
			return nil, err
		}
		return GUID(u), nil
	}

	if _, ok := intervalFields[sqlType]; ok {
		iv, err := parseIntervalText(s, sqlType)
		if err != nil {
			return nil, err
		}
		return iv, nil
	}
	return nil, fmt.Errorf("%w: no text form for %s", ErrIncompatible, SQLTypeName(sqlType))
}

func parseInt(s string, size int) (Value, error) {
	n, err := strconv.ParseInt(s, 10, size*8)
	if err != nil {
		return nil, numError(s, err)
	}
	return Int{V: n, Size: size}, nil
}

func numError(s string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return fmt.Errorf("%w: %q is not a number", ErrMalformed, s)
}

// parseDecimalText parses a decimal number; surrounding spaces are ignored
func parseDecimalText(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrMalformed, s)
	}
	return d, nil
}

// parseFloatText parses a float at bitSize. NaN, Inf and Infinity are
// accepted in any case, with an optional sign.
func parseFloatText(s string, bitSize int) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, bitSize)
	if err != nil {
		return 0, numError(s, err)
	}
	return f, nil
}

var (
	dateLayouts      = []string{"2006-01-02"}
	timeLayouts      = []string{"15:04:05"}
	timestampLayouts = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05"}
)

// parseDateTimeText parses ISO text for a date, time or timestamp target.
// Date and time targets also accept a full timestamp and keep their part
// of it; a timestamp target accepts a bare date.
func parseDateTimeText(s string, want SQLSMALLINT) (Timestamp, error) {
	s = strings.TrimSpace(s)
	var layouts []string
	switch want {
	case SQL_TYPE_DATE:
		layouts = append(append([]string(nil), dateLayouts...), timestampLayouts...)
	case SQL_TYPE_TIME:
		layouts = append(append([]string(nil), timeLayouts...), timestampLayouts...)
	default:
		layouts = append(append([]string(nil), timestampLayouts...), dateLayouts...)
	}
	for _, layout := range layouts {
		// fractional seconds after the seconds field are accepted by time.Parse
		t, err := time.Parse(layout, s)
		if err == nil {
			return TimestampOf(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: %q is not a valid %s literal", ErrMalformed, s, SQLTypeName(want))
}

// parseGUIDText accepts only the 36-character 8-4-4-4-12 hex form
func parseGUIDText(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if len(s) != 36 {
		return uuid.Nil, fmt.Errorf("%w: %q is not an 8-4-4-4-12 GUID", ErrMalformed, s)
	}
	for i := 0; i < len(s); i++ {
		switch i {
		case 8, 13, 18, 23:
			if s[i] != '-' {
				return uuid.Nil, fmt.Errorf("%w: %q is not an 8-4-4-4-12 GUID", ErrMalformed, s)
			}
		default:
			if !isHex(s[i]) {
				return uuid.Nil, fmt.Errorf("%w: %q is not an 8-4-4-4-12 GUID", ErrMalformed, s)
			}
		}
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return u, nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
