package odbc

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// renderText formats a non-null value the way it appears in a CHAR or
// WCHAR target buffer.
func renderText(v Value, precision TimestampPrecision) (string, error) {
	switch v := v.(type) {
	case Bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case Int:
		return strconv.FormatInt(v.V, 10), nil
	case Uint:
		return strconv.FormatUint(v.V, 10), nil
	case Float32:
		return formatFloat(float64(v), 32), nil
	case Float64:
		return formatFloat(float64(v), 64), nil
	case Decimal:
		return v.V.StringFixed(int32(v.Scale)), nil
	case Text:
		return v.S, nil
	case Binary:
		return strings.ToUpper(hex.EncodeToString(v)), nil
	case Date:
		d, err := dateValue(v)
		if err != nil {
			return "", err
		}
		return formatDate(d), nil
	case Time:
		tm, err := timeValue(v)
		if err != nil {
			return "", err
		}
		return formatTime(tm, precision), nil
	case Timestamp:
		ts, err := timestampValue(v)
		if err != nil {
			return "", err
		}
		return formatDate(ts.Date) + " " + formatTime(ts.Time, precision), nil
	case Interval:
		return formatInterval(v)
	case GUID:
		return formatGUID(uuid.UUID(v)), nil
	default:
		return "", fmt.Errorf("%w: %s has no text form", ErrIncompatible, v.Kind())
	}
}

// formatFloat renders the shortest decimal form that round-trips at the
// given bit size. Special values are spelled nan, inf and -inf.
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

func formatDate(d Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func formatTime(t Time, precision TimestampPrecision) string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second) + formatFraction(t.Fraction, precision)
}

// formatFraction renders nanos as ".ddd" with the requested number of
// digits (truncated), or with trailing zeros trimmed for Auto. A zero
// fraction renders as nothing in Auto mode.
func formatFraction(nanos int, precision TimestampPrecision) string {
	digits := fmt.Sprintf("%09d", nanos)
	switch {
	case precision == TimestampPrecisionAuto:
		digits = strings.TrimRight(digits, "0")
		if digits == "" {
			return ""
		}
		return "." + digits
	case precision <= 0:
		return ""
	case precision > 9:
		precision = 9
	}
	return "." + digits[:precision]
}

// formatGUID renders the canonical 8-4-4-4-12 form in upper case
func formatGUID(u uuid.UUID) string {
	return strings.ToUpper(u.String())
}

// formatInterval renders the SQL interval literal body, e.g. "5-03" for
// YEAR TO MONTH or "-3 04:05:06.5" for DAY TO SECOND.
func formatInterval(iv Interval) (string, error) {
	var s string
	sec := func() string {
		return fmt.Sprintf("%02d", iv.Second) + formatFraction(int(iv.Fraction), TimestampPrecisionAuto)
	}
	switch iv.Type {
	case SQL_INTERVAL_YEAR:
		s = strconv.FormatUint(uint64(iv.Year), 10)
	case SQL_INTERVAL_MONTH:
		s = strconv.FormatUint(uint64(iv.Month), 10)
	case SQL_INTERVAL_DAY:
		s = strconv.FormatUint(uint64(iv.Day), 10)
	case SQL_INTERVAL_HOUR:
		s = strconv.FormatUint(uint64(iv.Hour), 10)
	case SQL_INTERVAL_MINUTE:
		s = strconv.FormatUint(uint64(iv.Minute), 10)
	case SQL_INTERVAL_SECOND:
		s = strconv.FormatUint(uint64(iv.Second), 10) + formatFraction(int(iv.Fraction), TimestampPrecisionAuto)
	case SQL_INTERVAL_YEAR_TO_MONTH:
		s = fmt.Sprintf("%d-%02d", iv.Year, iv.Month)
	case SQL_INTERVAL_DAY_TO_HOUR:
		s = fmt.Sprintf("%d %02d", iv.Day, iv.Hour)
	case SQL_INTERVAL_DAY_TO_MINUTE:
		s = fmt.Sprintf("%d %02d:%02d", iv.Day, iv.Hour, iv.Minute)
	case SQL_INTERVAL_DAY_TO_SECOND:
		s = fmt.Sprintf("%d %02d:%02d:", iv.Day, iv.Hour, iv.Minute) + sec()
	case SQL_INTERVAL_HOUR_TO_MINUTE:
		s = fmt.Sprintf("%d:%02d", iv.Hour, iv.Minute)
	case SQL_INTERVAL_HOUR_TO_SECOND:
		s = fmt.Sprintf("%d:%02d:", iv.Hour, iv.Minute) + sec()
	case SQL_INTERVAL_MINUTE_TO_SECOND:
		s = fmt.Sprintf("%d:", iv.Minute) + sec()
	default:
		return "", fmt.Errorf("%w: interval type %d", ErrMalformed, iv.Type)
	}
	if iv.Negative {
		s = "-" + s
	}
	return s, nil
}
