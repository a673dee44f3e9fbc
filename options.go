package odbc

import (
	"time"

	"go.uber.org/zap"
)

// ConverterOption configures a Converter
type ConverterOption func(*Converter)

// WithLogger sets the logger that receives debug records for truncated and
// failed conversions.
func WithLogger(l *zap.Logger) ConverterOption {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimestampPrecision sets how many fractional-second digits times and
// timestamps carry when rendered as text.
// Default is TimestampPrecisionAuto (all significant digits).
func WithTimestampPrecision(p TimestampPrecision) ConverterOption {
	return func(c *Converter) {
		c.precision = p
	}
}

// WithTimezone sets the location time.Time arguments are moved into before
// Converter.ValueOf splits them into date and time fields.
// Default is to keep each time.Time in its own location.
func WithTimezone(tz *time.Location) ConverterOption {
	return func(c *Converter) {
		c.tz = tz
	}
}
