package odbc

import (
	"errors"
	"fmt"
)

// Error represents an ODBC diagnostic record. It implements the error
// interface and provides SQLState, native error code, a human-readable
// message and, when the diagnostic was produced by a conversion, the
// sentinel cause.
type Error struct {
	SQLState    string
	NativeError int32
	Message     string
	Cause       error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s (native error: %d)", e.SQLState, e.Message, e.NativeError)
}

// Unwrap returns the conversion cause, if any.
// This method supports Go 1.13+ error handling with errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's SQLState.
// This allows using errors.Is to check for specific ODBC errors.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.SQLState == t.SQLState
	}
	return false
}

// Conversion failure causes. A failed Outcome's Diag unwraps to one of these.
var (
	// ErrIncompatible: the source kind cannot be converted to the target type.
	ErrIncompatible = errors.New("incompatible source and target types")
	// ErrMalformed: text or binary content could not be parsed into the target.
	ErrMalformed = errors.New("malformed source data")
	// ErrOutOfRange: the value has no representation in the target.
	ErrOutOfRange = errors.New("value out of range")
	// ErrBufferTooSmall: capacity is negative, exceeds the buffer, or is
	// smaller than a fixed-width target.
	ErrBufferTooSmall = errors.New("invalid buffer length")
	// ErrUnknownType: the C type code is not in the catalog.
	ErrUnknownType = errors.New("unknown C data type")
)

// SQLState constants reported by conversions.
// These follow the ODBC specification and can be used with errors.Is.
const (
	// Warning states (01xxx)
	SQLStateDataTruncation = "01004" // Data truncated

	// No data (02xxx)
	SQLStateNoData = "02000" // No data found

	// General errors (HYxxx)
	SQLStateGeneralError        = "HY000" // General error
	SQLStateProgramTypeRange    = "HY003" // Program type out of range
	SQLStateInvalidStringLength = "HY090" // Invalid string or buffer length
)

// Sentinel diagnostics for errors.Is matching by SQLState
var (
	ErrDataTruncated = &Error{SQLState: SQLStateDataTruncation}
	ErrGeneral       = &Error{SQLState: SQLStateGeneralError}
	ErrInvalidLength = &Error{SQLState: SQLStateInvalidStringLength}
)

func truncationDiag(full int) *Error {
	return &Error{
		SQLState: SQLStateDataTruncation,
		Message:  fmt.Sprintf("String data, right truncated (%d bytes available)", full),
	}
}

func fractionalDiag() *Error {
	return &Error{
		SQLState: SQLStateDataTruncation,
		Message:  "Fractional truncation",
	}
}

func noDataDiag() *Error {
	return &Error{
		SQLState: SQLStateNoData,
		Message:  "No data found",
	}
}

// failureDiag builds the diagnostic for a failed conversion. The SQLState
// follows the cause: HY090 for buffer preconditions, HY003 for unknown C
// types, HY000 otherwise.
func failureDiag(cause error, format string, args ...any) *Error {
	state := SQLStateGeneralError
	switch {
	case errors.Is(cause, ErrBufferTooSmall):
		state = SQLStateInvalidStringLength
	case errors.Is(cause, ErrUnknownType):
		state = SQLStateProgramTypeRange
	}
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg = msg + ": " + cause.Error()
	}
	return &Error{SQLState: state, Message: msg, Cause: cause}
}

// IsDataTruncation reports whether err indicates data truncation.
func IsDataTruncation(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.SQLState == SQLStateDataTruncation
	}
	return false
}

// FormatReturnCode returns a string representation of an ODBC return code
func FormatReturnCode(ret SQLRETURN) string {
	switch ret {
	case SQL_SUCCESS:
		return "SQL_SUCCESS"
	case SQL_SUCCESS_WITH_INFO:
		return "SQL_SUCCESS_WITH_INFO"
	case SQL_ERROR:
		return "SQL_ERROR"
	case SQL_INVALID_HANDLE:
		return "SQL_INVALID_HANDLE"
	case SQL_NO_DATA:
		return "SQL_NO_DATA"
	case SQL_NEED_DATA:
		return "SQL_NEED_DATA"
	case SQL_STILL_EXECUTING:
		return "SQL_STILL_EXECUTING"
	default:
		return fmt.Sprintf("SQLRETURN(%d)", ret)
	}
}
