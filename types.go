package odbc

// ODBC Integer types
type SQLSMALLINT int16
type SQLUSMALLINT uint16
type SQLINTEGER int32
type SQLUINTEGER uint32
type SQLLEN int64   // 64-bit for portability across platforms
type SQLULEN uint64 // 64-bit for portability across platforms
type SQLRETURN SQLSMALLINT

// ODBC Character types
type SQLCHAR byte
type SQLSCHAR int8
type SQLWCHAR uint16 // UTF-16 code unit

// Return codes
const (
	SQL_SUCCESS           SQLRETURN = 0
	SQL_SUCCESS_WITH_INFO SQLRETURN = 1
	SQL_ERROR             SQLRETURN = -1
	SQL_INVALID_HANDLE    SQLRETURN = -2
	SQL_NO_DATA           SQLRETURN = 100
	SQL_NEED_DATA         SQLRETURN = 99
	SQL_STILL_EXECUTING   SQLRETURN = 2
)

// Null data indicators
const (
	SQL_NULL_DATA    SQLLEN = -1
	SQL_DATA_AT_EXEC SQLLEN = -2
	SQL_NO_TOTAL     SQLLEN = -4
)

// SQL data types
const (
	SQL_UNKNOWN_TYPE   SQLSMALLINT = 0
	SQL_CHAR           SQLSMALLINT = 1
	SQL_NUMERIC        SQLSMALLINT = 2
	SQL_DECIMAL        SQLSMALLINT = 3
	SQL_INTEGER        SQLSMALLINT = 4
	SQL_SMALLINT       SQLSMALLINT = 5
	SQL_FLOAT          SQLSMALLINT = 6
	SQL_REAL           SQLSMALLINT = 7
	SQL_DOUBLE         SQLSMALLINT = 8
	SQL_DATETIME       SQLSMALLINT = 9
	SQL_VARCHAR        SQLSMALLINT = 12
	SQL_TYPE_DATE      SQLSMALLINT = 91
	SQL_TYPE_TIME      SQLSMALLINT = 92
	SQL_TYPE_TIMESTAMP SQLSMALLINT = 93
	SQL_LONGVARCHAR    SQLSMALLINT = -1
	SQL_BINARY         SQLSMALLINT = -2
	SQL_VARBINARY      SQLSMALLINT = -3
	SQL_LONGVARBINARY  SQLSMALLINT = -4
	SQL_BIGINT         SQLSMALLINT = -5
	SQL_TINYINT        SQLSMALLINT = -6
	SQL_BIT            SQLSMALLINT = -7
	SQL_BOOLEAN        SQLSMALLINT = 16 // DB2 BOOLEAN type
	SQL_WCHAR          SQLSMALLINT = -8
	SQL_WVARCHAR       SQLSMALLINT = -9
	SQL_WLONGVARCHAR   SQLSMALLINT = -10
	SQL_GUID           SQLSMALLINT = -11
)

// SQL Interval type constants
const (
	SQL_INTERVAL_YEAR             SQLSMALLINT = 101
	SQL_INTERVAL_MONTH            SQLSMALLINT = 102
	SQL_INTERVAL_DAY              SQLSMALLINT = 103
	SQL_INTERVAL_HOUR             SQLSMALLINT = 104
	SQL_INTERVAL_MINUTE           SQLSMALLINT = 105
	SQL_INTERVAL_SECOND           SQLSMALLINT = 106
	SQL_INTERVAL_YEAR_TO_MONTH    SQLSMALLINT = 107
	SQL_INTERVAL_DAY_TO_HOUR      SQLSMALLINT = 108
	SQL_INTERVAL_DAY_TO_MINUTE    SQLSMALLINT = 109
	SQL_INTERVAL_DAY_TO_SECOND    SQLSMALLINT = 110
	SQL_INTERVAL_HOUR_TO_MINUTE   SQLSMALLINT = 111
	SQL_INTERVAL_HOUR_TO_SECOND   SQLSMALLINT = 112
	SQL_INTERVAL_MINUTE_TO_SECOND SQLSMALLINT = 113
)

// C data type identifiers for binding
const (
	SQL_SIGNED_OFFSET   SQLSMALLINT = -20
	SQL_UNSIGNED_OFFSET SQLSMALLINT = -22
)

const (
	SQL_C_CHAR        = SQL_CHAR
	SQL_C_LONG        = SQL_INTEGER
	SQL_C_SHORT       = SQL_SMALLINT
	SQL_C_FLOAT       = SQL_REAL
	SQL_C_DOUBLE      = SQL_DOUBLE
	SQL_C_NUMERIC     = SQL_NUMERIC
	SQL_C_DEFAULT     = 99
	SQL_C_DATE        = SQL_TYPE_DATE
	SQL_C_TIME        = SQL_TYPE_TIME
	SQL_C_TIMESTAMP   = SQL_TYPE_TIMESTAMP
	SQL_C_BINARY      = SQL_BINARY
	SQL_C_VARBOOKMARK = SQL_C_BINARY
	SQL_C_BIT         = SQL_BIT
	SQL_C_WCHAR       = SQL_WCHAR
	SQL_C_TINYINT     = SQL_TINYINT
	SQL_C_SBIGINT     = SQL_BIGINT + SQL_SIGNED_OFFSET    // -25
	SQL_C_UBIGINT     = SQL_BIGINT + SQL_UNSIGNED_OFFSET  // -27
	SQL_C_SLONG       = SQL_C_LONG + SQL_SIGNED_OFFSET    // -16
	SQL_C_SSHORT      = SQL_C_SHORT + SQL_SIGNED_OFFSET   // -15
	SQL_C_STINYINT    = SQL_TINYINT + SQL_SIGNED_OFFSET   // -26
	SQL_C_ULONG       = SQL_C_LONG + SQL_UNSIGNED_OFFSET  // -18
	SQL_C_USHORT      = SQL_C_SHORT + SQL_UNSIGNED_OFFSET // -17
	SQL_C_UTINYINT    = SQL_TINYINT + SQL_UNSIGNED_OFFSET // -28
	SQL_C_GUID        = SQL_GUID
)

// C Interval type identifiers (same as SQL types for intervals)
const (
	SQL_C_INTERVAL_YEAR             = SQL_INTERVAL_YEAR
	SQL_C_INTERVAL_MONTH            = SQL_INTERVAL_MONTH
	SQL_C_INTERVAL_DAY              = SQL_INTERVAL_DAY
	SQL_C_INTERVAL_HOUR             = SQL_INTERVAL_HOUR
	SQL_C_INTERVAL_MINUTE           = SQL_INTERVAL_MINUTE
	SQL_C_INTERVAL_SECOND           = SQL_INTERVAL_SECOND
	SQL_C_INTERVAL_YEAR_TO_MONTH    = SQL_INTERVAL_YEAR_TO_MONTH
	SQL_C_INTERVAL_DAY_TO_HOUR      = SQL_INTERVAL_DAY_TO_HOUR
	SQL_C_INTERVAL_DAY_TO_MINUTE    = SQL_INTERVAL_DAY_TO_MINUTE
	SQL_C_INTERVAL_DAY_TO_SECOND    = SQL_INTERVAL_DAY_TO_SECOND
	SQL_C_INTERVAL_HOUR_TO_MINUTE   = SQL_INTERVAL_HOUR_TO_MINUTE
	SQL_C_INTERVAL_HOUR_TO_SECOND   = SQL_INTERVAL_HOUR_TO_SECOND
	SQL_C_INTERVAL_MINUTE_TO_SECOND = SQL_INTERVAL_MINUTE_TO_SECOND
)

// IsSuccess checks if the return code indicates success
func IsSuccess(ret SQLRETURN) bool {
	return ret == SQL_SUCCESS || ret == SQL_SUCCESS_WITH_INFO
}

// =============================================================================
// Enhanced Type Handling Types
// =============================================================================

// TimestampPrecision specifies the fractional seconds precision used when
// times and timestamps are rendered as text
type TimestampPrecision int

const (
	// TimestampPrecisionAuto renders all significant fraction digits, trailing zeros trimmed (default)
	TimestampPrecisionAuto TimestampPrecision = -1
	// TimestampPrecisionSeconds provides no fractional seconds (datetime)
	TimestampPrecisionSeconds TimestampPrecision = 0
	// TimestampPrecisionMilliseconds provides 3 digits (datetime2(3))
	TimestampPrecisionMilliseconds TimestampPrecision = 3
	// TimestampPrecisionMicroseconds provides 6 digits (datetime2(6))
	TimestampPrecisionMicroseconds TimestampPrecision = 6
	// TimestampPrecisionNanoseconds provides 9 digits (max ODBC precision)
	TimestampPrecisionNanoseconds TimestampPrecision = 9
)

// WideString wraps a Go string that came from a Unicode (NCHAR/NVARCHAR) column.
type WideString string

// IntervalYearMonth represents a year-month interval
type IntervalYearMonth struct {
	Years    int
	Months   int
	Negative bool
}

// IntervalDaySecond represents a day-time interval
type IntervalDaySecond struct {
	Days        int
	Hours       int
	Minutes     int
	Seconds     int
	Nanoseconds int
	Negative    bool
}
