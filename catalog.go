package odbc

import (
	"fmt"
	"strings"
)

// CType identifies a C target representation requested by a caller
// (the TargetType argument of SQLGetData).
type CType SQLSMALLINT

const (
	CChar                   = CType(SQL_C_CHAR)
	CWChar                  = CType(SQL_C_WCHAR)
	CBinary                 = CType(SQL_C_BINARY)
	CBit                    = CType(SQL_C_BIT)
	CTinyInt                = CType(SQL_C_TINYINT)
	CSTinyInt               = CType(SQL_C_STINYINT)
	CUTinyInt               = CType(SQL_C_UTINYINT)
	CShort                  = CType(SQL_C_SHORT)
	CSShort                 = CType(SQL_C_SSHORT)
	CUShort                 = CType(SQL_C_USHORT)
	CLong                   = CType(SQL_C_LONG)
	CSLong                  = CType(SQL_C_SLONG)
	CULong                  = CType(SQL_C_ULONG)
	CSBigInt                = CType(SQL_C_SBIGINT)
	CUBigInt                = CType(SQL_C_UBIGINT)
	CFloat                  = CType(SQL_C_FLOAT)
	CDouble                 = CType(SQL_C_DOUBLE)
	CNumeric                = CType(SQL_C_NUMERIC)
	CDate                   = CType(SQL_C_DATE)
	CTime                   = CType(SQL_C_TIME)
	CTimestamp              = CType(SQL_C_TIMESTAMP)
	CGUID                   = CType(SQL_C_GUID)
	CIntervalYear           = CType(SQL_C_INTERVAL_YEAR)
	CIntervalMonth          = CType(SQL_C_INTERVAL_MONTH)
	CIntervalDay            = CType(SQL_C_INTERVAL_DAY)
	CIntervalHour           = CType(SQL_C_INTERVAL_HOUR)
	CIntervalMinute         = CType(SQL_C_INTERVAL_MINUTE)
	CIntervalSecond         = CType(SQL_C_INTERVAL_SECOND)
	CIntervalYearToMonth    = CType(SQL_C_INTERVAL_YEAR_TO_MONTH)
	CIntervalDayToHour      = CType(SQL_C_INTERVAL_DAY_TO_HOUR)
	CIntervalDayToMinute    = CType(SQL_C_INTERVAL_DAY_TO_MINUTE)
	CIntervalDayToSecond    = CType(SQL_C_INTERVAL_DAY_TO_SECOND)
	CIntervalHourToMinute   = CType(SQL_C_INTERVAL_HOUR_TO_MINUTE)
	CIntervalHourToSecond   = CType(SQL_C_INTERVAL_HOUR_TO_SECOND)
	CIntervalMinuteToSecond = CType(SQL_C_INTERVAL_MINUTE_TO_SECOND)
)

// cClass groups C types that share one packer or encoder.
type cClass int

const (
	classText cClass = iota
	classWide
	classBinary
	classBit
	classInteger
	classFloat
	classDouble
	classNumeric
	classDate
	classTime
	classTimestamp
	classGUID
	classInterval
)

type cTypeInfo struct {
	ctype  CType
	name   string
	class  cClass
	width  int // 0 for variable-length targets
	signed bool
}

// cTypeList is the catalog in presentation order.
var cTypeList = []cTypeInfo{
	{CChar, "SQL_C_CHAR", classText, 0, false},
	{CWChar, "SQL_C_WCHAR", classWide, 0, false},
	{CBinary, "SQL_C_BINARY", classBinary, 0, false},
	{CBit, "SQL_C_BIT", classBit, 1, false},
	{CTinyInt, "SQL_C_TINYINT", classInteger, 1, true},
	{CSTinyInt, "SQL_C_STINYINT", classInteger, 1, true},
	{CUTinyInt, "SQL_C_UTINYINT", classInteger, 1, false},
	{CShort, "SQL_C_SHORT", classInteger, 2, true},
	{CSShort, "SQL_C_SSHORT", classInteger, 2, true},
	{CUShort, "SQL_C_USHORT", classInteger, 2, false},
	{CLong, "SQL_C_LONG", classInteger, 4, true},
	{CSLong, "SQL_C_SLONG", classInteger, 4, true},
	{CULong, "SQL_C_ULONG", classInteger, 4, false},
	{CSBigInt, "SQL_C_SBIGINT", classInteger, 8, true},
	{CUBigInt, "SQL_C_UBIGINT", classInteger, 8, false},
	{CFloat, "SQL_C_FLOAT", classFloat, 4, true},
	{CDouble, "SQL_C_DOUBLE", classDouble, 8, true},
	{CNumeric, "SQL_C_NUMERIC", classNumeric, NumericStructSize, true},
	{CDate, "SQL_C_TYPE_DATE", classDate, DateStructSize, false},
	{CTime, "SQL_C_TYPE_TIME", classTime, TimeStructSize, false},
	{CTimestamp, "SQL_C_TYPE_TIMESTAMP", classTimestamp, TimestampStructSize, false},
	{CGUID, "SQL_C_GUID", classGUID, GUIDStructSize, false},
	{CIntervalYear, "SQL_C_INTERVAL_YEAR", classInterval, IntervalStructSize, false},
	{CIntervalMonth, "SQL_C_INTERVAL_MONTH", classInterval, IntervalStructSize, false},
	{CIntervalDay, "SQL_C_INTERVAL_DAY", classInterval, IntervalStructSize, false},
	{CIntervalHour, "SQL_C_INTERVAL_HOUR", classInterval, IntervalStructSize, false},
	{CIntervalMinute, "SQL_C_INTERVAL_MINUTE", classInterval, IntervalStructSize, false},
	{CIntervalSecond, "SQL_C_INTERVAL_SECOND", classInterval, IntervalStructSize, false},
	{CIntervalYearToMonth, "SQL_C_INTERVAL_YEAR_TO_MONTH", classInterval, IntervalStructSize, false},
	{CIntervalDayToHour, "SQL_C_INTERVAL_DAY_TO_HOUR", classInterval, IntervalStructSize, false},
	{CIntervalDayToMinute, "SQL_C_INTERVAL_DAY_TO_MINUTE", classInterval, IntervalStructSize, false},
	{CIntervalDayToSecond, "SQL_C_INTERVAL_DAY_TO_SECOND", classInterval, IntervalStructSize, false},
	{CIntervalHourToMinute, "SQL_C_INTERVAL_HOUR_TO_MINUTE", classInterval, IntervalStructSize, false},
	{CIntervalHourToSecond, "SQL_C_INTERVAL_HOUR_TO_SECOND", classInterval, IntervalStructSize, false},
	{CIntervalMinuteToSecond, "SQL_C_INTERVAL_MINUTE_TO_SECOND", classInterval, IntervalStructSize, false},
}

var catalog = func() map[CType]cTypeInfo {
	m := make(map[CType]cTypeInfo, len(cTypeList))
	for _, info := range cTypeList {
		m[info.ctype] = info
	}
	return m
}()

// CTypes returns every supported target representation in catalog order.
func CTypes() []CType {
	out := make([]CType, len(cTypeList))
	for i, info := range cTypeList {
		out[i] = info.ctype
	}
	return out
}

// LookupCType maps a raw C type code to a catalogued CType.
// SQL_C_DEFAULT is not resolved here; see DefaultCType.
func LookupCType(code SQLSMALLINT) (CType, bool) {
	_, ok := catalog[CType(code)]
	return CType(code), ok
}

// CTypeByName accepts catalog names with or without the SQL_C_ prefix,
// case-insensitively ("SQL_C_SBIGINT", "sbigint", "TYPE_DATE", "date").
func CTypeByName(name string) (CType, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "SQL_C_")
	for _, info := range cTypeList {
		short := strings.TrimPrefix(info.name, "SQL_C_")
		if n == short || "TYPE_"+n == short {
			return info.ctype, true
		}
	}
	return 0, false
}

// String returns the ODBC name of the C type
func (c CType) String() string {
	if info, ok := catalog[c]; ok {
		return info.name
	}
	return fmt.Sprintf("SQL_C_UNKNOWN(%d)", int(c))
}

// Width returns the canonical byte width of a fixed-width target, or 0 for
// variable-length targets (CHAR, WCHAR, BINARY) and unknown codes.
func (c CType) Width() int {
	return catalog[c].width
}

// IsFixed reports whether the target has an intrinsic byte width.
func (c CType) IsFixed() bool {
	return catalog[c].width > 0
}

// Signed reports whether an integer target interprets its bits as two's complement.
func (c CType) Signed() bool {
	return catalog[c].signed
}

func (c CType) class() cClass {
	return catalog[c].class
}

// Kind classifies a source value independent of its exact SQL type.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindDecimal
	KindText
	KindBinary
	KindDate
	KindTime
	KindTimestamp
	KindInterval
	KindGUID
)

var kindNames = [...]string{"null", "bool", "integer", "float", "decimal", "text",
	"binary", "date", "time", "timestamp", "interval", "guid"}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type classSet uint32

func classesOf(cs ...cClass) classSet {
	var s classSet
	for _, c := range cs {
		s |= 1 << c
	}
	return s
}

func (s classSet) has(c cClass) bool {
	return s&(1<<c) != 0
}

var (
	textual   = classesOf(classText, classWide, classBinary)
	numerics  = classesOf(classBit, classInteger, classFloat, classDouble, classNumeric)
	everyType = classSet(1<<(classInterval+1) - 1)
)

// feasibility is the source-kind x target-class conversion matrix.
var feasibility = map[Kind]classSet{
	KindNull:      everyType,
	KindBool:      textual | numerics,
	KindInteger:   textual | numerics | classesOf(classInterval),
	KindFloat:     textual | numerics,
	KindDecimal:   textual | numerics | classesOf(classInterval),
	KindText:      everyType,
	KindBinary:    everyType,
	KindDate:      textual | classesOf(classDate, classTimestamp),
	KindTime:      textual | classesOf(classTime),
	KindTimestamp: textual | classesOf(classDate, classTime, classTimestamp),
	KindInterval:  textual | classesOf(classInteger, classNumeric, classInterval),
	KindGUID:      textual | classesOf(classGUID),
}

// Feasible reports whether a source kind can be rendered as the target at all.
// A feasible pair may still fail on the content of a particular value.
func Feasible(kind Kind, target CType) bool {
	info, ok := catalog[target]
	if !ok {
		return false
	}
	return feasibility[kind].has(info.class)
}

// DefaultCType resolves SQL_C_DEFAULT for a source SQL type.
func DefaultCType(sqlType SQLSMALLINT) CType {
	switch sqlType {
	case SQL_BIT, SQL_BOOLEAN:
		return CBit
	case SQL_TINYINT:
		return CSTinyInt
	case SQL_SMALLINT:
		return CSShort
	case SQL_INTEGER:
		return CSLong
	case SQL_BIGINT:
		return CSBigInt
	case SQL_REAL:
		return CFloat
	case SQL_FLOAT, SQL_DOUBLE:
		return CDouble
	case SQL_WCHAR, SQL_WVARCHAR, SQL_WLONGVARCHAR:
		return CWChar
	case SQL_BINARY, SQL_VARBINARY, SQL_LONGVARBINARY:
		return CBinary
	case SQL_TYPE_DATE:
		return CDate
	case SQL_TYPE_TIME:
		return CTime
	case SQL_TYPE_TIMESTAMP, SQL_DATETIME:
		return CTimestamp
	case SQL_GUID:
		return CGUID
	}
	if sqlType >= SQL_INTERVAL_YEAR && sqlType <= SQL_INTERVAL_MINUTE_TO_SECOND {
		return CType(sqlType)
	}
	// NUMERIC/DECIMAL keep their precision as text, like everything else unknown
	return CChar
}

// SQLTypeName returns a human-readable name for an SQL type
func SQLTypeName(sqlType SQLSMALLINT) string {
	switch sqlType {
	case SQL_CHAR:
		return "CHAR"
	case SQL_VARCHAR:
		return "VARCHAR"
	case SQL_LONGVARCHAR:
		return "LONGVARCHAR"
	case SQL_WCHAR:
		return "WCHAR"
	case SQL_WVARCHAR:
		return "WVARCHAR"
	case SQL_WLONGVARCHAR:
		return "WLONGVARCHAR"
	case SQL_DECIMAL:
		return "DECIMAL"
	case SQL_NUMERIC:
		return "NUMERIC"
	case SQL_SMALLINT:
		return "SMALLINT"
	case SQL_INTEGER:
		return "INTEGER"
	case SQL_REAL:
		return "REAL"
	case SQL_FLOAT:
		return "FLOAT"
	case SQL_DOUBLE:
		return "DOUBLE"
	case SQL_BIT:
		return "BIT"
	case SQL_BOOLEAN:
		return "BOOLEAN"
	case SQL_TINYINT:
		return "TINYINT"
	case SQL_BIGINT:
		return "BIGINT"
	case SQL_BINARY:
		return "BINARY"
	case SQL_VARBINARY:
		return "VARBINARY"
	case SQL_LONGVARBINARY:
		return "LONGVARBINARY"
	case SQL_TYPE_DATE:
		return "DATE"
	case SQL_TYPE_TIME:
		return "TIME"
	case SQL_TYPE_TIMESTAMP:
		return "TIMESTAMP"
	case SQL_DATETIME:
		return "DATETIME"
	case SQL_GUID:
		return "GUID"
	}
	if name, ok := intervalNames[sqlType]; ok {
		return "INTERVAL " + name
	}
	return fmt.Sprintf("UNKNOWN(%d)", sqlType)
}

var intervalNames = map[SQLSMALLINT]string{
	SQL_INTERVAL_YEAR:             "YEAR",
	SQL_INTERVAL_MONTH:            "MONTH",
	SQL_INTERVAL_DAY:              "DAY",
	SQL_INTERVAL_HOUR:             "HOUR",
	SQL_INTERVAL_MINUTE:           "MINUTE",
	SQL_INTERVAL_SECOND:           "SECOND",
	SQL_INTERVAL_YEAR_TO_MONTH:    "YEAR TO MONTH",
	SQL_INTERVAL_DAY_TO_HOUR:      "DAY TO HOUR",
	SQL_INTERVAL_DAY_TO_MINUTE:    "DAY TO MINUTE",
	SQL_INTERVAL_DAY_TO_SECOND:    "DAY TO SECOND",
	SQL_INTERVAL_HOUR_TO_MINUTE:   "HOUR TO MINUTE",
	SQL_INTERVAL_HOUR_TO_SECOND:   "HOUR TO SECOND",
	SQL_INTERVAL_MINUTE_TO_SECOND: "MINUTE TO SECOND",
}

// SQLTypeByName maps a type name as printed by SQLTypeName (plus a few
// common aliases) back to its SQL type code.
func SQLTypeByName(name string) (SQLSMALLINT, bool) {
	n := strings.ToUpper(strings.Join(strings.Fields(name), " "))
	n = strings.TrimPrefix(n, "SQL_")
	switch n {
	case "INT":
		return SQL_INTEGER, true
	case "BOOL":
		return SQL_BOOLEAN, true
	case "NVARCHAR":
		return SQL_WVARCHAR, true
	case "NCHAR":
		return SQL_WCHAR, true
	case "UUID", "UNIQUEIDENTIFIER":
		return SQL_GUID, true
	case "TYPE_DATE":
		return SQL_TYPE_DATE, true
	case "TYPE_TIME":
		return SQL_TYPE_TIME, true
	case "TYPE_TIMESTAMP":
		return SQL_TYPE_TIMESTAMP, true
	}
	n = strings.ReplaceAll(n, "_", " ")
	for code := SQL_GUID; code <= SQL_INTERVAL_MINUTE_TO_SECOND; code++ {
		if SQLTypeName(code) == n {
			return code, true
		}
	}
	return 0, false
}
