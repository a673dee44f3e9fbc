package odbc

import "fmt"

// Status classifies a conversion outcome
type Status int

const (
	// Exact: the full value was written
	Exact Status = iota
	// Truncated: a valid prefix was written; Indicator holds the full length
	Truncated
	// Failed: nothing was written
	Failed
)

func (s Status) String() string {
	switch s {
	case Exact:
		return "exact"
	case Truncated:
		return "truncated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus is the inverse of Status.String
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "exact":
		return Exact, true
	case "truncated":
		return Truncated, true
	case "failed":
		return Failed, true
	}
	return 0, false
}

// Target describes the caller's requested representation. Capacity is the
// number of buffer bytes the conversion may touch; fixed-width types still
// require at least Width bytes.
type Target struct {
	Type     CType
	Capacity int
}

// Outcome is the result of one conversion.
type Outcome struct {
	// Written is the number of bytes modified, terminator included.
	Written int
	// Indicator is the full payload length before truncation, excluding
	// any terminator, or SQL_NULL_DATA.
	Indicator SQLLEN
	Status    Status
	Diag      *Error
}

// Return maps the outcome to the SQLGetData return code
func (o Outcome) Return() SQLRETURN {
	switch o.Status {
	case Exact:
		return SQL_SUCCESS
	case Truncated:
		return SQL_SUCCESS_WITH_INFO
	default:
		return SQL_ERROR
	}
}

// Err returns the diagnostic as an error, or nil when there is none
func (o Outcome) Err() error {
	if o.Diag == nil {
		return nil
	}
	return o.Diag
}

// IsNull reports whether the outcome describes a NULL value
func (o Outcome) IsNull() bool {
	return o.Indicator == SQL_NULL_DATA
}

func failed(cause error, format string, args ...any) Outcome {
	return Outcome{Status: Failed, Diag: failureDiag(cause, format, args...)}
}

// checkBuffer validates the caller contract for t against buf.
func checkBuffer(info cTypeInfo, t Target, buf []byte) error {
	if t.Capacity < 0 {
		return fmt.Errorf("%w: negative capacity %d", ErrBufferTooSmall, t.Capacity)
	}
	if t.Capacity > len(buf) {
		return fmt.Errorf("%w: capacity %d exceeds buffer of %d bytes", ErrBufferTooSmall, t.Capacity, len(buf))
	}
	if info.width > 0 && t.Capacity < info.width {
		return fmt.Errorf("%w: %s needs %d bytes, capacity is %d", ErrBufferTooSmall, info.name, info.width, t.Capacity)
	}
	return nil
}

// copyText writes s into buf[:capacity] as NUL-terminated narrow text.
// At most capacity-1 payload bytes are copied. A zero capacity writes
// nothing and reports truncation unless s is empty.
func copyText(s string, buf []byte, capacity int) Outcome {
	n := len(s)
	out := Outcome{Indicator: SQLLEN(n)}
	if capacity == 0 {
		if n > 0 {
			out.Status = Truncated
			out.Diag = truncationDiag(n)
		}
		return out
	}
	m := min(n, capacity-1)
	copy(buf, s[:m])
	buf[m] = 0
	out.Written = m + 1
	if m < n {
		out.Status = Truncated
		out.Diag = truncationDiag(n)
	}
	return out
}

// copyWide writes UTF-16LE units into buf[:capacity] followed by a 2-byte
// NUL. At most capacity/2-1 units are copied and a surrogate pair is never
// split. The indicator is the full length in bytes.
func copyWide(units []byte, buf []byte, capacity int) Outcome {
	n := len(units)
	out := Outcome{Indicator: SQLLEN(n)}
	room := capacity/2 - 1
	if room < 0 {
		if n > 0 {
			out.Status = Truncated
			out.Diag = truncationDiag(n)
		}
		return out
	}
	m := min(n/2, room)
	if m < n/2 && m > 0 && isHighSurrogate(le.Uint16(units[2*(m-1):])) {
		m--
	}
	copy(buf, units[:2*m])
	buf[2*m] = 0
	buf[2*m+1] = 0
	out.Written = 2*m + 2
	if m < n/2 {
		out.Status = Truncated
		out.Diag = truncationDiag(n)
	}
	return out
}

// copyBinary writes raw bytes without a terminator
func copyBinary(b []byte, buf []byte, capacity int) Outcome {
	n := len(b)
	m := min(n, capacity)
	copy(buf, b[:m])
	out := Outcome{Written: m, Indicator: SQLLEN(n)}
	if m < n {
		out.Status = Truncated
		out.Diag = truncationDiag(n)
	}
	return out
}

// putFixed copies a packed fixed-width image into buf
func putFixed(image []byte, buf []byte) Outcome {
	copy(buf, image)
	return Outcome{Written: len(image), Indicator: SQLLEN(len(image))}
}
