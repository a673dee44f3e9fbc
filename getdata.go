package odbc

import (
	"unsafe"
)

// GetData converts v into caller memory with the argument shape of
// SQLGetData. targetType may be SQL_C_DEFAULT, in which case the C type is
// chosen from the value's SQL type. bufferLength is ignored for fixed-width
// targets, which always receive their full struct. strLenOrInd, when not
// nil, receives the indicator.
//
// The returned error is the diagnostic for SQL_SUCCESS_WITH_INFO and
// SQL_ERROR, nil for SQL_SUCCESS.
func (c *Converter) GetData(v Value, targetType SQLSMALLINT, targetValue uintptr, bufferLength SQLLEN, strLenOrInd *SQLLEN) (SQLRETURN, error) {
	if v == nil {
		v = Null{}
	}
	ct, err := resolveCType(v, targetType)
	if err != nil {
		out := failed(err, "target type %d", targetType)
		return out.Return(), out.Err()
	}

	capacity := int(bufferLength)
	if ct.IsFixed() {
		capacity = ct.Width()
	}
	if capacity < 0 {
		out := failed(ErrBufferTooSmall, "buffer length %d", bufferLength)
		return out.Return(), out.Err()
	}
	var buf []byte
	if targetValue != 0 && capacity > 0 {
		buf = unsafe.Slice((*byte)(unsafe.Pointer(targetValue)), capacity)
	} else {
		capacity = 0
	}

	out := c.Convert(v, Target{Type: ct, Capacity: capacity}, buf)
	if strLenOrInd != nil && out.Status != Failed {
		*strLenOrInd = out.Indicator
	}
	return out.Return(), out.Err()
}

// GetData is Converter.GetData with the default configuration
func GetData(v Value, targetType SQLSMALLINT, targetValue uintptr, bufferLength SQLLEN, strLenOrInd *SQLLEN) (SQLRETURN, error) {
	return NewConverter().GetData(v, targetType, targetValue, bufferLength, strLenOrInd)
}

func resolveCType(v Value, targetType SQLSMALLINT) (CType, error) {
	if targetType == SQL_C_DEFAULT {
		return DefaultCType(v.SQLType()), nil
	}
	ct, ok := LookupCType(targetType)
	if !ok {
		return 0, ErrUnknownType
	}
	return ct, nil
}

// Stream returns a value in successive pieces, the way repeated SQLGetData
// calls on one column do. Each Stream belongs to one column of one row and
// must not be shared between goroutines.
type Stream struct {
	conv   *Converter
	v      Value
	target CType

	data    []byte // full payload for CHAR, WCHAR and BINARY targets
	offset  int
	started bool
	done    bool
}

// NewStream prepares piecewise retrieval of v as target
func (c *Converter) NewStream(v Value, target CType) *Stream {
	if v == nil {
		v = Null{}
	}
	return &Stream{conv: c, v: v, target: target}
}

// Next fills buf with the next piece. The indicator of each piece is the
// number of payload bytes remaining before the call. Once the whole value
// has been returned Next reports SQL_NO_DATA with a 02000 diagnostic.
// A buffer too short to carry one unit of the remaining payload (one byte
// of text plus terminator, one code point of wide text plus terminator)
// fails with HY090 and leaves the position unchanged.
func (s *Stream) Next(buf []byte) (Outcome, SQLRETURN) {
	if s.done {
		return Outcome{Diag: noDataDiag()}, SQL_NO_DATA
	}

	class := s.target.class()
	_, null := s.v.(Null)
	if null || (class != classText && class != classWide && class != classBinary) {
		s.done = true
		out := s.conv.Convert(s.v, Target{Type: s.target, Capacity: len(buf)}, buf)
		return out, out.Return()
	}

	if !s.started {
		s.started = true
		data, out, ok := s.payload(buf)
		if !ok {
			s.done = true
			return out, out.Return()
		}
		s.data = data
	}

	rest := s.data[s.offset:]
	if need := pieceSize(class, rest); len(buf) < need {
		out := failed(ErrBufferTooSmall, "%s piece needs %d bytes, buffer has %d", s.target, need, len(buf))
		return out, out.Return()
	}
	var out Outcome
	switch class {
	case classText:
		out = copyText(string(rest), buf, len(buf))
		if out.Written > 0 {
			s.offset += out.Written - 1
		}
	case classWide:
		out = copyWide(rest, buf, len(buf))
		if out.Written > 0 {
			s.offset += out.Written - 2
		}
	default:
		out = copyBinary(rest, buf, len(buf))
		s.offset += out.Written
	}
	if out.Status == Exact {
		s.done = true
	}
	return out, out.Return()
}

// pieceSize is the smallest buffer that moves a stream forward over rest
func pieceSize(class cClass, rest []byte) int {
	if len(rest) == 0 {
		return 0
	}
	switch class {
	case classText:
		return 2
	case classWide:
		if len(rest) >= 4 && isHighSurrogate(le.Uint16(rest)) {
			return 6
		}
		return 4
	default:
		return 1
	}
}

// payload renders the full value for a variable-length target. A failed
// rendering is returned as the outcome with ok false.
func (s *Stream) payload(buf []byte) ([]byte, Outcome, bool) {
	t := Target{Type: s.target, Capacity: len(buf)}
	info, ok := catalog[s.target]
	if !ok {
		return nil, failed(ErrUnknownType, "C type %d", int(s.target)), false
	}
	if err := checkBuffer(info, t, buf); err != nil {
		return nil, failed(err, "%s", info.name), false
	}
	if !Feasible(s.v.Kind(), s.target) {
		return nil, failed(ErrIncompatible, "converting %s to %s", s.v.Kind(), info.name), false
	}

	var (
		data []byte
		err  error
	)
	switch info.class {
	case classText, classWide:
		var text string
		if text, err = renderText(s.v, s.conv.precision); err == nil {
			if info.class == classWide {
				data, err = encodeWide(text)
			} else {
				data = []byte(text)
			}
		}
	default:
		data, err = binaryImage(s.v)
	}
	if err != nil {
		return nil, failed(err, "converting %s to %s", s.v.Kind(), info.name), false
	}
	return data, Outcome{}, true
}
