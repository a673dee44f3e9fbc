// Package cases loads conversion case files and runs them against the
// converter. A case names a source value, a target C type and a capacity,
// and the outcome the conversion must produce.
package cases

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	odbc "github.com/slingdata-io/odbcconv"
)

// DefaultCapacity is used for variable-length targets when a case gives none.
const DefaultCapacity = 64

// File is a YAML case file.
type File struct {
	Cases []Case `yaml:"cases"`
}

// Case is one conversion to perform.
type Case struct {
	// Name identifies the case in reports.
	Name string `yaml:"name"`

	// SQLType is the source SQL type name, e.g. "BIGINT" or "INTERVAL DAY TO SECOND".
	SQLType string `yaml:"sql_type"`

	// Value is the source in its SQL_C_CHAR text form. Ignored when Null is set.
	Value string `yaml:"value"`
	Null  bool   `yaml:"null,omitempty"`

	// Target is the C type name, with or without the SQL_C_ prefix.
	Target string `yaml:"target"`

	// Capacity is the buffer length. Defaults to the target width for
	// fixed-width targets and DefaultCapacity otherwise.
	Capacity *int `yaml:"capacity,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the checked parts of the outcome. Unset fields are not checked.
type Expect struct {
	Status    string  `yaml:"status"`
	Indicator *int64  `yaml:"indicator,omitempty"`
	Hex       *string `yaml:"hex,omitempty"`
	Text      *string `yaml:"text,omitempty"`
	SQLState  string  `yaml:"sqlstate,omitempty"`
}

// Result is the outcome of running one case.
type Result struct {
	Case       Case
	Outcome    odbc.Outcome
	Written    []byte
	Mismatches []string
}

// Passed reports whether the outcome matched every expectation
func (r Result) Passed() bool {
	return len(r.Mismatches) == 0
}

// Load parses a case file from r. Unknown fields are rejected.
func Load(r io.Reader) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid case file: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses the case file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	return Load(bytes.NewReader(data))
}

func validate(f *File) error {
	if len(f.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}
	names := make(map[string]bool, len(f.Cases))
	for i, c := range f.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		names[c.Name] = true
		if c.Target == "" {
			return fmt.Errorf("case %q: target is required", c.Name)
		}
		if c.SQLType == "" && !c.Null {
			return fmt.Errorf("case %q: sql_type is required", c.Name)
		}
		if _, ok := odbc.ParseStatus(c.Expect.Status); !ok {
			return fmt.Errorf("case %q: expect.status must be exact, truncated or failed", c.Name)
		}
	}
	return nil
}

// Source builds the source value of a case.
func (c Case) Source() (odbc.Value, error) {
	if c.Null {
		return odbc.Null{}, nil
	}
	sqlType, ok := odbc.SQLTypeByName(c.SQLType)
	if !ok {
		return nil, fmt.Errorf("unknown SQL type %q", c.SQLType)
	}
	return odbc.ParseValue(sqlType, c.Value)
}

// ResolveTarget resolves the case's target type and capacity.
func (c Case) ResolveTarget() (odbc.Target, error) {
	ct, ok := odbc.CTypeByName(c.Target)
	if !ok {
		return odbc.Target{}, fmt.Errorf("unknown C type %q", c.Target)
	}
	capacity := DefaultCapacity
	if ct.IsFixed() {
		capacity = ct.Width()
	}
	if c.Capacity != nil {
		capacity = *c.Capacity
	}
	return odbc.Target{Type: ct, Capacity: capacity}, nil
}

// sentinel fills the buffer before conversion; the byte after capacity
// must still hold it afterwards.
const sentinel = 0xFF

// Run performs the conversion a case describes and compares the outcome
// with its expectations.
func Run(conv *odbc.Converter, c Case) Result {
	res := Result{Case: c}
	v, err := c.Source()
	if err != nil {
		res.Mismatches = append(res.Mismatches, fmt.Sprintf("source: %v", err))
		return res
	}
	t, err := c.ResolveTarget()
	if err != nil {
		res.Mismatches = append(res.Mismatches, fmt.Sprintf("target: %v", err))
		return res
	}
	if t.Capacity < 0 {
		res.Outcome = conv.Convert(v, t, nil)
		res.check(t)
		return res
	}

	buf := bytes.Repeat([]byte{sentinel}, t.Capacity+1)
	res.Outcome = conv.Convert(v, t, buf)
	res.Written = buf[:res.Outcome.Written]
	if buf[t.Capacity] != sentinel {
		res.Mismatches = append(res.Mismatches, fmt.Sprintf("byte %d past capacity was written", t.Capacity))
	}
	if res.Outcome.Status == odbc.Failed && !bytes.Equal(buf, bytes.Repeat([]byte{sentinel}, len(buf))) {
		res.Mismatches = append(res.Mismatches, "failed conversion wrote to the buffer")
	}
	res.check(t)
	return res
}

// RunAll runs every case in f in order.
func RunAll(conv *odbc.Converter, f *File) []Result {
	results := make([]Result, 0, len(f.Cases))
	for _, c := range f.Cases {
		results = append(results, Run(conv, c))
	}
	return results
}

func (r *Result) check(t odbc.Target) {
	e := r.Case.Expect
	out := r.Outcome
	mismatch := func(field string, want, got any) {
		r.Mismatches = append(r.Mismatches, fmt.Sprintf("%s: expected %v, got %v", field, want, got))
	}

	if got := out.Status.String(); got != e.Status {
		mismatch("status", e.Status, got)
	}
	if e.Indicator != nil && int64(out.Indicator) != *e.Indicator {
		mismatch("indicator", *e.Indicator, int64(out.Indicator))
	}
	if e.Hex != nil {
		if got := strings.ToUpper(hex.EncodeToString(r.Written)); got != strings.ToUpper(*e.Hex) {
			mismatch("hex", *e.Hex, got)
		}
	}
	if e.Text != nil {
		got, ok := writtenText(t.Type, r.Written)
		switch {
		case !ok:
			r.Mismatches = append(r.Mismatches, fmt.Sprintf("text: %s is not a text target", t.Type))
		case got != *e.Text:
			mismatch("text", fmt.Sprintf("%q", *e.Text), fmt.Sprintf("%q", got))
		}
	}
	state := ""
	if out.Diag != nil {
		state = out.Diag.SQLState
	}
	if e.SQLState != state {
		mismatch("sqlstate", e.SQLState, state)
	}
}

// writtenText decodes the written bytes of a CHAR or WCHAR target,
// without the terminator.
func writtenText(ct odbc.CType, b []byte) (string, bool) {
	switch ct {
	case odbc.CChar:
		if n := bytes.IndexByte(b, 0); n >= 0 {
			b = b[:n]
		}
		return string(b), true
	case odbc.CWChar:
		return odbc.DecodeWide(b), true
	}
	return "", false
}
