package cli

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	odbc "github.com/slingdata-io/odbcconv"
	"github.com/slingdata-io/odbcconv/internal/cases"
)

// Error codes for CLI responses.
const (
	ErrCodeSource   = "E001" // source value could not be built
	ErrCodeTarget   = "E002" // unknown target type
	ErrCodeCaseFile = "E003" // case file could not be loaded
	ErrCodeLogger   = "E004" // logger configuration
)

type convertOptions struct {
	sqlType   string
	value     string
	null      bool
	target    string
	capacity  int
	precision int
}

// ConvertReport describes one conversion.
type ConvertReport struct {
	SQLType   string `json:"sql_type,omitempty"`
	Target    string `json:"target"`
	Capacity  int    `json:"capacity"`
	Status    string `json:"status"`
	Return    string `json:"return"`
	Indicator int64  `json:"indicator"`
	Written   int    `json:"written"`
	Hex       string `json:"hex"`
	Text      string `json:"text,omitempty"`
	SQLState  string `json:"sqlstate,omitempty"`
	Message   string `json:"message,omitempty"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert one value into a C-type buffer",
		Long: `Convert one SQL value into a buffer of the given C type and capacity.

The value is given in its text form and parsed as --sql-type. The output
shows the status, indicator, written bytes and any diagnostic.`,
		Example: `  odbcconv convert --sql-type BIGINT --value 1234567890 --target SQL_C_BINARY --capacity 8
  odbcconv convert --sql-type VARCHAR --value foobar --target char --capacity 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.sqlType, "sql-type", "", "source SQL type (e.g. BIGINT, \"INTERVAL DAY TO SECOND\")")
	cmd.Flags().StringVar(&opts.value, "value", "", "source value in text form")
	cmd.Flags().BoolVar(&opts.null, "null", false, "convert a NULL source")
	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "target C type (e.g. SQL_C_SLONG, wchar)")
	cmd.Flags().IntVarP(&opts.capacity, "capacity", "c", 0, "buffer length in bytes (default: type width, or 64)")
	cmd.Flags().IntVar(&opts.precision, "precision", int(odbc.TimestampPrecisionAuto), "fraction digits for time text (-1 keeps all significant digits)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runConvert(rootOpts *RootOptions, opts *convertOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	logger, err := newLogger(rootOpts)
	if err != nil {
		_ = formatter.Error(ErrCodeLogger, err.Error(), nil)
		return WrapExitError(ExitCommandError, "configure logging", err)
	}
	defer func() { _ = logger.Sync() }()

	c := cases.Case{
		SQLType: opts.sqlType,
		Value:   opts.value,
		Null:    opts.null,
		Target:  opts.target,
	}
	if cmd.Flags().Changed("capacity") {
		c.Capacity = &opts.capacity
	}

	v, err := c.Source()
	if err != nil {
		_ = formatter.Error(ErrCodeSource, err.Error(), nil)
		return WrapExitError(ExitCommandError, "build source value", err)
	}
	t, err := c.ResolveTarget()
	if err != nil {
		_ = formatter.Error(ErrCodeTarget, err.Error(), nil)
		return WrapExitError(ExitCommandError, "resolve target", err)
	}
	formatter.VerboseLog("source %s %T, target %s, capacity %d", opts.sqlType, v, t.Type, t.Capacity)

	conv := odbc.NewConverter(
		odbc.WithLogger(logger),
		odbc.WithTimestampPrecision(odbc.TimestampPrecision(opts.precision)),
	)
	report, ret := convertOnce(conv, v, t)
	if !opts.null {
		report.SQLType = opts.sqlType
	}

	if err := formatter.Success(report, formatReport(report)); err != nil {
		return err
	}
	if !odbc.IsSuccess(ret) {
		return NewExitError(ExitFailure, report.Message)
	}
	return nil
}

// convertOnce runs a single conversion into a fresh buffer.
func convertOnce(conv *odbc.Converter, v odbc.Value, t odbc.Target) (ConvertReport, odbc.SQLRETURN) {
	var buf []byte
	if t.Capacity > 0 {
		buf = make([]byte, t.Capacity)
	}
	out := conv.Convert(v, t, buf)
	written := buf[:out.Written]

	report := ConvertReport{
		Target:    t.Type.String(),
		Capacity:  t.Capacity,
		Status:    out.Status.String(),
		Return:    odbc.FormatReturnCode(out.Return()),
		Indicator: int64(out.Indicator),
		Written:   out.Written,
		Hex:       strings.ToUpper(hex.EncodeToString(written)),
		Text:      displayText(t.Type, written),
	}
	if out.Diag != nil {
		report.SQLState = out.Diag.SQLState
		report.Message = out.Diag.Message
	}
	return report, out.Return()
}

// displayText renders the payload of a text target for display. Wide text
// uses the escaped form so non-Latin-1 units stay visible.
func displayText(ct odbc.CType, b []byte) string {
	switch ct {
	case odbc.CChar:
		if n := bytes.IndexByte(b, 0); n >= 0 {
			b = b[:n]
		}
		return string(b)
	case odbc.CWChar:
		return odbc.EscapeWide(b)
	}
	return ""
}

func formatReport(r ConvertReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "target:    %s (capacity %d)\n", r.Target, r.Capacity)
	fmt.Fprintf(&sb, "status:    %s (%s)\n", r.Status, r.Return)
	if r.Indicator == int64(odbc.SQL_NULL_DATA) {
		fmt.Fprintf(&sb, "indicator: SQL_NULL_DATA\n")
	} else {
		fmt.Fprintf(&sb, "indicator: %d\n", r.Indicator)
	}
	fmt.Fprintf(&sb, "written:   %d\n", r.Written)
	if r.Hex != "" {
		fmt.Fprintf(&sb, "hex:       %s\n", r.Hex)
	}
	if r.Text != "" {
		fmt.Fprintf(&sb, "text:      %q\n", r.Text)
	}
	if r.SQLState != "" {
		fmt.Fprintf(&sb, "sqlstate:  %s %s\n", r.SQLState, r.Message)
	}
	return sb.String()
}
