package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnv overrides the log level chosen by --verbose.
const LogLevelEnv = "ODBCCONV_LOG_LEVEL"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the odbcconv CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "odbcconv",
		Short: "Inspect SQLGetData value conversions",
		Long: `Convert SQL values into ODBC C-type buffers the way SQLGetData does,
and show the bytes, indicator and diagnostic each conversion produces.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))

	return cmd
}

// newLogger builds the converter logger. Without --verbose or LogLevelEnv
// logging is disabled.
func newLogger(opts *RootOptions) (*zap.Logger, error) {
	level := zapcore.DebugLevel
	if env := os.Getenv(LogLevelEnv); env != "" {
		l, err := zapcore.ParseLevel(env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", LogLevelEnv, err)
		}
		level = l
	} else if !opts.Verbose {
		return zap.NewNop(), nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
