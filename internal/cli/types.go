package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	odbc "github.com/slingdata-io/odbcconv"
)

// TypeInfo describes one catalogued C type.
type TypeInfo struct {
	Name  string `json:"name"`
	Code  int    `json:"code"`
	Width int    `json:"width,omitempty"`
	Fixed bool   `json:"fixed"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "types",
		Short:         "List the supported C target types",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}
			types := catalogTypes()
			return formatter.Success(types, formatTypes(types))
		},
	}
}

func catalogTypes() []TypeInfo {
	all := odbc.CTypes()
	out := make([]TypeInfo, 0, len(all))
	for _, ct := range all {
		out = append(out, TypeInfo{
			Name:  ct.String(),
			Code:  int(ct),
			Width: ct.Width(),
			Fixed: ct.IsFixed(),
		})
	}
	return out
}

func formatTypes(types []TypeInfo) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCODE\tWIDTH")
	for _, t := range types {
		width := "variable"
		if t.Fixed {
			width = fmt.Sprint(t.Width)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", t.Name, t.Code, width)
	}
	_ = w.Flush()
	return sb.String()
}
