// Command odbcconv converts SQL values into ODBC C-type buffers and runs
// conversion case files.
package main

import (
	"fmt"
	"os"

	"github.com/slingdata-io/odbcconv/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
