// Command divcli screens dividend spreadsheets, forecasts dividend income
// against low-risk baselines and serves the same operations over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"divcli/internal/infrastructure"
)

func main() {
	err := newRootCmd(&cli{out: os.Stdout}).ExecuteContext(context.Background())
	if cerr := infrastructure.CloseLogFile(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "divcli: %v\n", err)
		os.Exit(1)
	}
}
