package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/specledger/specledger/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		// Commands report their own errors through the formatter; only
		// print here when nothing has been written yet.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Err == nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
