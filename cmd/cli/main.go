package main

import (
	"fmt"
	"os"

	"github.com/de-tools/service-atlas/pkg/runtime/terminal"
	"github.com/de-tools/service-atlas/pkg/services/backends"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Registry:  backends.Default(),
		Output:    os.Stdout,
		ErrOutput: os.Stderr,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
