package main

import (
	"fmt"
	"os"

	"github.com/mithrel/oceannotes/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ocean-cli:", err)
		os.Exit(1)
	}
}
