// Command bop prices vanilla options on a binomial lattice.
package main

import (
	"os"

	"bop/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCmd()))
}
