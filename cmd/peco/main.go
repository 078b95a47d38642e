// Command peco prices European call options: peco T S0 u d K r.
package main

import (
	"os"

	"bop/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewStandaloneCmd(cli.Peco)))
}
