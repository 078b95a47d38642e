// Command papo prices American put options: papo T S0 u d K r.
package main

import (
	"os"

	"bop/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewStandaloneCmd(cli.Papo)))
}
