package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bop/internal/lattice"
	"bop/internal/logging"
	"bop/pkg/utils"
)

// Program describes one of the single-purpose pricing programs.
type Program struct {
	Name        string
	Description string
	Contract    lattice.Contract
}

var (
	// Papo prices American put options.
	Papo = Program{
		Name:        "papo",
		Description: "Price American put options",
		Contract:    lattice.Contract{Style: lattice.American, Kind: lattice.Put},
	}
	// Peco prices European call options.
	Peco = Program{
		Name:        "peco",
		Description: "Price European call options",
		Contract:    lattice.Contract{Style: lattice.European, Kind: lattice.Call},
	}
)

// Usage returns the usage text printed when the argument count is wrong.
func (p Program) Usage() string {
	return usageText(p.Name, p.Description)
}

// NewProgramCmd builds a command taking exactly "T S0 u d K r" and printing
// the price with "%f". Flag parsing is disabled so negative rates such as
// -0.01 are read as numbers. pricer is called at run time so the caller can
// finish configuring it in a pre-run hook.
func NewProgramCmd(p Program, pricer func() *lattice.Pricer) *cobra.Command {
	cmd := &cobra.Command{
		Use:                p.Name + " T S0 u d K r",
		Short:              p.Description,
		Long:               p.Usage(),
		Args:               sixArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Annotations:        map[string]string{annotationUsage: p.Usage()},
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := ParseParams(args)
			if err != nil {
				return err
			}

			res, err := pricer().Price(params, p.Contract)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), utils.FormatPrice(res.Price, utils.DefaultPrecision))
			return nil
		},
	}
	return cmd
}

// NewStandaloneCmd builds p as a top-level program. It reads no configuration
// and prices on the full tree with the strict policy, logging warnings to
// stderr.
func NewStandaloneCmd(p Program) *cobra.Command {
	logger := logging.WithCommand(logging.NewLogger(), p.Name)
	pricer := lattice.NewPricer(lattice.MaxTreeSteps, lattice.PolicyStrict, lattice.EngineTree, logger)
	return NewProgramCmd(p, func() *lattice.Pricer { return pricer })
}
