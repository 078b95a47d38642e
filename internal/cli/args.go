package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	apperrors "bop/internal/errors"
	"bop/internal/lattice"
)

// paramNames are the six positional parameters in order.
var paramNames = []string{"T", "S0", "u", "d", "K", "r"}

// paramHelp describes each positional parameter for usage text.
var paramHelp = []string{
	"Expiration time",
	"Initial stock price",
	"Up factor",
	"Down factor",
	"Strike price",
	"Risk-free interest rate",
}

// errUsage marks a wrong number of positional arguments.
var errUsage = apperrors.Wrap(apperrors.ErrArgument, "expected 6 arguments: T S0 u d K r")

// sixArgs is a cobra.PositionalArgs accepting exactly T S0 u d K r.
func sixArgs(cmd *cobra.Command, args []string) error {
	if len(args) != len(paramNames) {
		return errUsage
	}
	return nil
}

// usageText renders the classic usage block printed on a bad invocation.
func usageText(name, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nUsage:\t%s %s\n", description, name, strings.Join(paramNames, " "))
	for i, p := range paramNames {
		fmt.Fprintf(&b, "\t%s\t%s\n", p, paramHelp[i])
	}
	return b.String()
}

// ParseParams converts the six positional arguments into model parameters.
func ParseParams(args []string) (lattice.Params, error) {
	if len(args) != len(paramNames) {
		return lattice.Params{}, errUsage
	}

	values := make([]float64, len(args))
	for i, text := range args {
		v, err := cast.ToFloat64E(strings.TrimSpace(text))
		if err != nil {
			return lattice.Params{}, apperrors.NewArgumentError(i+1, paramNames[i], text, err)
		}
		values[i] = v
	}

	steps := values[0]
	if steps != math.Trunc(steps) || math.Abs(steps) > math.MaxInt32 {
		return lattice.Params{}, apperrors.NewArgumentError(1, paramNames[0], args[0],
			fmt.Errorf("must be a whole number of steps"))
	}

	return lattice.Params{
		Steps:  int(steps),
		Spot:   values[1],
		Up:     values[2],
		Down:   values[3],
		Strike: values[4],
		Rate:   values[5],
	}, nil
}
