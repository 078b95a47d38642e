package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"bop/internal/lattice"
)

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "examples",
		Short:       "Show common pricing examples",
		Long:        "Display example invocations with the prices they print.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)

			output.Bold("Common Pricing Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "Textbook Model (T=2, S0=4, u=2, d=0.5, K=5, r=0.25)",
					commands: []string{
						"bop price 2 4 2 0.5 5 0.25                       # 1.760000",
						"bop price --kind put 2 4 2 0.5 5 0.25            # 0.960000",
						"bop price --style american --kind put 2 4 2 0.5 5 0.25  # 1.360000",
					},
				},
				{
					title: "Classic Programs",
					commands: []string{
						"peco 2 4 2 0.5 5 0.25                            # European call",
						"papo 2 4 2 0.5 5 0.25                            # American put",
						"bop papo 2 4 2 0.5 5 0.25                        # Same, with bop.toml settings",
					},
				},
				{
					title: "Negative Rates",
					commands: []string{
						"bop price -- 1 100 1.1 0.9 100 -0.01             # 4.545455",
						"peco 1 100 1.1 0.9 100 -0.01                     # No separator needed",
					},
				},
				{
					title: "Deep Lattices",
					commands: []string{
						"bop price --engine recombining --max-steps 500 500 100 1.01 0.990099 100 0.0001",
						"bop price --details --engine recombining --max-steps 2000 2000 100 1.005 0.995025 100 0",
					},
				},
				{
					title: "Batch Pricing",
					commands: []string{
						"bop batch quotes.csv                             # Table",
						"bop batch --csv quotes.csv > priced.csv          # CSV with price and error columns",
						"bop batch --json --workers 4 quotes.csv          # JSON with a run summary",
					},
				},
				{
					title: "Quote Journal",
					commands: []string{
						"bop config init                                  # Then set [journal] enabled = true",
						"bop history --limit 5                            # Most recent quotes",
						"bop history --failed --since 24h                 # Rejected models from today",
					},
				},
			}

			for _, ex := range examples {
				output.Bold(ex.title)
				for _, c := range ex.commands {
					parts := strings.SplitN(c, "#", 2)
					if len(parts) == 2 {
						output.Printf("  %s %s\n", output.Cyan(strings.TrimSpace(parts[0])), output.DimText(strings.TrimSpace(parts[1])))
					} else {
						output.Printf("  %s\n", output.Cyan(c))
					}
				}
				output.Println()
			}
		},
	}
}

func newModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "model",
		Short:       "Explain the binomial model parameters",
		Long:        "Describe the six model parameters, the no-arbitrage condition and the lattice limits.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)

			output.Bold("Cox-Ross-Rubinstein Binomial Model")
			output.Println()

			for i, name := range paramNames {
				output.Printf("  %s  %s\n", output.Cyan(PadRight(name, 2)), paramHelp[i])
			}
			output.Println()

			output.Bold("Pricing")
			output.Println()
			output.Printf("  Each step the stock moves to S*u or S*d. The risk-neutral probability\n")
			output.Printf("  of an up move is %s. Prices are discounted by\n", output.Cyan("p* = (1+r-d)/(u-d)"))
			output.Printf("  1+r per step, and American nodes take the larger of exercise and hold.\n")
			output.Println()

			output.Bold("Validation")
			output.Println()
			output.Printf("  %s rejects models where p* falls outside [0,1], i.e. unless d <= 1+r <= u.\n", output.Cyan("strict"))
			output.Printf("  %s prices them anyway and logs a warning.\n", output.Cyan("permissive"))
			output.Printf("  Both reject u = d, S0 <= 0, T < 0 and non-finite inputs.\n")
			output.Println()

			output.Bold("Limits")
			output.Println()
			output.Printf("  %s engine: full tree of 2^(T+1)-1 nodes, T <= %d\n", output.Cyan("tree"), lattice.MaxTreeSteps)
			output.Printf("  %s engine: one level of T+1 nodes, T <= %d\n", output.Cyan("recombining"), lattice.MaxRecombiningSteps)
			output.Printf("  The default limit is T <= %d; raise it with pricing.max_steps.\n", lattice.DefaultMaxSteps)
		},
	}
}

// PadRight pads s with spaces to length.
func PadRight(s string, length int) string {
	if visibleLen(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-visibleLen(s))
}
