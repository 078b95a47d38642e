package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bop/internal/lattice"
	"bop/internal/logging"
	"bop/internal/models"
	"bop/pkg/utils"
)

func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price T S0 u d K r",
		Short: "Price a vanilla option",
		Long: `Price a European or American put or call in the CRR binomial model.

  T   Expiration time (number of steps)
  S0  Initial stock price
  u   Up factor
  d   Down factor
  K   Strike price
  r   Risk-free interest rate per step

The parameters must satisfy d <= 1+r <= u unless the permissive policy is used.`,
		Example: `  bop price 2 4 2 0.5 5 0.25
  bop price --style american --kind put 2 4 2 0.5 5 0.25
  bop price --engine recombining --max-steps 500 500 100 1.01 0.990099 100 0.0001
  bop price --json --details -- 3 100 1.1 0.9 100 -0.01`,
		Args: sixArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			log := logging.FromContext(cmd.Context())

			params, err := ParseParams(args)
			if err != nil {
				return err
			}

			styleStr, _ := cmd.Flags().GetString("style")
			kindStr, _ := cmd.Flags().GetString("kind")
			style, err := lattice.ParseStyle(styleStr)
			if err != nil {
				return err
			}
			kind, err := lattice.ParseKind(kindStr)
			if err != nil {
				return err
			}

			pricer := *app.Pricer
			if cmd.Flags().Changed("engine") {
				engineStr, _ := cmd.Flags().GetString("engine")
				if pricer.Engine, err = lattice.ParseEngine(engineStr); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("policy") {
				policyStr, _ := cmd.Flags().GetString("policy")
				if pricer.Policy, err = lattice.ParsePolicy(policyStr); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("max-steps") {
				pricer.MaxSteps, _ = cmd.Flags().GetInt("max-steps")
			}

			precision := app.Config.Pricing.Precision
			if cmd.Flags().Changed("precision") {
				precision, _ = cmd.Flags().GetInt("precision")
			}

			contract := lattice.Contract{Style: style, Kind: kind}
			quote, priceErr := models.NewQuoteRequest(contract, params).Evaluate(&pricer)
			logging.LogQuote(log, contract.String(), params.Steps, priceOf(quote), quote.Elapsed, priceErr)

			if app.Config.Journal.Enabled {
				if journal, err := app.Journal(); err != nil {
					log.Warn().Err(err).Msg("Quote journal unavailable")
				} else {
					if err := journal.SaveQuote(cmd.Context(), &quote); err != nil {
						log.Warn().Err(err).Msg("Failed to journal quote")
					}
					app.Close()
				}
			}

			if priceErr != nil {
				return priceErr
			}

			details, _ := cmd.Flags().GetBool("details")
			switch {
			case output.IsJSON():
				return output.JSON(quote)
			case details:
				output.Box(contract.String(), []string{
					fmt.Sprintf("Price        %s", output.Green(utils.FormatPrice(*quote.Price, precision))),
					fmt.Sprintf("Intrinsic    %s", utils.FormatPrice(lattice.Payoff(kind, params.Spot, params.Strike), precision)),
					fmt.Sprintf("p*           %s", utils.FormatPercent(quote.RiskNeutral)),
					fmt.Sprintf("Steps        %d", params.Steps),
					fmt.Sprintf("Nodes        %s", utils.FormatCount(quote.Nodes)),
					fmt.Sprintf("Engine       %s (%s)", quote.Engine, quote.Policy),
					fmt.Sprintf("Elapsed      %s", utils.FormatDuration(quote.Elapsed)),
				})
			default:
				output.Println(utils.FormatPrice(*quote.Price, precision))
			}
			return nil
		},
	}

	cmd.Flags().String("style", "european", "option style: european or american")
	cmd.Flags().String("kind", "call", "option kind: put or call")
	cmd.Flags().String("engine", "", "lattice engine: tree or recombining (default from config)")
	cmd.Flags().String("policy", "", "validation policy: strict or permissive (default from config)")
	cmd.Flags().Int("max-steps", 0, "largest accepted T (default from config)")
	cmd.Flags().Int("precision", 6, "digits after the decimal point")
	cmd.Flags().Bool("details", false, "show risk-neutral probability, lattice size and timing")

	return cmd
}

func priceOf(q models.Quote) float64 {
	if q.Price == nil {
		return 0
	}
	return *q.Price
}
