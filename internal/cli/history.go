package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bop/internal/store"
	"bop/pkg/utils"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently journaled quotes",
		Long: `Show quotes recorded in the journal, newest first.

The journal is off by default. Enable it with 'enabled = true' in the
[journal] section of bop.toml or with BOP_JOURNAL_ENABLED=true.`,
		Example: `  bop history
  bop history --limit 5 --style american --kind put
  bop history --failed --since 24h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if !app.Config.Journal.Enabled {
				output.Warning("Quote journal is disabled.")
				output.Dim("Run 'bop config init' and set enabled = true under [journal].")
				return nil
			}

			journal, err := app.Journal()
			if err != nil {
				return err
			}
			defer app.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			style, _ := cmd.Flags().GetString("style")
			kind, _ := cmd.Flags().GetString("kind")
			failed, _ := cmd.Flags().GetBool("failed")
			runID, _ := cmd.Flags().GetString("run")
			since, _ := cmd.Flags().GetDuration("since")

			filter := store.QuoteFilter{
				Style:      style,
				Kind:       kind,
				RunID:      runID,
				FailedOnly: failed,
				Limit:      limit,
			}
			if since > 0 {
				filter.Since = time.Now().Add(-since)
			}

			quotes, err := journal.GetQuotes(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(quotes)
			}

			if len(quotes) == 0 {
				output.Info("No quotes recorded yet.")
				return nil
			}

			precision := app.Config.Pricing.Precision
			table := NewTable(output, "ID", "Time", "Contract", "T", "Engine", "Price")
			for _, q := range quotes {
				price := output.Red(q.Error)
				if q.OK() {
					price = output.Green(utils.FormatPrice(*q.Price, precision))
				}
				table.AddRow(
					strconv.FormatInt(q.ID, 10),
					q.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					q.Label(),
					strconv.Itoa(q.Steps),
					q.Engine,
					price,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum number of quotes to show")
	cmd.Flags().String("style", "", "only show this style (european, american)")
	cmd.Flags().String("kind", "", "only show this kind (put, call)")
	cmd.Flags().Bool("failed", false, "only show quotes that failed to price")
	cmd.Flags().String("run", "", "only show quotes from this batch run")
	cmd.Flags().Duration("since", 0, "only show quotes newer than this, e.g. 24h")

	return cmd
}
