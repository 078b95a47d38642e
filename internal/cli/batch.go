package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"bop/internal/batch"
	apperrors "bop/internal/errors"
	"bop/internal/logging"
	"bop/internal/models"
	"bop/pkg/utils"
)

// quoteRow is the flat CSV form of a priced quote.
type quoteRow struct {
	Style  string  `csv:"style"`
	Kind   string  `csv:"kind"`
	Steps  int     `csv:"steps"`
	Spot   float64 `csv:"spot"`
	Up     float64 `csv:"up"`
	Down   float64 `csv:"down"`
	Strike float64 `csv:"strike"`
	Rate   float64 `csv:"rate"`
	Price  string  `csv:"price"`
	Error  string  `csv:"error"`
}

func newQuoteRow(q models.Quote, precision int) quoteRow {
	row := quoteRow{
		Style:  q.Style,
		Kind:   q.Kind,
		Steps:  q.Steps,
		Spot:   q.Spot,
		Up:     q.Up,
		Down:   q.Down,
		Strike: q.Strike,
		Rate:   q.Rate,
		Error:  q.Error,
	}
	if q.Price != nil {
		row.Price = utils.FormatPrice(*q.Price, precision)
	}
	return row
}

// readRequests parses batch input with a header row.
func readRequests(r io.Reader) ([]models.QuoteRequest, error) {
	var reqs []models.QuoteRequest
	if err := gocsv.Unmarshal(r, &reqs); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrArgument, "reading CSV: %v", err)
	}
	return reqs, nil
}

func newBatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Price every contract in a CSV file",
		Long: `Price every row of a CSV file in parallel.

The file needs a header row with the columns
  style,kind,steps,spot,up,down,strike,rate
Use "-" to read from stdin. A row that fails to price is reported with its
error and does not stop the run; the command exits non-zero if any row failed.`,
		Example: `  bop batch quotes.csv
  bop batch --csv quotes.csv > priced.csv
  cat quotes.csv | bop batch --json -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			log := logging.FromContext(cmd.Context())

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			reqs, err := readRequests(in)
			if err != nil {
				return err
			}

			workers := app.Config.Batch.Workers
			if cmd.Flags().Changed("workers") {
				workers, _ = cmd.Flags().GetInt("workers")
			}

			runner := &batch.Runner{
				Pricer:  app.Pricer,
				Workers: workers,
				Logger:  log,
			}
			if app.Config.Journal.Enabled {
				journal, err := app.Journal()
				if err != nil {
					log.Warn().Err(err).Msg("Quote journal unavailable")
				} else {
					runner.Journal = journal
					defer app.Close()
				}
			}

			quotes, summary, runErr := runner.Run(cmd.Context(), reqs)

			precision := app.Config.Pricing.Precision
			asCSV, _ := cmd.Flags().GetBool("csv")
			switch {
			case output.IsJSON():
				if err := output.JSON(map[string]interface{}{
					"summary": summary,
					"quotes":  quotes,
				}); err != nil {
					return err
				}
			case asCSV:
				rows := make([]quoteRow, len(quotes))
				for i, q := range quotes {
					rows[i] = newQuoteRow(q, precision)
				}
				if err := gocsv.Marshal(&rows, cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("writing CSV: %w", err)
				}
			default:
				renderQuotes(output, quotes, precision, true)
				output.Println()
				output.Dim("%s priced, %s failed, %d workers, %s",
					utils.FormatCount(summary.Priced), utils.FormatCount(summary.Failed),
					summary.Workers, utils.FormatDuration(summary.Duration))
				if runner.Journal != nil {
					output.Dim("Journaled as run %s", summary.RunID)
				}
			}

			if runErr != nil {
				return runErr
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d rows failed to price", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().Bool("csv", false, "write results as CSV")
	cmd.Flags().Int("workers", 0, "number of pricing workers (default from config, 0 = one per CPU)")

	return cmd
}

// renderQuotes prints quotes as a table. numbered prefixes each row with its
// input position.
func renderQuotes(output *Output, quotes []models.Quote, precision int, numbered bool) {
	headers := []string{"Contract", "T", "S0", "u", "d", "K", "r", "Price"}
	if numbered {
		headers = append([]string{"#"}, headers...)
	}
	table := NewTable(output, headers...)

	for i, q := range quotes {
		price := output.Red(q.Error)
		if q.OK() {
			price = output.Green(utils.FormatPrice(*q.Price, precision))
		}
		cells := []string{
			q.Label(),
			strconv.Itoa(q.Steps),
			formatParam(q.Spot),
			formatParam(q.Up),
			formatParam(q.Down),
			formatParam(q.Strike),
			formatParam(q.Rate),
			price,
		}
		if numbered {
			cells = append([]string{strconv.Itoa(i + 1)}, cells...)
		}
		table.AddRow(cells...)
	}
	table.Render()
}

func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
