package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bop/internal/lattice"
	"bop/internal/models"
	"bop/internal/store"
)

// Runner prices a list of requests on a worker pool. Each pricing call owns
// its lattice buffers, so workers share nothing but the read-only Pricer.
type Runner struct {
	Pricer  *lattice.Pricer
	Journal store.Journal // optional
	Workers int
	Logger  zerolog.Logger
}

// Summary describes a finished run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Total    int           `json:"total"`
	Priced   int           `json:"priced"`
	Failed   int           `json:"failed"`
	Workers  int           `json:"workers"`
	Duration time.Duration `json:"duration_ns"`
}

// Run prices every request and returns the quotes in input order. Every
// quote of a run carries the same RunID. A request
// that fails to price is reported on its quote and does not stop the run.
// If ctx is cancelled, unstarted requests are marked with ctx.Err() and that
// error is returned alongside the partial results.
func (r *Runner) Run(ctx context.Context, reqs []models.QuoteRequest) ([]models.Quote, Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	quotes := make([]models.Quote, len(reqs))

	pool := NewWorkerPool(r.Workers)
	pool.Start()

	var journalMu sync.Mutex
	var runErr error
	for i := range reqs {
		i := i
		err := pool.Submit(ctx, func() {
			if ctx.Err() != nil {
				quotes[i] = models.Quote{QuoteRequest: reqs[i]}
				quotes[i].SetError(ctx.Err())
				return
			}
			quotes[i], _ = reqs[i].Evaluate(r.Pricer)
			quotes[i].RunID = runID
			if r.Journal != nil {
				journalMu.Lock()
				defer journalMu.Unlock()
				if err := r.Journal.SaveQuote(ctx, &quotes[i]); err != nil {
					r.Logger.Warn().Err(err).Int("row", i+1).Msg("Failed to journal quote")
				}
			}
		})
		if err != nil {
			for j := i; j < len(reqs); j++ {
				quotes[j] = models.Quote{QuoteRequest: reqs[j]}
				quotes[j].SetError(err)
			}
			runErr = err
			break
		}
	}
	pool.Stop()

	stats := pool.Stats()
	summary := Summary{
		RunID:    runID,
		Total:    len(reqs),
		Workers:  stats.Workers,
		Duration: time.Since(start),
	}
	for i := range quotes {
		if quotes[i].OK() {
			summary.Priced++
		} else {
			summary.Failed++
		}
	}

	r.Logger.Debug().
		Str("run_id", runID).
		Int("total", summary.Total).
		Int("priced", summary.Priced).
		Int("failed", summary.Failed).
		Int("workers", summary.Workers).
		Uint64("tasks", stats.TasksDone).
		Dur("duration", summary.Duration).
		Msg("Batch completed")

	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}
	return quotes, summary, runErr
}
