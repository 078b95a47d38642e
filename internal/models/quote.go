package models

import (
	"time"

	"bop/internal/lattice"
)

// Quote is a priced request. Error is set instead of Price when pricing
// failed; a failed quote never carries a price.
type Quote struct {
	QuoteRequest
	ID          int64         `json:"id,omitempty"`
	RunID       string        `json:"run_id,omitempty"`
	Engine      string        `json:"engine,omitempty"`
	Policy      string        `json:"policy,omitempty"`
	Price       *float64      `json:"price,omitempty"`
	RiskNeutral float64       `json:"risk_neutral_probability"`
	Nodes       int           `json:"nodes,omitempty"`
	Error       string        `json:"error,omitempty"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	CreatedAt   time.Time     `json:"created_at"`
}

// OK reports whether the quote was priced successfully.
func (q *Quote) OK() bool {
	return q.Error == "" && q.Price != nil
}

// SetPrice records a successful result.
func (q *Quote) SetPrice(price float64) {
	q.Price = &price
	q.Error = ""
}

// SetError records a failure and drops any price.
func (q *Quote) SetError(err error) {
	q.Price = nil
	if err != nil {
		q.Error = err.Error()
	}
}

// Evaluate prices the request with pr. Failures are recorded on the quote
// and also returned, so callers can either inspect the quote or match the
// error with errors.Is.
func (r QuoteRequest) Evaluate(pr *lattice.Pricer) (Quote, error) {
	q := Quote{
		QuoteRequest: r,
		Engine:       pr.Engine.String(),
		Policy:       pr.Policy.String(),
		CreatedAt:    time.Now().UTC(),
	}

	c, err := r.Contract()
	if err != nil {
		q.SetError(err)
		return q, err
	}
	q.Style = c.Style.String()
	q.Kind = c.Kind.String()

	res, err := pr.Price(r.Params(), c)
	q.Elapsed = res.Elapsed
	if err != nil {
		q.SetError(err)
		return q, err
	}

	q.SetPrice(res.Price)
	q.RiskNeutral = res.RiskNeutral
	q.Nodes = res.Nodes
	return q, nil
}
