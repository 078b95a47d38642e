// Package models provides domain models shared by the pricer's commands,
// batch runner and journal.
package models

import (
	"strings"

	"bop/internal/lattice"
)

// QuoteRequest is one contract to price. The csv tags define the batch
// input columns.
type QuoteRequest struct {
	Style  string  `csv:"style" json:"style"`
	Kind   string  `csv:"kind" json:"kind"`
	Steps  int     `csv:"steps" json:"steps"`
	Spot   float64 `csv:"spot" json:"spot"`
	Up     float64 `csv:"up" json:"up"`
	Down   float64 `csv:"down" json:"down"`
	Strike float64 `csv:"strike" json:"strike"`
	Rate   float64 `csv:"rate" json:"rate"`
}

// Params returns the lattice model parameters of the request.
func (r QuoteRequest) Params() lattice.Params {
	return lattice.Params{
		Steps:  r.Steps,
		Spot:   r.Spot,
		Up:     r.Up,
		Down:   r.Down,
		Strike: r.Strike,
		Rate:   r.Rate,
	}
}

// Contract parses the style and kind columns.
func (r QuoteRequest) Contract() (lattice.Contract, error) {
	style, err := lattice.ParseStyle(r.Style)
	if err != nil {
		return lattice.Contract{}, err
	}
	kind, err := lattice.ParseKind(r.Kind)
	if err != nil {
		return lattice.Contract{}, err
	}
	return lattice.Contract{Style: style, Kind: kind}, nil
}

// NewQuoteRequest builds a request from typed parameters.
func NewQuoteRequest(c lattice.Contract, p lattice.Params) QuoteRequest {
	return QuoteRequest{
		Style:  c.Style.String(),
		Kind:   c.Kind.String(),
		Steps:  p.Steps,
		Spot:   p.Spot,
		Up:     p.Up,
		Down:   p.Down,
		Strike: p.Strike,
		Rate:   p.Rate,
	}
}

// Label is a short human readable contract name, e.g. "american put".
func (r QuoteRequest) Label() string {
	return strings.ToLower(strings.TrimSpace(r.Style)) + " " + strings.ToLower(strings.TrimSpace(r.Kind))
}
