// Package store provides persistence of priced quotes.
package store

import (
	"context"
	"time"

	"bop/internal/models"
)

// Journal records priced quotes.
type Journal interface {
	SaveQuote(ctx context.Context, quote *models.Quote) error
	GetQuotes(ctx context.Context, filter QuoteFilter) ([]models.Quote, error)
	Close() error
}

// QuoteFilter represents filters for querying quotes.
type QuoteFilter struct {
	Style      string
	Kind       string
	Since      time.Time
	RunID      string
	FailedOnly bool
	Limit      int
}
