package lattice

import (
	"math"

	apperrors "bop/internal/errors"
)

// RiskNeutral returns p* = (1+r-d)/(u-d). It fails only when u == d.
func RiskNeutral(p Params) (float64, error) {
	if p.Up == p.Down {
		return 0, apperrors.NewModelError("up", p.Up, "up factor equals down factor, model is degenerate")
	}
	return (1 + p.Rate - p.Down) / (p.Up - p.Down), nil
}

// Validate checks p before anything is allocated and returns the risk-neutral
// probability on success.
func Validate(p Params, policy Policy) (float64, error) {
	if p.Steps < 0 {
		return 0, apperrors.NewModelError("steps", p.Steps, "must be non-negative")
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"spot", p.Spot},
		{"up", p.Up},
		{"down", p.Down},
		{"strike", p.Strike},
		{"rate", p.Rate},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return 0, apperrors.NewModelError(f.name, f.value, "must be finite")
		}
	}

	if p.Spot <= 0 {
		return 0, apperrors.NewModelError("spot", p.Spot, "must be positive")
	}

	pStar, err := RiskNeutral(p)
	if err != nil {
		return 0, err
	}

	if policy == PolicyPermissive {
		return pStar, nil
	}

	if p.Down <= 0 {
		return 0, apperrors.NewModelError("down", p.Down, "must be positive")
	}
	if p.Strike < 0 {
		return 0, apperrors.NewModelError("strike", p.Strike, "must be non-negative")
	}
	if p.Rate <= -1 {
		return 0, apperrors.NewModelError("rate", p.Rate, "must be greater than -1")
	}
	if p.Up < p.Down {
		return 0, apperrors.NewModelError("up", p.Up, "up factor must exceed down factor")
	}
	if pStar < 0 || pStar > 1 {
		return 0, apperrors.NewModelError("rate", p.Rate,
			"risk-neutral probability outside [0,1], parameters violate d <= 1+r <= u")
	}
	return pStar, nil
}
