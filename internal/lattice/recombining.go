package lattice

import (
	"fmt"
	"math"

	apperrors "bop/internal/errors"
)

// MaxRecombiningSteps bounds the recombining engine. Memory is linear in T
// but time is quadratic.
const MaxRecombiningSteps = 10000

// priceRecombining prices on a recombining lattice where node (t, j) is the
// price after j up moves out of t. The down child of (t, j) is (t+1, j) and
// the up child is (t+1, j+1).
func priceRecombining(p Params, c Contract, pStar float64) (float64, int, error) {
	if p.Steps < 0 {
		return 0, 0, apperrors.NewModelError("steps", p.Steps, "must be non-negative")
	}
	if p.Steps > MaxRecombiningSteps {
		return 0, 0, apperrors.NewAllocationError("steps", p.Steps,
			fmt.Sprintf("exceeds the recombining limit of %d steps", MaxRecombiningSteps))
	}

	spotAt := func(t, j int) float64 {
		return p.Spot * math.Pow(p.Up, float64(j)) * math.Pow(p.Down, float64(t-j))
	}

	values := make([]float64, p.Steps+1)
	for j := 0; j <= p.Steps; j++ {
		values[j] = Payoff(c.Kind, spotAt(p.Steps, j), p.Strike)
	}

	growth := 1 + p.Rate
	for t := p.Steps - 1; t >= 0; t-- {
		for j := 0; j <= t; j++ {
			v := ((1-pStar)*values[j] + pStar*values[j+1]) / growth
			if c.Style == American {
				v = math.Max(Payoff(c.Kind, spotAt(t, j), p.Strike), v)
			}
			values[j] = v
		}
	}
	return values[0], len(values), nil
}
