package lattice

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "bop/internal/errors"
)

// arbitrageFree builds parameters satisfying d < 1+r < u. frac places 1+r
// strictly between d and u, so p* == frac up to rounding.
func arbitrageFree(steps int, spot, down, up, frac, strike float64) Params {
	return Params{
		Steps:  steps,
		Spot:   spot,
		Up:     up,
		Down:   down,
		Strike: strike,
		Rate:   down - 1 + frac*(up-down),
	}
}

func newProperties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	return gopter.NewProperties(parameters)
}

// For any valid model with T = 0 the price is the undiscounted payoff of S0.
func TestProperty_ZeroStepsPaysIntrinsic(t *testing.T) {
	properties := newProperties()

	properties.Property("T=0 price equals immediate payoff", prop.ForAll(
		func(spot, down, up, frac, strike float64) bool {
			p := arbitrageFree(0, spot, down, up, frac, strike)
			for _, kind := range []Kind{Put, Call} {
				want := Payoff(kind, spot, strike)
				eu, err := PriceEuropean(p, kind)
				if err != nil || eu != want {
					t.Logf("european %v: got %v (%v), want %v", kind, eu, err, want)
					return false
				}
				am, err := PriceAmerican(p, kind)
				if err != nil || am != want {
					t.Logf("american %v: got %v (%v), want %v", kind, am, err, want)
					return false
				}
			}
			return true
		},
		gen.Float64Range(1, 500),
		gen.Float64Range(0.5, 0.99),
		gen.Float64Range(1.01, 2),
		gen.Float64Range(0.05, 0.95),
		gen.Float64Range(0, 600),
	))

	properties.TestingRun(t)
}

// Early exercise is never worth less than holding: American >= European,
// and both respect their lower bounds.
func TestProperty_AmericanDominatesEuropean(t *testing.T) {
	properties := newProperties()

	properties.Property("American price >= European price >= 0", prop.ForAll(
		func(steps int, spot, down, up, frac, strike float64) bool {
			p := arbitrageFree(steps, spot, down, up, frac, strike)
			for _, kind := range []Kind{Put, Call} {
				eu, err := PriceEuropean(p, kind)
				if err != nil {
					t.Logf("european %v: %v", kind, err)
					return false
				}
				am, err := PriceAmerican(p, kind)
				if err != nil {
					t.Logf("american %v: %v", kind, err)
					return false
				}
				if am < eu {
					t.Logf("%v: american %v < european %v for %+v", kind, am, eu, p)
					return false
				}
				if eu < 0 {
					t.Logf("%v: negative european price %v", kind, eu)
					return false
				}
				if am < Payoff(kind, spot, strike) {
					t.Logf("%v: american %v below intrinsic %v", kind, am, Payoff(kind, spot, strike))
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.Float64Range(1, 500),
		gen.Float64Range(0.5, 0.99),
		gen.Float64Range(1.01, 2),
		gen.Float64Range(0.05, 0.95),
		gen.Float64Range(0, 600),
	))

	properties.TestingRun(t)
}

// Raising the strike raises put prices and lowers call prices. The change is
// strict whenever some leaf is in the money at the lower strike.
func TestProperty_StrikeMonotonicity(t *testing.T) {
	properties := newProperties()

	properties.Property("price is monotone in strike", prop.ForAll(
		func(steps int, spot, down, up, frac, strike, delta float64) bool {
			lower := arbitrageFree(steps, spot, down, up, frac, strike)
			higher := lower
			higher.Strike = strike + delta

			minLeaf := spot * math.Pow(down, float64(steps))
			maxLeaf := spot * math.Pow(up, float64(steps))

			for _, style := range []Style{European, American} {
				for _, kind := range []Kind{Put, Call} {
					c := Contract{Style: style, Kind: kind}
					lo, err := referencePricer.Price(lower, c)
					if err != nil {
						t.Logf("%v: %v", c, err)
						return false
					}
					hi, err := referencePricer.Price(higher, c)
					if err != nil {
						t.Logf("%v: %v", c, err)
						return false
					}

					switch kind {
					case Put:
						if hi.Price < lo.Price {
							t.Logf("%v: put fell from %v to %v", c, lo.Price, hi.Price)
							return false
						}
						if strike > minLeaf && !(hi.Price > lo.Price) {
							t.Logf("%v: put not strictly increasing (%v -> %v)", c, lo.Price, hi.Price)
							return false
						}
					case Call:
						if hi.Price > lo.Price {
							t.Logf("%v: call rose from %v to %v", c, lo.Price, hi.Price)
							return false
						}
						if maxLeaf > strike && !(hi.Price < lo.Price) {
							t.Logf("%v: call not strictly decreasing (%v -> %v)", c, lo.Price, hi.Price)
							return false
						}
					}
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.Float64Range(1, 200),
		gen.Float64Range(0.5, 0.99),
		gen.Float64Range(1.01, 2),
		gen.Float64Range(0.05, 0.95),
		gen.Float64Range(0, 300),
		gen.Float64Range(0.5, 50),
	))

	properties.TestingRun(t)
}

// The recombining engine is an optimisation and must agree with the tree.
func TestProperty_RecombiningMatchesTree(t *testing.T) {
	properties := newProperties()

	tree := &Pricer{MaxSteps: 10}
	recombining := &Pricer{MaxSteps: 10, Engine: EngineRecombining}

	properties.Property("recombining price == tree price", prop.ForAll(
		func(steps int, spot, down, up, frac, strike float64) bool {
			p := arbitrageFree(steps, spot, down, up, frac, strike)
			for _, style := range []Style{European, American} {
				for _, kind := range []Kind{Put, Call} {
					c := Contract{Style: style, Kind: kind}
					a, err := tree.Price(p, c)
					if err != nil {
						t.Logf("tree %v: %v", c, err)
						return false
					}
					b, err := recombining.Price(p, c)
					if err != nil {
						t.Logf("recombining %v: %v", c, err)
						return false
					}
					if math.Abs(a.Price-b.Price) > tolerance*math.Max(1, math.Abs(a.Price)) {
						t.Logf("%v: tree %v != recombining %v for %+v", c, a.Price, b.Price, p)
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(0, 10),
		gen.Float64Range(1, 500),
		gen.Float64Range(0.5, 0.99),
		gen.Float64Range(1.01, 2),
		gen.Float64Range(0.05, 0.95),
		gen.Float64Range(0, 600),
	))

	properties.TestingRun(t)
}

// A degenerate model never yields a number, finite or not.
func TestProperty_DegenerateModelFails(t *testing.T) {
	properties := newProperties()

	properties.Property("u == d is an error", prop.ForAll(
		func(steps int, spot, factor, rate, strike float64) bool {
			p := Params{Steps: steps, Spot: spot, Up: factor, Down: factor, Strike: strike, Rate: rate}
			for _, policy := range []Policy{PolicyStrict, PolicyPermissive} {
				pr := &Pricer{Policy: policy}
				for _, c := range []Contract{{European, Put}, {European, Call}, {American, Put}, {American, Call}} {
					res, err := pr.Price(p, c)
					if !apperrors.Is(err, apperrors.ErrInvalidModel) {
						t.Logf("%v %v: err = %v, result = %+v", policy, c, err, res)
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(0, 8),
		gen.Float64Range(1, 500),
		gen.Float64Range(0.5, 2),
		gen.Float64Range(-0.5, 0.5),
		gen.Float64Range(0, 600),
	))

	properties.TestingRun(t)
}
