package lattice

import "math"

// Payoff is the immediate exercise value of one option at the given spot.
func Payoff(kind Kind, spot, strike float64) float64 {
	if kind == Call {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

// BuildTree returns the stock price process S for every node of the tree.
// S[0] is the spot; an odd node is its parent times d, an even node its
// parent times u. No arbitrage check happens here.
func BuildTree(p Params) ([]float64, error) {
	size, err := TreeSize(p.Steps)
	if err != nil {
		return nil, err
	}

	stock := make([]float64, size)
	stock[0] = p.Spot
	for i := 1; i < size; i++ {
		parent := stock[(i-1)/2]
		if i%2 == 1 {
			stock[i] = p.Down * parent
		} else {
			stock[i] = p.Up * parent
		}
	}
	return stock, nil
}

// induct runs backward induction over a tree built by BuildTree and returns
// the value at the root. European contracts only evaluate payoffs at the
// leaves; American contracts compare every interior node against its
// immediate exercise value.
func induct(stock []float64, steps int, c Contract, strike, rate, pStar float64) float64 {
	values := make([]float64, len(stock))

	lo, hi := levelBounds(steps)
	for i := lo; i < hi; i++ {
		values[i] = Payoff(c.Kind, stock[i], strike)
	}

	growth := 1 + rate
	for t := steps - 1; t >= 0; t-- {
		lo, hi := levelBounds(t)
		for i := lo; i < hi; i++ {
			v := ((1-pStar)*values[2*i+1] + pStar*values[2*i+2]) / growth
			if c.Style == American {
				v = math.Max(Payoff(c.Kind, stock[i], strike), v)
			}
			values[i] = v
		}
	}
	return values[0]
}
