// Package lattice prices European and American vanilla options in the
// Cox-Ross-Rubinstein binomial model by backward induction over a binary
// price tree.
//
// Nodes are indexed from 0. The children of node i are 2i+1 (down move) and
// 2i+2 (up move), so parent(i) = (i-1)/2 < i and index order is a valid
// top-down order. Every buffer is allocated by the pricing call that uses it
// and is dropped when that call returns.
package lattice

import (
	"fmt"
	"strings"

	apperrors "bop/internal/errors"
)

// MaxTreeSteps is the largest number of steps the explicit tree accepts.
// Pricing holds two float64 buffers of 2^(T+1)-1 nodes, about 512 MiB at
// this bound. A failed make cannot be recovered in Go, so larger trees are
// refused before anything is allocated.
const MaxTreeSteps = 24

// DefaultMaxSteps bounds tree pricing when no limit is configured.
const DefaultMaxSteps = 20

// Kind is the payoff kind of a vanilla option.
type Kind int

const (
	Put Kind = iota
	Call
)

func (k Kind) String() string {
	switch k {
	case Put:
		return "put"
	case Call:
		return "call"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "put" or "call", case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "put", "p":
		return Put, nil
	case "call", "c":
		return Call, nil
	}
	return 0, fmt.Errorf("unknown option kind %q (must be 'put' or 'call')", s)
}

// Style decides whether early exercise is allowed.
type Style int

const (
	European Style = iota
	American
)

func (s Style) String() string {
	switch s {
	case European:
		return "european"
	case American:
		return "american"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// ParseStyle parses "european" or "american", case-insensitively.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "european", "eu", "e":
		return European, nil
	case "american", "am", "a":
		return American, nil
	}
	return 0, fmt.Errorf("unknown option style %q (must be 'european' or 'american')", s)
}

// Contract identifies what is being priced.
type Contract struct {
	Style Style
	Kind  Kind
}

func (c Contract) String() string {
	return c.Style.String() + " " + c.Kind.String()
}

// Params are the CRR model parameters of one pricing call.
type Params struct {
	Steps  int     // T, number of time steps to expiration
	Spot   float64 // S0, stock price at t=0
	Up     float64 // u, up factor per step
	Down   float64 // d, down factor per step
	Strike float64 // K
	Rate   float64 // r, risk-free rate per step
}

// Policy selects how strictly model parameters are checked.
type Policy int

const (
	// PolicyStrict rejects a risk-neutral probability outside [0,1], i.e.
	// parameters outside d <= 1+r <= u.
	PolicyStrict Policy = iota
	// PolicyPermissive accepts a risk-neutral probability outside [0,1]
	// and prices with it anyway. Degenerate models are still rejected.
	PolicyPermissive
)

func (p Policy) String() string {
	if p == PolicyPermissive {
		return "permissive"
	}
	return "strict"
}

// ParsePolicy parses "strict" or "permissive".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return PolicyStrict, nil
	case "permissive":
		return PolicyPermissive, nil
	}
	return 0, fmt.Errorf("unknown validation policy %q (must be 'strict' or 'permissive')", s)
}

// Engine selects the lattice representation.
type Engine int

const (
	// EngineTree walks the full non-recombining tree of 2^(T+1)-1 nodes.
	EngineTree Engine = iota
	// EngineRecombining keeps one array of T+1 values indexed by the
	// number of up moves. Same prices, linear memory.
	EngineRecombining
)

func (e Engine) String() string {
	if e == EngineRecombining {
		return "recombining"
	}
	return "tree"
}

// ParseEngine parses "tree" or "recombining".
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tree":
		return EngineTree, nil
	case "recombining", "recombine":
		return EngineRecombining, nil
	}
	return 0, fmt.Errorf("unknown engine %q (must be 'tree' or 'recombining')", s)
}

// TreeSize returns the number of nodes of a tree with the given number of steps.
func TreeSize(steps int) (int, error) {
	if steps < 0 {
		return 0, apperrors.NewModelError("steps", steps, "must be non-negative")
	}
	if steps > MaxTreeSteps {
		return 0, apperrors.NewAllocationError("steps", steps,
			fmt.Sprintf("tree of 2^(T+1)-1 nodes exceeds the %d step limit", MaxTreeSteps))
	}
	return 1<<(steps+1) - 1, nil
}

// levelBounds returns the half-open index range [lo, hi) of depth t.
func levelBounds(t int) (lo, hi int) {
	return 1<<t - 1, 1<<(t+1) - 1
}
