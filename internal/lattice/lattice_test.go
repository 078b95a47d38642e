package lattice

import (
	"math"
	"testing"

	apperrors "bop/internal/errors"
)

const tolerance = 1e-9

// T=2, S0=4, u=2, d=0.5, K=5, r=0.25 gives p* = 0.5.
var textbook = Params{Steps: 2, Spot: 4, Up: 2, Down: 0.5, Strike: 5, Rate: 0.25}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Abs(b))
}

func TestBuildTree(t *testing.T) {
	stock, err := BuildTree(textbook)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	want := []float64{4, 2, 8, 1, 4, 4, 16}
	if len(stock) != len(want) {
		t.Fatalf("len = %d, want %d", len(stock), len(want))
	}
	for i := range want {
		if stock[i] != want[i] {
			t.Errorf("S[%d] = %v, want %v", i, stock[i], want[i])
		}
	}
}

func TestTreeSize(t *testing.T) {
	tests := []struct {
		steps int
		want  int
	}{
		{0, 1},
		{1, 3},
		{2, 7},
		{10, 2047},
	}
	for _, tt := range tests {
		got, err := TreeSize(tt.steps)
		if err != nil {
			t.Fatalf("TreeSize(%d): %v", tt.steps, err)
		}
		if got != tt.want {
			t.Errorf("TreeSize(%d) = %d, want %d", tt.steps, got, tt.want)
		}
	}

	if _, err := TreeSize(-1); !apperrors.Is(err, apperrors.ErrInvalidModel) {
		t.Errorf("TreeSize(-1) error = %v, want ErrInvalidModel", err)
	}
	if _, err := TreeSize(MaxTreeSteps + 1); !apperrors.Is(err, apperrors.ErrAllocation) {
		t.Errorf("TreeSize(%d) error = %v, want ErrAllocation", MaxTreeSteps+1, err)
	}
}

func TestTreeMemoryBound(t *testing.T) {
	// Two float64 buffers of the largest accepted tree.
	size, err := TreeSize(MaxTreeSteps)
	if err != nil {
		t.Fatalf("TreeSize(%d): %v", MaxTreeSteps, err)
	}
	if bytes := 2 * size * 8; bytes > 512<<20 {
		t.Errorf("largest tree needs %d bytes, want at most 512 MiB", bytes)
	}

	deep := Params{Steps: MaxTreeSteps + 1, Spot: 100, Up: 1.1, Down: 0.9, Strike: 100, Rate: 0.01}
	for _, kind := range []Kind{Put, Call} {
		if _, err := PriceAmerican(deep, kind); !apperrors.Is(err, apperrors.ErrAllocation) {
			t.Errorf("PriceAmerican(T=%d, %s) error = %v, want ErrAllocation", deep.Steps, kind, err)
		}
		if _, err := PriceEuropean(deep, kind); !apperrors.Is(err, apperrors.ErrAllocation) {
			t.Errorf("PriceEuropean(T=%d, %s) error = %v, want ErrAllocation", deep.Steps, kind, err)
		}
	}
}

func TestRiskNeutral(t *testing.T) {
	p, err := RiskNeutral(textbook)
	if err != nil {
		t.Fatalf("RiskNeutral: %v", err)
	}
	if !almostEqual(p, 0.5) {
		t.Errorf("p* = %v, want 0.5", p)
	}
}

func TestPayoff(t *testing.T) {
	tests := []struct {
		kind   Kind
		spot   float64
		strike float64
		want   float64
	}{
		{Put, 4, 5, 1},
		{Put, 8, 5, 0},
		{Call, 16, 5, 11},
		{Call, 4, 5, 0},
		{Call, 5, 5, 0},
	}
	for _, tt := range tests {
		if got := Payoff(tt.kind, tt.spot, tt.strike); got != tt.want {
			t.Errorf("Payoff(%v, %v, %v) = %v, want %v", tt.kind, tt.spot, tt.strike, got, tt.want)
		}
	}
}

func TestTextbookPrices(t *testing.T) {
	tests := []struct {
		name     string
		contract Contract
		want     float64
	}{
		{"european call", Contract{European, Call}, 1.76},
		{"american put", Contract{American, Put}, 1.36},
		// European put: leaves 4,1,1,0 -> node1 2.0, node2 0.4 -> root 0.96
		{"european put", Contract{European, Put}, 0.96},
		// Early exercise of a call on a non-dividend stock never pays when r >= 0.
		{"american call", Contract{American, Call}, 1.76},
	}

	for _, engine := range []Engine{EngineTree, EngineRecombining} {
		pr := &Pricer{Engine: engine}
		for _, tt := range tests {
			t.Run(engine.String()+"/"+tt.name, func(t *testing.T) {
				res, err := pr.Price(textbook, tt.contract)
				if err != nil {
					t.Fatalf("Price: %v", err)
				}
				if !almostEqual(res.Price, tt.want) {
					t.Errorf("price = %.12f, want %.12f", res.Price, tt.want)
				}
				if !almostEqual(res.RiskNeutral, 0.5) {
					t.Errorf("p* = %v, want 0.5", res.RiskNeutral)
				}
			})
		}
	}
}

func TestPriceEuropeanAndAmerican(t *testing.T) {
	call, err := PriceEuropean(textbook, Call)
	if err != nil {
		t.Fatalf("PriceEuropean: %v", err)
	}
	if !almostEqual(call, 1.76) {
		t.Errorf("european call = %v, want 1.76", call)
	}

	put, err := PriceAmerican(textbook, Put)
	if err != nil {
		t.Fatalf("PriceAmerican: %v", err)
	}
	if !almostEqual(put, 1.36) {
		t.Errorf("american put = %v, want 1.36", put)
	}
}

func TestZeroStepsIsImmediatePayoff(t *testing.T) {
	p := Params{Steps: 0, Spot: 4, Up: 2, Down: 0.5, Strike: 5, Rate: 0.25}

	for _, engine := range []Engine{EngineTree, EngineRecombining} {
		pr := &Pricer{Engine: engine}
		for _, c := range []Contract{{European, Put}, {American, Put}, {European, Call}, {American, Call}} {
			res, err := pr.Price(p, c)
			if err != nil {
				t.Fatalf("%s %s: %v", engine, c, err)
			}
			want := Payoff(c.Kind, p.Spot, p.Strike)
			if res.Price != want {
				t.Errorf("%s %s: price = %v, want %v", engine, c, res.Price, want)
			}
			if res.Nodes != 1 {
				t.Errorf("%s %s: nodes = %d, want 1", engine, c, res.Nodes)
			}
		}
	}
}

func TestInvalidModels(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		field  string
	}{
		{"degenerate", Params{Steps: 2, Spot: 4, Up: 1.1, Down: 1.1, Strike: 5, Rate: 0.05}, "up"},
		{"negative steps", Params{Steps: -1, Spot: 4, Up: 2, Down: 0.5, Strike: 5, Rate: 0.25}, "steps"},
		{"zero spot", Params{Steps: 2, Spot: 0, Up: 2, Down: 0.5, Strike: 5, Rate: 0.25}, "spot"},
		{"nan strike", Params{Steps: 2, Spot: 4, Up: 2, Down: 0.5, Strike: math.NaN(), Rate: 0.25}, "strike"},
		{"inf up", Params{Steps: 2, Spot: 4, Up: math.Inf(1), Down: 0.5, Strike: 5, Rate: 0.25}, "up"},
		{"negative down", Params{Steps: 2, Spot: 4, Up: 2, Down: -0.5, Strike: 5, Rate: 0.25}, "down"},
		{"negative strike", Params{Steps: 2, Spot: 4, Up: 2, Down: 0.5, Strike: -1, Rate: 0.25}, "strike"},
		{"rate at -1", Params{Steps: 2, Spot: 4, Up: 2, Down: 0.5, Strike: 5, Rate: -1}, "rate"},
		{"up below down", Params{Steps: 2, Spot: 4, Up: 0.5, Down: 2, Strike: 5, Rate: 0.25}, "up"},
		{"rate above up", Params{Steps: 2, Spot: 4, Up: 2, Down: 0.5, Strike: 5, Rate: 1.5}, "rate"},
		{"rate below down", Params{Steps: 2, Spot: 4, Up: 2, Down: 0.5, Strike: 5, Rate: -0.6}, "rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PriceEuropean(tt.params, Call)
			if !apperrors.Is(err, apperrors.ErrInvalidModel) {
				t.Fatalf("error = %v, want ErrInvalidModel", err)
			}
			var me *apperrors.ModelError
			if !apperrors.As(err, &me) {
				t.Fatalf("error %v is not a ModelError", err)
			}
			if me.Field != tt.field {
				t.Errorf("field = %q, want %q", me.Field, tt.field)
			}

			if _, err := PriceAmerican(tt.params, Put); !apperrors.Is(err, apperrors.ErrInvalidModel) {
				t.Errorf("american error = %v, want ErrInvalidModel", err)
			}
		})
	}
}

func TestPermissivePolicy(t *testing.T) {
	// 1+r = 2.5 > u, so p* = 1.333...
	p := Params{Steps: 2, Spot: 4, Up: 2, Down: 0.5, Strike: 5, Rate: 1.5}

	strict := &Pricer{}
	if _, err := strict.Price(p, Contract{European, Call}); !apperrors.Is(err, apperrors.ErrInvalidModel) {
		t.Fatalf("strict error = %v, want ErrInvalidModel", err)
	}

	permissive := &Pricer{Policy: PolicyPermissive}
	res, err := permissive.Price(p, Contract{European, Call})
	if err != nil {
		t.Fatalf("permissive: %v", err)
	}
	if !almostEqual(res.RiskNeutral, 4.0/3.0) {
		t.Errorf("p* = %v, want 4/3", res.RiskNeutral)
	}

	// Degenerate models stay rejected regardless of policy.
	p.Down = p.Up
	if _, err := permissive.Price(p, Contract{European, Call}); !apperrors.Is(err, apperrors.ErrInvalidModel) {
		t.Errorf("degenerate permissive error = %v, want ErrInvalidModel", err)
	}
}

func TestStepLimits(t *testing.T) {
	p := textbook
	p.Steps = 5

	pr := &Pricer{MaxSteps: 4}
	if _, err := pr.Price(p, Contract{European, Call}); !apperrors.Is(err, apperrors.ErrAllocation) {
		t.Errorf("error = %v, want ErrAllocation", err)
	}

	p.Steps = DefaultMaxSteps + 1
	if _, err := (&Pricer{}).Price(p, Contract{European, Call}); !apperrors.Is(err, apperrors.ErrAllocation) {
		t.Errorf("default limit error = %v, want ErrAllocation", err)
	}

	p.Steps = MaxRecombiningSteps + 1
	rp := &Pricer{MaxSteps: MaxRecombiningSteps + 10, Engine: EngineRecombining}
	if _, err := rp.Price(p, Contract{European, Call}); !apperrors.Is(err, apperrors.ErrAllocation) {
		t.Errorf("recombining error = %v, want ErrAllocation", err)
	}
}

func TestRecombiningHandlesLargeSteps(t *testing.T) {
	// 500 steps is far beyond the explicit tree but linear for the recombining engine.
	p := Params{Steps: 500, Spot: 100, Up: 1.01, Down: 1 / 1.01, Strike: 100, Rate: 0.0001}
	pr := &Pricer{MaxSteps: 1000, Engine: EngineRecombining}

	eu, err := pr.Price(p, Contract{European, Put})
	if err != nil {
		t.Fatalf("european: %v", err)
	}
	am, err := pr.Price(p, Contract{American, Put})
	if err != nil {
		t.Fatalf("american: %v", err)
	}
	if eu.Nodes != 501 {
		t.Errorf("nodes = %d, want 501", eu.Nodes)
	}
	if am.Price < eu.Price {
		t.Errorf("american %v < european %v", am.Price, eu.Price)
	}
	if eu.Price <= 0 || eu.Price >= p.Strike {
		t.Errorf("european put %v outside (0, K)", eu.Price)
	}
}

func TestParseEnums(t *testing.T) {
	if k, err := ParseKind("CALL"); err != nil || k != Call {
		t.Errorf("ParseKind(CALL) = %v, %v", k, err)
	}
	if _, err := ParseKind("straddle"); err == nil {
		t.Errorf("ParseKind(straddle) should fail")
	}
	if s, err := ParseStyle("American"); err != nil || s != American {
		t.Errorf("ParseStyle(American) = %v, %v", s, err)
	}
	if _, err := ParseStyle("bermudan"); err == nil {
		t.Errorf("ParseStyle(bermudan) should fail")
	}
	if p, err := ParsePolicy(""); err != nil || p != PolicyStrict {
		t.Errorf("ParsePolicy(\"\") = %v, %v", p, err)
	}
	if e, err := ParseEngine("recombining"); err != nil || e != EngineRecombining {
		t.Errorf("ParseEngine(recombining) = %v, %v", e, err)
	}
	if got := (Contract{American, Put}).String(); got != "american put" {
		t.Errorf("Contract.String() = %q", got)
	}
}

func TestStrictAcceptsBoundaryProbabilities(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		pStar float64
	}{
		{"d equals 1+r", Params{Steps: 2, Spot: 4, Up: 2, Down: 1.25, Strike: 5, Rate: 0.25}, 0},
		{"u equals 1+r", Params{Steps: 2, Spot: 4, Up: 1.25, Down: 0.5, Strike: 5, Rate: 0.25}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.p, PolicyStrict)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !almostEqual(got, tt.pStar) {
				t.Errorf("p* = %v, want %v", got, tt.pStar)
			}
		})
	}

	past := Params{Steps: 2, Spot: 4, Up: 1.2, Down: 0.5, Strike: 5, Rate: 0.25}
	if _, err := Validate(past, PolicyStrict); !apperrors.Is(err, apperrors.ErrInvalidModel) {
		t.Errorf("u < 1+r: error = %v, want ErrInvalidModel", err)
	}
}
