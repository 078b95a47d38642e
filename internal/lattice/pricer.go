package lattice

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	apperrors "bop/internal/errors"
)

// Pricer prices contracts with a configurable engine, validation policy and
// step limit. The zero value prices on the tree engine with strict
// validation and DefaultMaxSteps.
type Pricer struct {
	MaxSteps int
	Policy   Policy
	Engine   Engine
	Logger   *zerolog.Logger
}

// Result is the outcome of one successful pricing call.
type Result struct {
	Price       float64       `json:"price"`
	RiskNeutral float64       `json:"risk_neutral_probability"`
	Nodes       int           `json:"nodes"`
	Engine      string        `json:"engine"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// NewPricer creates a Pricer with the given settings.
func NewPricer(maxSteps int, policy Policy, engine Engine, logger zerolog.Logger) *Pricer {
	return &Pricer{
		MaxSteps: maxSteps,
		Policy:   policy,
		Engine:   engine,
		Logger:   &logger,
	}
}

func (pr *Pricer) logger() *zerolog.Logger {
	if pr.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return pr.Logger
}

func (pr *Pricer) maxSteps() int {
	if pr.MaxSteps > 0 {
		return pr.MaxSteps
	}
	return DefaultMaxSteps
}

// Price validates p and prices the contract. A failed call always returns a
// non-nil error; the returned Result is only meaningful when err is nil.
func (pr *Pricer) Price(p Params, c Contract) (Result, error) {
	log := pr.logger()
	start := time.Now()

	if p.Steps > pr.maxSteps() {
		return Result{}, apperrors.NewAllocationError("steps", p.Steps,
			fmt.Sprintf("exceeds the configured limit of %d steps", pr.maxSteps()))
	}

	pStar, err := Validate(p, pr.Policy)
	if err != nil {
		return Result{}, err
	}
	if pStar < 0 || pStar > 1 {
		log.Warn().
			Float64("p_star", pStar).
			Float64("up", p.Up).
			Float64("down", p.Down).
			Float64("rate", p.Rate).
			Msg("Risk-neutral probability outside [0,1], price is not arbitrage-free")
	}

	var price float64
	var nodes int
	switch pr.Engine {
	case EngineRecombining:
		price, nodes, err = priceRecombining(p, c, pStar)
	default:
		var stock []float64
		stock, err = BuildTree(p)
		if err == nil {
			nodes = len(stock)
			price = induct(stock, p.Steps, c, p.Strike, p.Rate, pStar)
		}
	}
	if err != nil {
		return Result{}, err
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Result{}, apperrors.NewModelError("price", price, "induction produced a non-finite value")
	}

	res := Result{
		Price:       price,
		RiskNeutral: pStar,
		Nodes:       nodes,
		Engine:      pr.Engine.String(),
		Elapsed:     time.Since(start),
	}

	log.Debug().
		Str("contract", c.String()).
		Int("steps", p.Steps).
		Int("nodes", nodes).
		Float64("p_star", pStar).
		Str("engine", res.Engine).
		Dur("elapsed", res.Elapsed).
		Float64("price", price).
		Msg("Priced option")

	return res, nil
}

var referencePricer = &Pricer{MaxSteps: MaxTreeSteps}

// PriceEuropean returns the arbitrage-free initial price of a European
// option on the full tree with strict validation.
func PriceEuropean(p Params, kind Kind) (float64, error) {
	res, err := referencePricer.Price(p, Contract{Style: European, Kind: kind})
	if err != nil {
		return 0, err
	}
	return res.Price, nil
}

// PriceAmerican returns the arbitrage-free initial price of an American
// option on the full tree with strict validation.
func PriceAmerican(p Params, kind Kind) (float64, error) {
	res, err := referencePricer.Price(p, Contract{Style: American, Kind: kind})
	if err != nil {
		return 0, err
	}
	return res.Price, nil
}
