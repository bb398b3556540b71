package domain

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property tests de los invariantes numéricos del pipeline. Cubren los
// rangos que los tests de ejemplo no barren: el fee es simétrico para
// cualquier precio, el regime score nunca sale de (-1,1), el tilt nunca
// supera su cota y la decisión de señal es una función total.

func propParams() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(1)
	return parameters
}

func TestProperty_FeeSymmetricAndNonNegative(t *testing.T) {
	properties := gopter.NewProperties(propParams())

	properties.Property("fee(P) == fee(1-P) y fee >= 0", prop.ForAll(
		func(p, k float64) bool {
			a := FeePerContract(p, k)
			b := FeePerContract(1-p, k)
			return a >= 0 && math.Abs(a-b) < 1e-12
		},
		gen.Float64Range(0, 1),
		gen.Float64Range(0.001, 0.5),
	))

	properties.TestingRun(t)
}

func TestProperty_RegimeScoreBoundedMonotone(t *testing.T) {
	properties := gopter.NewProperties(propParams())

	properties.Property("score en (-1,1) para cualquier GEX", prop.ForAll(
		func(gex float64) bool {
			score := RegimeScore(gex, 1e9)
			return score > -1 && score < 1
		},
		gen.Float64Range(-1e15, 1e15),
	))

	properties.Property("score monótono creciente en GEX", prop.ForAll(
		func(a, b float64) bool {
			if a > b {
				a, b = b, a
			}
			return RegimeScore(a, 1e9) <= RegimeScore(b, 1e9)
		},
		gen.Float64Range(-1e12, 1e12),
		gen.Float64Range(-1e12, 1e12),
	))

	properties.TestingRun(t)
}

func TestProperty_TiltNeverExceedsBound(t *testing.T) {
	properties := gopter.NewProperties(propParams())

	properties.Property("|tilt| <= maxAbs para cualquier score", prop.ForAll(
		func(regime, maxAbs float64) bool {
			return math.Abs(Tilt(regime, maxAbs)) <= maxAbs+1e-15
		},
		gen.Float64Range(-50, 50), // incluye scores fuera de [-1,1]
		gen.Float64Range(0, 0.10),
	))

	properties.TestingRun(t)
}

func TestProperty_SignalIsTotal(t *testing.T) {
	properties := gopter.NewProperties(propParams())

	properties.Property("exactamente una señal para cada input válido", prop.ForAll(
		func(pAdj, mid, fee, minEdge float64) bool {
			sig := ChooseSignal(pAdj, mid, fee, minEdge)
			return sig == SignalBuyYes || sig == SignalBuyNo || sig == SignalNoTrade
		},
		gen.Float64Range(0.01, 0.99),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 0.02),
		gen.Float64Range(0, 0.2),
	))

	properties.TestingRun(t)
}

func TestProperty_DigitalProbValidInputsStayInUnitInterval(t *testing.T) {
	properties := gopter.NewProperties(propParams())

	properties.Property("p en (0,1) para todo input válido", prop.ForAll(
		func(s, k, sigma, tYears float64) bool {
			res := DigitalProb(s, k, sigma, tYears, 0)
			return res.Valid && res.P > 0 && res.P < 1
		},
		// Rangos donde N(d2) no llega a underflow: estrictamente dentro de
		// (0,1) también en aritmética de doble precisión.
		gen.Float64Range(500, 900),
		gen.Float64Range(500, 900),
		gen.Float64Range(0.15, 1.0),
		gen.Float64Range(0.05, 2.0),
	))

	properties.TestingRun(t)
}
