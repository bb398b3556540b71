package domain

import "math"

// BSGamma calcula la gamma Black–Scholes de una opción europea
// (call y put comparten gamma):
//
//	gamma = φ(d1) / (S σ √T),  d1 = [ln(S/K) + (r + 0.5σ²)T] / (σ√T)
//
// Devuelve NaN con inputs no positivos.
func BSGamma(S, K, sigma, tYears, r float64) float64 {
	if S <= 0 || K <= 0 || sigma <= 0 || tYears <= 0 {
		return math.NaN()
	}
	volSqrt := sigma * math.Sqrt(tYears)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*tYears) / volSqrt
	return NormPDF(d1) / (S * volSqrt)
}

// SurfaceGEX suma el proxy de exposición dólar-gamma de una superficie:
//
//	GEX = Σ OI · gamma · S² · multiplier
//
// Los puntos con strike, OI o IV no positivos se saltan (no son error),
// igual que los que producen gamma indefinida o no positiva. Una
// superficie vacía devuelve 0.0: un cero medido, no "sin datos".
func SurfaceGEX(spot float64, points []OptionSurfacePoint, tYears, multiplier float64) float64 {
	gex := 0.0
	for _, pt := range points {
		if pt.Strike <= 0 || pt.OpenInterest <= 0 || pt.ImpliedVol <= 0 {
			continue
		}
		gamma := BSGamma(spot, pt.Strike, pt.ImpliedVol, tYears, 0)
		if math.IsNaN(gamma) || gamma <= 0 {
			continue
		}
		gex += pt.OpenInterest * gamma * spot * spot * multiplier
	}
	return gex
}

// RegimeScore comprime el GEX crudo (no acotado) a un score en (-1, +1):
//
//	score = tanh(gex / scale)
//
// Score positivo = régimen "long gamma" (pinning / mean reversion),
// negativo = "short gamma" (trend / expansión). El mapping es heurístico:
// monótono y acotado por contrato, pero la escala es un tunable, no una
// cantidad calibrada. Cambiar la convención de signo es un cambio
// semántico del producto, no un bug fix.
func RegimeScore(gex, scale float64) float64 {
	if scale <= 0 {
		scale = 1e9
	}
	return math.Tanh(gex / scale)
}
