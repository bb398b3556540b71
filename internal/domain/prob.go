package domain

import "math"

// DigitalProbResult es el resultado del modelo de probabilidad digital.
// Valid marca si los inputs eran válidos: con Valid=false la probabilidad
// es indefinida (P y D2 quedan en NaN) y el caller debe descartar el
// contrato en vez de propagar el valor.
type DigitalProbResult struct {
	P     float64
	D2    float64
	Sigma float64
	T     float64
	Valid bool
}

// DigitalProb calcula la probabilidad risk-neutral de que el subyacente
// supere K en T años bajo el supuesto lognormal de Black–Scholes:
//
//	d2 = [ln(S/K) + (r - 0.5σ²)T] / (σ√T)
//	P(S_T > K) = N(d2)
//
// Con S, K, sigma o T no positivos devuelve Valid=false en vez de fallar.
// Función pura: mismos inputs, mismo output.
func DigitalProb(S, K, sigma, tYears, r float64) DigitalProbResult {
	if S <= 0 || K <= 0 || sigma <= 0 || tYears <= 0 {
		return DigitalProbResult{P: math.NaN(), D2: math.NaN(), Sigma: sigma, T: tYears}
	}

	volSqrt := sigma * math.Sqrt(tYears)
	d2 := (math.Log(S/K) + (r-0.5*sigma*sigma)*tYears) / volSqrt
	return DigitalProbResult{P: NormCDF(d2), D2: d2, Sigma: sigma, T: tYears, Valid: true}
}

// NormCDF es la CDF de la normal estándar. Usa erfc para estabilidad
// numérica en la cola izquierda.
func NormCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// NormPDF es la densidad de la normal estándar.
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// Clamp acota x al rango [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
