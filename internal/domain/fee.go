package domain

// FeePerContract aproxima el fee por contrato de Kalshi de forma suave:
//
//	fee ≈ k · P · (1-P), con P en dólares (0..1)
//
// El fee schedule real usa ceil() por contrato; aquí se evita para que el
// EV siga siendo continuo y el ranking no salte en los bordes del fee.
// Simétrico alrededor de 0.5, cero en P=0 y P=1, siempre >= 0.
func FeePerContract(priceDollars, k float64) float64 {
	p := Clamp(priceDollars, 0, 1)
	return k * p * (1 - p)
}
