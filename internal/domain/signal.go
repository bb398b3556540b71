package domain

// Signal es la recomendación discreta para un contrato.
type Signal string

const (
	SignalBuyYes  Signal = "BUY_YES"
	SignalBuyNo   Signal = "BUY_NO"
	SignalNoTrade Signal = "NO_TRADE"
)

// Tilt convierte el regime score en un ajuste relativo acotado.
// Convención de signo: long gamma (score > 0) reduce la probabilidad
// modelada de cruce (pinning), de ahí la negación. |tilt| <= maxAbs
// siempre, por extremo que sea el score — el overlay heurístico no puede
// dominar al modelo base.
func Tilt(regime, maxAbs float64) float64 {
	return -Clamp(regime, -1, 1) * maxAbs
}

// AdjustProb aplica el tilt relativo y reacota al rango de probabilidad.
func AdjustProb(p, tilt, probMin, probMax float64) float64 {
	return Clamp(p*(1+tilt), probMin, probMax)
}

// ExpectedValueYes es el EV de comprar YES a priceYes:
//
//	EV = p_true - price - fee
//
// El EV del lado NO se obtiene con (1-p, 1-price, fee).
func ExpectedValueYes(pTrue, priceYes, fee float64) float64 {
	return pTrue - priceYes - fee
}

// ChooseSignal decide la acción para un contrato dado el EV de cada lado.
// BUY_YES se comprueba antes que BUY_NO: si ambos umbrales pasaran a la
// vez, gana BUY_YES. El orden del desempate es parte del contrato —
// invertirlo cambia resultados.
func ChooseSignal(pAdj, mid, fee, minEdge float64) Signal {
	if ExpectedValueYes(pAdj, mid, fee) >= minEdge {
		return SignalBuyYes
	}
	if ExpectedValueYes(1-pAdj, 1-mid, fee) >= minEdge {
		return SignalBuyNo
	}
	return SignalNoTrade
}
