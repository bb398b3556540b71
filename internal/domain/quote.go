package domain

import "fmt"

// ContractQuote es un mercado binario de Kalshi cotizado contra un
// threshold del índice a una hora objetivo del día. Se construye una vez
// desde los datos externos y es inmutable durante una pasada de evaluación.
type ContractQuote struct {
	MarketID     string
	Title        string
	TargetTimeET string  // hora objetivo "HH:MM" en Eastern
	ThresholdSPX float64 // nivel del threshold en unidades SPX
	Mid          float64 // precio mid cotizado, 0..1
	YesBid       float64
	YesAsk       float64
}

// Validate comprueba los invariantes de la cotización:
// 0 <= bid <= mid <= ask <= 1 y threshold positivo.
func (q ContractQuote) Validate() error {
	if q.MarketID == "" {
		return fmt.Errorf("quote: market_id vacío")
	}
	if q.ThresholdSPX <= 0 {
		return fmt.Errorf("quote %s: threshold no positivo: %v", q.MarketID, q.ThresholdSPX)
	}
	if q.YesBid < 0 || q.YesAsk > 1 || q.YesBid > q.Mid || q.Mid > q.YesAsk {
		return fmt.Errorf("quote %s: precios fuera de 0 <= bid <= mid <= ask <= 1 (bid=%v mid=%v ask=%v)",
			q.MarketID, q.YesBid, q.Mid, q.YesAsk)
	}
	return nil
}

// Spread devuelve el spread bid/ask cotizado.
func (q ContractQuote) Spread() float64 {
	return q.YesAsk - q.YesBid
}
