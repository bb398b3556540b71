package domain

import "time"

// EvaluationRecord es el resultado de evaluar un contrato en un run.
// Se crea una vez por contrato y no se muta después.
type EvaluationRecord struct {
	MarketID     string
	Title        string
	TargetTimeET string
	ThresholdSPX float64

	// Inputs resueltos para la evaluación
	StrikeProxy float64 // threshold mapeado a unidades del proxy (SPX/ratio)
	IV          float64 // IV anualizada usada como sigma
	TYears      float64 // tiempo hasta la hora objetivo, en años

	// Outputs del pipeline
	ProbModel    float64 // probabilidad del modelo, ya acotada al clip range
	ProbAdjusted float64 // probabilidad tras el tilt de gamma
	Mid          float64 // precio mid cotizado
	Fee          float64 // fee estimado por contrato
	EVYes        float64
	EVNo         float64
	BestEdge     float64 // max(EVYes, EVNo)
	Signal       Signal
}

// RunReport es el resultado de un run completo: los escalares a nivel de
// run más los records evaluados (ya rankeados y truncados a top-N).
// Cada run es independiente; no se retiene estado entre runs.
type RunReport struct {
	ScannedAt time.Time
	Spot      float64
	GEXRaw    float64
	Regime    float64 // score en [-1, +1]

	Evaluated int // contratos evaluados con éxito
	Skipped   int // contratos descartados (target pasado, IV inválida, etc.)

	Records []EvaluationRecord

	// NoData marca un run degradado a "nada que evaluar" (sin quotes, sin
	// expiries en la ventana, sin spot). Distinto de GEXRaw == 0, que es
	// un cero medido sobre superficies vacías.
	NoData bool
	Note   string // razón legible del NoData
}
