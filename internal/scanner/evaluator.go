package scanner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alejandrodnm/gexscan/internal/domain"
	"github.com/alejandrodnm/gexscan/internal/ports"
)

// Evaluator calcula el pipeline completo de un contrato: probabilidad
// base, tilt de gamma, fee estimado, EVs y señal. Cada evaluación es
// independiente de las demás; el regime score llega ya calculado y es
// read-only dentro del run.
type Evaluator struct {
	cfg  Config
	data ports.MarketDataProvider
	now  func() time.Time
	loc  *time.Location
}

// NewEvaluator crea un Evaluator con la configuración y el provider dados.
func NewEvaluator(cfg Config, data ports.MarketDataProvider, now func() time.Time, loc *time.Location) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{cfg: cfg, data: data, now: now, loc: loc}
}

// Evaluate produce el record de un contrato, o un error si el contrato no
// es evaluable (target pasado, sin IV usable, inputs inválidos). Los
// errores de esta función son "skip este contrato", nunca abortan el run.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	quote domain.ContractQuote,
	spot float64,
	frontExpiry time.Time,
	regime float64,
) (domain.EvaluationRecord, error) {
	tYears, err := timeToTargetYears(e.now(), quote.TargetTimeET, e.loc)
	if err != nil {
		return domain.EvaluationRecord{}, err
	}
	if tYears <= 0 {
		return domain.EvaluationRecord{}, fmt.Errorf("evaluator: %s: target %s ya pasó", quote.MarketID, quote.TargetTimeET)
	}

	// SPX -> proxy (SPY): el threshold se mapea dividiendo por el ratio
	strike := quote.ThresholdSPX / e.cfg.SPXToSPYRatio

	iv, err := e.data.NearestImpliedVol(ctx, frontExpiry, strike)
	if err != nil {
		return domain.EvaluationRecord{}, fmt.Errorf("evaluator: %s: %w", quote.MarketID, err)
	}
	if iv <= 0 || math.IsNaN(iv) || math.IsInf(iv, 0) {
		return domain.EvaluationRecord{}, fmt.Errorf("evaluator: %s: IV inválida: %v", quote.MarketID, iv)
	}

	res := domain.DigitalProb(spot, strike, iv, tYears, 0)
	if !res.Valid {
		return domain.EvaluationRecord{}, fmt.Errorf("evaluator: %s: probabilidad indefinida (spot=%v strike=%v iv=%v T=%v)",
			quote.MarketID, spot, strike, iv, tYears)
	}

	p := domain.Clamp(res.P, e.cfg.ProbClipMin, e.cfg.ProbClipMax)

	// Tilt de gamma: ajuste relativo pequeño y acotado
	tilt := domain.Tilt(regime, e.cfg.GEXTiltMaxAbs)
	pAdj := domain.AdjustProb(p, tilt, e.cfg.ProbClipMin, e.cfg.ProbClipMax)

	fee := domain.FeePerContract(quote.Mid, e.cfg.FeeK)

	evYes := domain.ExpectedValueYes(pAdj, quote.Mid, fee)
	evNo := domain.ExpectedValueYes(1-pAdj, 1-quote.Mid, fee)

	return domain.EvaluationRecord{
		MarketID:     quote.MarketID,
		Title:        quote.Title,
		TargetTimeET: quote.TargetTimeET,
		ThresholdSPX: quote.ThresholdSPX,
		StrikeProxy:  strike,
		IV:           iv,
		TYears:       tYears,
		ProbModel:    p,
		ProbAdjusted: pAdj,
		Mid:          quote.Mid,
		Fee:          fee,
		EVYes:        evYes,
		EVNo:         evNo,
		BestEdge:     math.Max(evYes, evNo),
		Signal:       domain.ChooseSignal(pAdj, quote.Mid, fee, e.cfg.MinEdgeNet),
	}, nil
}
