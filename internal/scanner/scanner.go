package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/gexscan/internal/domain"
	"github.com/alejandrodnm/gexscan/internal/ports"
)

// Config contiene los tunables del scanner. Ninguno es derivado.
type Config struct {
	ScanInterval time.Duration

	MinEdgeNet  float64 // edge mínimo de EV neto de fees
	MaxTrades   int     // top-N a mostrar
	ProbClipMin float64
	ProbClipMax float64

	GEXTiltMaxAbs    float64 // tilt relativo máximo +/-
	GEXLookaheadDays int     // expiries dentro de N días
	GEXScale         float64 // escala del tanh de compresión

	SPXToSPYRatio      float64
	FeeK               float64
	ContractMultiplier float64

	DryRun bool // un solo ciclo, sin loop
}

// DefaultConfig devuelve los tunables por defecto.
func DefaultConfig() Config {
	return Config{
		ScanInterval:       60 * time.Second,
		MinEdgeNet:         0.04,
		MaxTrades:          12,
		ProbClipMin:        0.01,
		ProbClipMax:        0.99,
		GEXTiltMaxAbs:      0.06,
		GEXLookaheadDays:   2,
		GEXScale:           1e9,
		SPXToSPYRatio:      10.0,
		FeeK:               0.07,
		ContractMultiplier: 100.0,
	}
}

// Scanner es el orquestador del loop de evaluación: fetch de datos →
// regime score → evaluación por contrato → ranking → notify/persist.
type Scanner struct {
	cfg       Config
	data      ports.MarketDataProvider
	quotes    ports.QuoteProvider
	storage   ports.Storage
	notifier  ports.Notifier
	evaluator *Evaluator
	now       func() time.Time
	loc       *time.Location
}

// New crea un Scanner con todas las dependencias inyectadas.
// storage puede ser nil (dry-run sin persistencia).
func New(
	cfg Config,
	data ports.MarketDataProvider,
	quotes ports.QuoteProvider,
	storage ports.Storage,
	notifier ports.Notifier,
) (*Scanner, error) {
	loc, err := SessionLocation()
	if err != nil {
		return nil, err
	}
	now := time.Now
	return &Scanner{
		cfg:       cfg,
		data:      data,
		quotes:    quotes,
		storage:   storage,
		notifier:  notifier,
		evaluator: NewEvaluator(cfg, data, now, loc),
		now:       now,
		loc:       loc,
	}, nil
}

// WithClock fija el reloj del scanner (solo para tests deterministas).
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	s.evaluator.now = now
	return s
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// Si cfg.DryRun está activo, solo ejecuta un ciclo.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"dry_run", s.cfg.DryRun,
		"lookahead_days", s.cfg.GEXLookaheadDays,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if s.cfg.DryRun {
			return err
		}
	}

	if s.cfg.DryRun {
		return nil
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo y devuelve el report.
func (s *Scanner) RunOnce(ctx context.Context) (domain.RunReport, error) {
	return s.cycle(ctx)
}

// runCycle ejecuta un ciclo completo y notifica/persiste el resultado.
func (s *Scanner) runCycle(ctx context.Context) error {
	start := time.Now()

	report, err := s.cycle(ctx)
	if err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, report); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if s.storage != nil && !report.NoData {
		if err := s.storage.SaveRun(ctx, report); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("scan cycle complete",
		"evaluated", report.Evaluated,
		"skipped", report.Skipped,
		"no_data", report.NoData,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// cycle hace fetch → regime → evaluate → rank y devuelve el report.
// Las condiciones "sin datos" degradan a un report NoData, no a error;
// los fallos del collaborator externo sí son errores del ciclo.
func (s *Scanner) cycle(ctx context.Context) (domain.RunReport, error) {
	scannedAt := s.now()

	quotes, err := s.quotes.LoadContractQuotes(ctx)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("scanner.cycle: load quotes: %w", err)
	}
	if len(quotes) == 0 {
		return noDataReport(scannedAt, "no contract quotes loaded"), nil
	}

	spot, err := s.data.Spot(ctx)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("scanner.cycle: fetch spot: %w", err)
	}
	if spot <= 0 {
		return domain.RunReport{}, fmt.Errorf("scanner.cycle: spot no positivo: %v", spot)
	}

	expiries, err := s.data.Expiries(ctx, s.cfg.GEXLookaheadDays)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("scanner.cycle: list expiries: %w", err)
	}
	if len(expiries) == 0 {
		// Sin expiries no hay "GEX=0": es un run sin datos y se reporta así.
		return noDataReport(scannedAt, "no expiries within lookahead window (market closed/holiday?)"), nil
	}

	gexRaw := s.buildGEXProxy(ctx, spot, expiries)
	regime := domain.RegimeScore(gexRaw, s.cfg.GEXScale)

	var records []domain.EvaluationRecord
	skipped := 0
	for _, quote := range quotes {
		rec, err := s.evaluator.Evaluate(ctx, quote, spot, expiries[0], regime)
		if err != nil {
			slog.Debug("contract skipped", "market_id", quote.MarketID, "err", err)
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return domain.RunReport{
		ScannedAt: scannedAt,
		Spot:      spot,
		GEXRaw:    gexRaw,
		Regime:    regime,
		Evaluated: len(records),
		Skipped:   skipped,
		Records:   domain.TopByEdge(records, s.cfg.MaxTrades),
	}, nil
}

// buildGEXProxy agrega el proxy de GEX de calls y puts de cada expiry
// dentro de la ventana, usando el T de cada expiry hasta su cierre.
// Un expiry que falla se salta con warning: un proxy parcial sigue siendo
// un cero/valor medido, no un run sin datos.
func (s *Scanner) buildGEXProxy(ctx context.Context, spot float64, expiries []time.Time) float64 {
	now := s.now()
	total := 0.0

	for _, expiry := range expiries {
		tYears := yearsBetween(now, expiryClose(expiry, s.loc))
		if tYears <= 0 {
			continue
		}

		surface, err := s.data.OptionSurface(ctx, expiry)
		if err != nil {
			slog.Warn("option surface fetch failed, skipping expiry",
				"expiry", expiry.Format("2006-01-02"),
				"err", err,
			)
			continue
		}

		total += domain.SurfaceGEX(spot, surface.Calls, tYears, s.cfg.ContractMultiplier)
		total += domain.SurfaceGEX(spot, surface.Puts, tYears, s.cfg.ContractMultiplier)
	}
	return total
}

// noDataReport construye el report de un run degradado a "nada que evaluar".
func noDataReport(at time.Time, note string) domain.RunReport {
	return domain.RunReport{ScannedAt: at, NoData: true, Note: note}
}
