package storage

// sqlite.go — histórico de runs del scanner.
//
// Estrategia:
//   - `runs`: una fila por run con los escalares (spot, GEX crudo, regime,
//     contadores). El id es un UUID para poder correlacionar con los logs.
//   - `evaluations`: una fila por contrato evaluado del run (el top-N ya
//     rankeado que se mostró). Los runs NoData no llegan aquí.
//   - Prune automático al arrancar: runs (y sus evaluations) > 30 días.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/gexscan/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
-- Escalares por run de evaluación
CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    scanned_at DATETIME NOT NULL,
    spot       REAL     NOT NULL,
    gex_raw    REAL     NOT NULL,
    regime     REAL     NOT NULL,
    evaluated  INTEGER  NOT NULL DEFAULT 0,
    skipped    INTEGER  NOT NULL DEFAULT 0
);

-- Records evaluados (el top-N que se mostró)
CREATE TABLE IF NOT EXISTS evaluations (
    run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    market_id     TEXT NOT NULL,
    title         TEXT,
    target_time   TEXT NOT NULL,
    threshold_spx REAL NOT NULL,
    strike_proxy  REAL NOT NULL,
    iv            REAL NOT NULL,
    t_years       REAL NOT NULL,
    prob_model    REAL NOT NULL,
    prob_adj      REAL NOT NULL,
    mid           REAL NOT NULL,
    fee           REAL NOT NULL,
    ev_yes        REAL NOT NULL,
    ev_no         REAL NOT NULL,
    best_edge     REAL NOT NULL,
    signal        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_at       ON runs(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_eval_run      ON evaluations(run_id);
CREATE INDEX IF NOT EXISTS idx_eval_edge     ON evaluations(best_edge DESC);
`

// retentionRuns es la ventana de retención del histórico.
const retentionRuns = 30 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia los runs antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: enable fks: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste los escalares del run y sus records en una transacción.
func (s *SQLiteStorage) SaveRun(ctx context.Context, report domain.RunReport) error {
	if report.NoData {
		return nil // los runs sin datos no aportan histórico
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	runID := uuid.New().String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, scanned_at, spot, gex_raw, regime, evaluated, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, report.ScannedAt.UTC(), report.Spot, report.GEXRaw, report.Regime,
		report.Evaluated, report.Skipped,
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO evaluations
			(run_id, market_id, title, target_time, threshold_spx, strike_proxy,
			 iv, t_years, prob_model, prob_adj, mid, fee, ev_yes, ev_no,
			 best_edge, signal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range report.Records {
		if _, err := stmt.ExecContext(ctx,
			runID,
			rec.MarketID,
			rec.Title,
			rec.TargetTimeET,
			rec.ThresholdSPX,
			rec.StrikeProxy,
			rec.IV,
			rec.TYears,
			rec.ProbModel,
			rec.ProbAdjusted,
			rec.Mid,
			rec.Fee,
			rec.EVYes,
			rec.EVNo,
			rec.BestEdge,
			string(rec.Signal),
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert evaluation %s: %w", rec.MarketID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// History devuelve los runs del rango dado con sus records, ordenados por
// fecha descendente. Los records de cada run vuelven por best_edge desc,
// como se mostraron.
func (s *SQLiteStorage) History(ctx context.Context, from, to time.Time) ([]domain.RunReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scanned_at, spot, gex_raw, regime, evaluated, skipped
		FROM runs
		WHERE scanned_at BETWEEN ? AND ?
		ORDER BY scanned_at DESC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.History: query runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.RunReport
	var ids []string
	for rows.Next() {
		var report domain.RunReport
		var id, scannedAt string
		if err := rows.Scan(&id, &scannedAt, &report.Spot, &report.GEXRaw,
			&report.Regime, &report.Evaluated, &report.Skipped); err != nil {
			return nil, fmt.Errorf("storage.History: scan run: %w", err)
		}
		report.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
		reports = append(reports, report)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.History: iterate runs: %w", err)
	}

	for i, id := range ids {
		records, err := s.loadEvaluations(ctx, id)
		if err != nil {
			return nil, err
		}
		reports[i].Records = records
	}
	return reports, nil
}

// loadEvaluations carga los records de un run.
func (s *SQLiteStorage) loadEvaluations(ctx context.Context, runID string) ([]domain.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT market_id, title, target_time, threshold_spx, strike_proxy,
		       iv, t_years, prob_model, prob_adj, mid, fee, ev_yes, ev_no,
		       best_edge, signal
		FROM evaluations
		WHERE run_id = ?
		ORDER BY best_edge DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.History: query evaluations: %w", err)
	}
	defer rows.Close()

	var records []domain.EvaluationRecord
	for rows.Next() {
		var rec domain.EvaluationRecord
		var signal string
		if err := rows.Scan(&rec.MarketID, &rec.Title, &rec.TargetTimeET,
			&rec.ThresholdSPX, &rec.StrikeProxy, &rec.IV, &rec.TYears,
			&rec.ProbModel, &rec.ProbAdjusted, &rec.Mid, &rec.Fee,
			&rec.EVYes, &rec.EVNo, &rec.BestEdge, &signal); err != nil {
			return nil, fmt.Errorf("storage.History: scan evaluation: %w", err)
		}
		rec.Signal = domain.Signal(signal)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close cierra la conexión a la base de datos limpiamente.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra los runs fuera de la ventana de retención.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE scanned_at < ?`, cutoff)
	if err != nil {
		slog.Warn("storage prune failed", "err", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Debug("storage pruned old runs", "rows", n)
	}
}
