package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/gexscan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testReport() domain.RunReport {
	return domain.RunReport{
		ScannedAt: time.Now().UTC(),
		Spot:      695.42,
		GEXRaw:    1.67e9,
		Regime:    0.52,
		Evaluated: 2,
		Skipped:   1,
		Records: []domain.EvaluationRecord{
			{
				MarketID: "SPX-15H-T6950", Title: "SPX above 6950?",
				TargetTimeET: "15:00", ThresholdSPX: 6950, StrikeProxy: 695,
				IV: 0.18, TYears: 0.0003, ProbModel: 0.48, ProbAdjusted: 0.465,
				Mid: 0.55, Fee: 0.0173, EVYes: -0.102, EVNo: 0.068,
				BestEdge: 0.068, Signal: domain.SignalBuyNo,
			},
			{
				MarketID: "SPX-16H-T7000", Title: "SPX above 7000?",
				TargetTimeET: "16:00", ThresholdSPX: 7000, StrikeProxy: 700,
				IV: 0.19, TYears: 0.00045, ProbModel: 0.2, ProbAdjusted: 0.194,
				Mid: 0.22, Fee: 0.012, EVYes: -0.038, EVNo: 0.014,
				BestEdge: 0.014, Signal: domain.SignalNoTrade,
			},
		},
	}
}

func TestSQLiteStorage_SaveAndHistory(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, testReport()))

	reports, err := s.History(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	got := reports[0]
	assert.Equal(t, 695.42, got.Spot)
	assert.Equal(t, 1.67e9, got.GEXRaw)
	assert.Equal(t, 0.52, got.Regime)
	assert.Equal(t, 2, got.Evaluated)
	assert.Equal(t, 1, got.Skipped)

	require.Len(t, got.Records, 2)
	// Records por best_edge desc
	assert.Equal(t, "SPX-15H-T6950", got.Records[0].MarketID)
	assert.Equal(t, domain.SignalBuyNo, got.Records[0].Signal)
	assert.Equal(t, 0.068, got.Records[0].BestEdge)
	assert.Equal(t, "16:00", got.Records[1].TargetTimeET)
}

func TestSQLiteStorage_NoDataRunIsNotStored(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	report := domain.RunReport{ScannedAt: time.Now(), NoData: true, Note: "no expiries"}
	require.NoError(t, s.SaveRun(ctx, report))

	reports, err := s.History(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestSQLiteStorage_HistoryRespectsRange(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	report := testReport()
	report.ScannedAt = time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, s.SaveRun(ctx, report))

	// Fuera del rango pedido
	reports, err := s.History(ctx, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, reports)

	// Dentro del rango amplio
	reports, err = s.History(ctx, time.Now().Add(-72*time.Hour), time.Now())
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestSQLiteStorage_MultipleRunsNewestFirst(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	older := testReport()
	older.ScannedAt = time.Now().UTC().Add(-time.Hour)
	older.Spot = 690

	newer := testReport()
	newer.Spot = 700

	require.NoError(t, s.SaveRun(ctx, older))
	require.NoError(t, s.SaveRun(ctx, newer))

	reports, err := s.History(ctx, time.Now().Add(-2*time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 700.0, reports[0].Spot)
	assert.Equal(t, 690.0, reports[1].Spot)
}
