package scanner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alejandrodnm/gexscan/internal/domain"
	"github.com/alejandrodnm/gexscan/internal/ports"
	"github.com/alejandrodnm/gexscan/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockData struct {
	spot     float64
	spotErr  error
	expiries []time.Time
	expErr   error
	surfaces map[string]domain.ExpirySurface // key: fecha YYYY-MM-DD
	surfErr  error
	iv       float64
	ivErr    error
}

func (m *mockData) Spot(context.Context) (float64, error) { return m.spot, m.spotErr }

func (m *mockData) Expiries(context.Context, int) ([]time.Time, error) {
	return m.expiries, m.expErr
}

func (m *mockData) OptionSurface(_ context.Context, expiry time.Time) (domain.ExpirySurface, error) {
	if m.surfErr != nil {
		return domain.ExpirySurface{}, m.surfErr
	}
	return m.surfaces[expiry.Format("2006-01-02")], nil
}

func (m *mockData) NearestImpliedVol(context.Context, time.Time, float64) (float64, error) {
	return m.iv, m.ivErr
}

type mockQuotes struct {
	quotes []domain.ContractQuote
	err    error
}

func (m *mockQuotes) LoadContractQuotes(context.Context) ([]domain.ContractQuote, error) {
	return m.quotes, m.err
}

type mockNotifier struct {
	reports []domain.RunReport
	err     error
}

func (m *mockNotifier) Notify(_ context.Context, report domain.RunReport) error {
	m.reports = append(m.reports, report)
	return m.err
}

type mockStorage struct {
	saved []domain.RunReport
	err   error
}

func (m *mockStorage) SaveRun(_ context.Context, report domain.RunReport) error {
	m.saved = append(m.saved, report)
	return m.err
}

func (m *mockStorage) History(context.Context, time.Time, time.Time) ([]domain.RunReport, error) {
	return nil, nil
}

func (m *mockStorage) Close() error { return nil }

// --- helpers ---

var _ ports.MarketDataProvider = (*mockData)(nil)
var _ ports.QuoteProvider = (*mockQuotes)(nil)
var _ ports.Notifier = (*mockNotifier)(nil)
var _ ports.Storage = (*mockStorage)(nil)

func etNoon(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return time.Date(2026, 2, 10, 12, 0, 0, 0, loc)
}

func makeQuote(id string, threshold, mid float64) domain.ContractQuote {
	return domain.ContractQuote{
		MarketID:     id,
		Title:        "SPX above?",
		TargetTimeET: "15:00",
		ThresholdSPX: threshold,
		Mid:          mid,
		YesBid:       mid - 0.02,
		YesAsk:       mid + 0.02,
	}
}

func makeData(now time.Time) *mockData {
	expiry := now.Add(24 * time.Hour)
	return &mockData{
		spot:     695.0,
		expiries: []time.Time{expiry},
		surfaces: map[string]domain.ExpirySurface{
			expiry.Format("2006-01-02"): {
				Expiry: expiry,
				Calls:  []domain.OptionSurfacePoint{{Strike: 695, OpenInterest: 1000, ImpliedVol: 0.2}},
				Puts:   []domain.OptionSurfacePoint{{Strike: 690, OpenInterest: 800, ImpliedVol: 0.22}},
			},
		},
		iv: 0.18,
	}
}

func newScanner(t *testing.T, cfg scanner.Config, data ports.MarketDataProvider, quotes ports.QuoteProvider, store ports.Storage, notif ports.Notifier, now time.Time) *scanner.Scanner {
	t.Helper()
	s, err := scanner.New(cfg, data, quotes, store, notif)
	require.NoError(t, err)
	return s.WithClock(func() time.Time { return now })
}

// --- tests ---

func TestScanner_RunOnce_FullCycle(t *testing.T) {
	now := etNoon(t)
	data := makeData(now)
	quotes := &mockQuotes{quotes: []domain.ContractQuote{
		makeQuote("near", 6950, 0.55),  // cerca del spot → prob media
		makeQuote("deep", 6700, 0.55),  // muy ITM → BUY_YES, edge grande
		makeQuote("far", 7200, 0.55),   // muy OTM → BUY_NO
	}}

	s := newScanner(t, scanner.DefaultConfig(), data, quotes, nil, &mockNotifier{}, now)
	report, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.False(t, report.NoData)
	assert.Equal(t, 695.0, report.Spot)
	assert.Equal(t, 3, report.Evaluated)
	assert.Equal(t, 0, report.Skipped)
	require.Len(t, report.Records, 3)

	// GEX medido sobre calls+puts, regime acotado
	assert.Greater(t, report.GEXRaw, 0.0)
	assert.Greater(t, report.Regime, 0.0)
	assert.Less(t, report.Regime, 1.0)

	// Ranking por best edge descendente. El contrato muy OTM cotizado a
	// 0.55 tiene el mayor edge (por el lado NO).
	assert.GreaterOrEqual(t, report.Records[0].BestEdge, report.Records[1].BestEdge)
	assert.GreaterOrEqual(t, report.Records[1].BestEdge, report.Records[2].BestEdge)
	assert.Equal(t, "far", report.Records[0].MarketID)
	assert.Equal(t, domain.SignalBuyNo, report.Records[0].Signal)
	assert.Equal(t, domain.SignalBuyYes, report.Records[1].Signal)
}

func TestScanner_RunOnce_TruncatesToMaxTrades(t *testing.T) {
	now := etNoon(t)
	cfg := scanner.DefaultConfig()
	cfg.MaxTrades = 2

	quotes := &mockQuotes{quotes: []domain.ContractQuote{
		makeQuote("a", 6950, 0.55),
		makeQuote("b", 6700, 0.55),
		makeQuote("c", 7200, 0.55),
	}}

	s := newScanner(t, cfg, makeData(now), quotes, nil, &mockNotifier{}, now)
	report, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, report.Evaluated)
	assert.Len(t, report.Records, 2)
}

func TestScanner_RunOnce_NoQuotes(t *testing.T) {
	now := etNoon(t)
	s := newScanner(t, scanner.DefaultConfig(), makeData(now), &mockQuotes{}, nil, &mockNotifier{}, now)

	report, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.True(t, report.NoData)
	assert.Contains(t, report.Note, "no contract quotes")
}

func TestScanner_RunOnce_NoExpiriesIsNoData(t *testing.T) {
	now := etNoon(t)
	data := makeData(now)
	data.expiries = nil // mercado cerrado / festivo

	quotes := &mockQuotes{quotes: []domain.ContractQuote{makeQuote("a", 6950, 0.55)}}
	s := newScanner(t, scanner.DefaultConfig(), data, quotes, nil, &mockNotifier{}, now)

	report, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.True(t, report.NoData, "sin expiries en ventana debe ser NoData, no GEX=0")
	assert.Contains(t, report.Note, "no expiries")
	assert.Empty(t, report.Records)
}

func TestScanner_RunOnce_EmptySurfacesAreMeasuredZero(t *testing.T) {
	// Expiries presentes pero superficies vacías: GEX=0 es un cero medido
	// y el run sigue siendo evaluable. Distinto del caso sin expiries.
	now := etNoon(t)
	data := makeData(now)
	data.surfaces = map[string]domain.ExpirySurface{}

	quotes := &mockQuotes{quotes: []domain.ContractQuote{makeQuote("a", 6950, 0.55)}}
	s := newScanner(t, scanner.DefaultConfig(), data, quotes, nil, &mockNotifier{}, now)

	report, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.False(t, report.NoData)
	assert.Equal(t, 0.0, report.GEXRaw)
	assert.Equal(t, 0.0, report.Regime)
	assert.Equal(t, 1, report.Evaluated)
}

func TestScanner_RunOnce_SpotFailureIsCycleError(t *testing.T) {
	now := etNoon(t)
	data := makeData(now)
	data.spotErr = errors.New("provider down")

	quotes := &mockQuotes{quotes: []domain.ContractQuote{makeQuote("a", 6950, 0.55)}}
	s := newScanner(t, scanner.DefaultConfig(), data, quotes, nil, &mockNotifier{}, now)

	_, err := s.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestScanner_RunOnce_SkipsContractsWithoutIV(t *testing.T) {
	now := etNoon(t)
	data := makeData(now)
	data.iv = 0
	data.ivErr = ports.ErrNoImpliedVol

	quotes := &mockQuotes{quotes: []domain.ContractQuote{
		makeQuote("a", 6950, 0.55),
		makeQuote("b", 6700, 0.55),
	}}
	s := newScanner(t, scanner.DefaultConfig(), data, quotes, nil, &mockNotifier{}, now)

	report, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.False(t, report.NoData)
	assert.Equal(t, 0, report.Evaluated)
	assert.Equal(t, 2, report.Skipped)
	assert.Empty(t, report.Records)
}

func TestScanner_Run_DryRunNotifiesAndPersists(t *testing.T) {
	now := etNoon(t)
	cfg := scanner.DefaultConfig()
	cfg.DryRun = true

	store := &mockStorage{}
	notif := &mockNotifier{}
	quotes := &mockQuotes{quotes: []domain.ContractQuote{makeQuote("a", 6950, 0.55)}}

	s := newScanner(t, cfg, makeData(now), quotes, store, notif, now)
	require.NoError(t, s.Run(context.Background()))

	require.Len(t, notif.reports, 1)
	require.Len(t, store.saved, 1)
	assert.Equal(t, 1, store.saved[0].Evaluated)
}

func TestScanner_Run_NoDataRunIsNotPersisted(t *testing.T) {
	now := etNoon(t)
	cfg := scanner.DefaultConfig()
	cfg.DryRun = true

	store := &mockStorage{}
	notif := &mockNotifier{}

	s := newScanner(t, cfg, makeData(now), &mockQuotes{}, store, notif, now)
	require.NoError(t, s.Run(context.Background()))

	// El usuario se entera igualmente, pero no se guarda un run vacío
	require.Len(t, notif.reports, 1)
	assert.True(t, notif.reports[0].NoData)
	assert.Empty(t, store.saved)
}
