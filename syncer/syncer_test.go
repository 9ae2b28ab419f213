package syncer

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
	"zro-tracker/config"
	"zro-tracker/database/models"
	"zro-tracker/types"
)

type memStore struct {
	metrics  map[string]models.DailyMetric
	statuses []*models.SyncStatus
}

func newMemStore() *memStore {
	return &memStore{metrics: make(map[string]models.DailyMetric)}
}

func (m *memStore) UpsertDailyMetric(metric *models.DailyMetric) error {
	m.metrics[metric.Date] = *metric
	return nil
}

func (m *memStore) AppendSyncStatus(status *models.SyncStatus) error {
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memStore) GetLastSuccessfulSync() *models.SyncStatus {
	for i := len(m.statuses) - 1; i >= 0; i-- {
		if m.statuses[i].Result == models.SyncResultSuccess {
			return m.statuses[i]
		}
	}
	return nil
}

type fakeMessages struct {
	stats map[string]*types.MessageStats
	err   error

	lastFrom, lastTo string
}

func (f *fakeMessages) GetDailyMessageStats(fromDate, toDate string) (map[string]*types.MessageStats, error) {
	f.lastFrom, f.lastTo = fromDate, toDate
	return f.stats, f.err
}

type fakePrices struct {
	current    float64
	historical map[string]float64
}

func (f *fakePrices) GetCurrentPrice() float64 {
	return f.current
}

func (f *fakePrices) GetHistoricalPrices(fromDate, toDate string) map[string]float64 {
	return f.historical
}

func newTestSyncer(store Store, messages MessageSource, prices PriceSource) *Syncer {
	return New(store, messages, prices, &config.SyncConfig{
		StartDate:    "2024-12-27",
		DefaultPrice: 2.0,
	})
}

func TestSync_IdempotentUpsert(t *testing.T) {
	store := newMemStore()
	messages := &fakeMessages{stats: map[string]*types.MessageStats{
		"2025-05-01": {MessageCount: 100, AvgFee: 2.5, MedianFee: 2.0},
		"2025-05-03": {MessageCount: 50, AvgFee: 1.0, MedianFee: 1.0},
	}}
	prices := &fakePrices{current: 3, historical: map[string]float64{"2025-05-01": 4}}
	s := newTestSyncer(store, messages, prices)

	first, err := s.Sync("2025-05-01", "2025-05-05", false)
	if err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	assert.Equal(t, first.RecordsWritten, 5)

	snapshot := make(map[string]models.DailyMetric, len(store.metrics))
	for date, metric := range store.metrics {
		snapshot[date] = metric
	}

	second, err := s.Sync("2025-05-01", "2025-05-05", false)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	assert.Equal(t, second.RecordsWritten, 5)
	assert.Equal(t, len(store.metrics), 5)

	for date, metric := range snapshot {
		got := store.metrics[date]
		got.ID = metric.ID
		assert.Equal(t, got, metric)
	}
}

func TestSync_RecordContents(t *testing.T) {
	store := newMemStore()
	messages := &fakeMessages{stats: map[string]*types.MessageStats{
		"2025-05-01": {MessageCount: 100, AvgFee: 2.5, MedianFee: 2.0},
	}}
	prices := &fakePrices{current: 3, historical: map[string]float64{"2025-05-01": 4}}
	s := newTestSyncer(store, messages, prices)

	_, err := s.Sync("2025-05-01", "2025-05-02", false)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	withData := store.metrics["2025-05-01"]
	assert.Equal(t, withData.TotalFeeUSD, 250.0)
	assert.Equal(t, withData.Price, 4.0)

	// Gap day: zeroed counts, price forward-filled from the day before.
	gap := store.metrics["2025-05-02"]
	assert.Equal(t, gap.MessageCount, uint(0))
	assert.Equal(t, gap.TotalFeeUSD, 0.0)
	assert.Equal(t, gap.Price, 4.0)
}

func TestSync_NoOpRange(t *testing.T) {
	store := newMemStore()
	s := newTestSyncer(store, &fakeMessages{}, &fakePrices{current: 1})

	result, err := s.Sync("2025-05-10", "2025-05-05", false)
	if err != nil {
		t.Fatalf("no-op sync should not fail: %v", err)
	}

	assert.Equal(t, result.RecordsWritten, 0)
	assert.Equal(t, len(store.metrics), 0)
	if len(store.statuses) != 0 {
		t.Errorf("no-op sync must not append a status entry, got %d", len(store.statuses))
	}
}

func TestSync_FetchFailureLogsErrorStatus(t *testing.T) {
	store := newMemStore()
	messages := &fakeMessages{err: errors.New("dune source error: HTTP 500")}
	s := newTestSyncer(store, messages, &fakePrices{current: 1})

	_, err := s.Sync("2025-05-01", "2025-05-02", false)
	if err == nil {
		t.Fatal("sync should propagate the fetch failure")
	}

	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("expected *SyncError, got %T", err)
	}
	assert.Equal(t, syncErr.Stage, "fetch")

	assert.Equal(t, len(store.metrics), 0)
	if len(store.statuses) != 1 {
		t.Fatalf("expected one error status entry, got %d", len(store.statuses))
	}
	assert.Equal(t, store.statuses[0].Result, models.SyncResultError)
	if store.statuses[0].ErrorDetail == "" {
		t.Error("error status must carry a non-empty detail")
	}
}

func TestSync_ResumesAfterLastSuccess(t *testing.T) {
	store := newMemStore()
	store.statuses = append(store.statuses, &models.SyncStatus{
		SyncDate: "2025-05-03",
		Result:   models.SyncResultSuccess,
	})
	messages := &fakeMessages{stats: map[string]*types.MessageStats{}}
	s := newTestSyncer(store, messages, &fakePrices{current: 1})

	result, err := s.Sync("", "2025-05-06", false)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	assert.Equal(t, result.FromDate, "2025-05-04")
	assert.Equal(t, messages.lastFrom, "2025-05-04")
	assert.Equal(t, result.RecordsWritten, 3)
}

func TestSync_ErrorStatusDoesNotAdvanceResumePoint(t *testing.T) {
	store := newMemStore()
	store.statuses = append(store.statuses,
		&models.SyncStatus{SyncDate: "2025-05-03", Result: models.SyncResultSuccess},
		&models.SyncStatus{SyncDate: "2025-05-20", Result: models.SyncResultError, ErrorDetail: "boom"},
	)
	messages := &fakeMessages{stats: map[string]*types.MessageStats{}}
	s := newTestSyncer(store, messages, &fakePrices{current: 1})

	result, err := s.Sync("", "2025-05-06", false)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	assert.Equal(t, result.FromDate, "2025-05-04")
}

func TestSync_ForceFullResyncStartsAtEpoch(t *testing.T) {
	store := newMemStore()
	store.statuses = append(store.statuses, &models.SyncStatus{
		SyncDate: "2025-05-03",
		Result:   models.SyncResultSuccess,
	})
	messages := &fakeMessages{stats: map[string]*types.MessageStats{}}
	s := newTestSyncer(store, messages, &fakePrices{current: 1})

	result, err := s.Sync("", "2024-12-28", true)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	assert.Equal(t, result.FromDate, "2024-12-27")
	assert.Equal(t, result.RecordsWritten, 2)
}

func TestSync_PriceFallbackWhenSourcesEmpty(t *testing.T) {
	store := newMemStore()
	messages := &fakeMessages{stats: map[string]*types.MessageStats{}}
	// Current price degraded to zero and no history: the configured default
	// must still keep every stored price positive.
	s := newTestSyncer(store, messages, &fakePrices{current: 0, historical: map[string]float64{}})

	_, err := s.Sync("2025-05-01", "2025-05-03", false)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	for date, metric := range store.metrics {
		assert.Equal(t, metric.Price, 2.0)
		if metric.Price <= 0 {
			t.Errorf("price for %s must never be zero", date)
		}
	}
}
