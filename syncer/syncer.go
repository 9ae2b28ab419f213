package syncer

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"zro-tracker/common"
	"zro-tracker/config"
	"zro-tracker/database/models"
	"zro-tracker/metrics"
	"zro-tracker/types"
)

// Store is the slice of the storage port the syncer writes through.
type Store interface {
	UpsertDailyMetric(metric *models.DailyMetric) error
	AppendSyncStatus(status *models.SyncStatus) error
	GetLastSuccessfulSync() *models.SyncStatus
}

// MessageSource delivers aggregated daily message and fee figures.
type MessageSource interface {
	GetDailyMessageStats(fromDate, toDate string) (map[string]*types.MessageStats, error)
}

// PriceSource delivers token price quotes. Both calls degrade instead of
// failing; price unavailability must never block message ingestion.
type PriceSource interface {
	GetCurrentPrice() float64
	GetHistoricalPrices(fromDate, toDate string) map[string]float64
}

// SyncError is any failure that aborted a sync invocation. It is recorded
// in the status log before being returned.
type SyncError struct {
	Stage string
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed during %s: %s", e.Stage, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

type Result struct {
	RecordsWritten int    `json:"records_written"`
	FromDate       string `json:"from_date"`
	ToDate         string `json:"to_date"`
}

// Syncer reconciles the two external daily series into gap-free metric rows
// and upserts them by date. One invocation runs to completion or failure;
// overlapping invocations converge through the idempotent upsert.
type Syncer struct {
	store    Store
	messages MessageSource
	prices   PriceSource

	startDate    string
	defaultPrice float64

	logger *zap.SugaredLogger
}

func New(store Store, messages MessageSource, prices PriceSource, cfg *config.SyncConfig) *Syncer {
	return &Syncer{
		store:    store,
		messages: messages,
		prices:   prices,

		startDate:    cfg.StartDate,
		defaultPrice: cfg.DefaultPrice,

		logger: zap.S().Named("[syncer]"),
	}
}

// SyncLatest advances from the last recorded sync through today. Used by
// the cron trigger.
func (s *Syncer) SyncLatest() (*Result, error) {
	return s.Sync("", "", false)
}

// Sync synchronizes [fromDate, toDate]. Empty bounds are resolved from the
// status log (day after the last sync, or the program epoch) and today.
// An effective start past the end is the no-op "already up to date" path:
// nothing is written, not even a status row.
func (s *Syncer) Sync(fromDate, toDate string, forceFullResync bool) (*Result, error) {
	fromDate, toDate = s.resolveRange(fromDate, toDate, forceFullResync)
	if fromDate > toDate {
		s.logger.Infof("Already up to date, next range would start [%s] after [%s]", fromDate, toDate)
		return &Result{RecordsWritten: 0, FromDate: fromDate, ToDate: toDate}, nil
	}

	s.logger.Infof("Start syncing range [%s, %s]", fromDate, toDate)

	// The two sources are independent; fetch them together and join before
	// aggregation.
	var (
		analyticsData map[string]*types.MessageStats
		analyticsErr  error
		sparsePrices  map[string]float64
		currentPrice  float64

		fetchWG sync.WaitGroup
	)

	fetchWG.Add(2)
	go func() {
		defer fetchWG.Done()
		analyticsData, analyticsErr = s.messages.GetDailyMessageStats(fromDate, toDate)
	}()
	go func() {
		defer fetchWG.Done()
		sparsePrices = s.prices.GetHistoricalPrices(fromDate, toDate)
		currentPrice = s.prices.GetCurrentPrice()
	}()
	fetchWG.Wait()

	if analyticsErr != nil {
		return nil, s.fail("fetch", analyticsErr)
	}

	fallback := s.defaultPrice
	if currentPrice > 0 {
		fallback = currentPrice
	}

	dates := common.EnumerateDates(fromDate, toDate)
	resolvedPrices := metrics.ResolvePrices(dates, sparsePrices, fallback)
	dailyMetrics := metrics.Aggregate(dates, analyticsData, resolvedPrices)

	for _, metric := range dailyMetrics {
		if err := s.store.UpsertDailyMetric(metric); err != nil {
			return nil, s.fail("write", err)
		}
	}

	if err := s.store.AppendSyncStatus(&models.SyncStatus{
		SyncDate:       toDate,
		Timestamp:      time.Now().Unix(),
		Result:         models.SyncResultSuccess,
		RecordsWritten: len(dailyMetrics),
	}); err != nil {
		return nil, &SyncError{Stage: "status", Err: err}
	}

	s.logger.Infof("Synced [%d] daily records for range [%s, %s]", len(dailyMetrics), fromDate, toDate)

	return &Result{RecordsWritten: len(dailyMetrics), FromDate: fromDate, ToDate: toDate}, nil
}

func (s *Syncer) resolveRange(fromDate, toDate string, forceFullResync bool) (string, string) {
	if fromDate == "" {
		lastSuccess := s.store.GetLastSuccessfulSync()
		if lastSuccess != nil && !forceFullResync {
			fromDate = common.NextDate(lastSuccess.SyncDate)
		} else {
			fromDate = s.startDate
		}
	}
	if toDate == "" {
		toDate = common.TodayUTC()
	}
	return fromDate, toDate
}

// fail records the failure in the status log, then hands it back to the
// caller. The log keeps error history even for syncs that never completed.
// Error rows are stamped with the current date, not the attempted range, so
// they never advance the resume point.
func (s *Syncer) fail(stage string, err error) error {
	s.logger.Errorf("Sync failed during %s: %v", stage, err)

	if statusErr := s.store.AppendSyncStatus(&models.SyncStatus{
		SyncDate:    common.TodayUTC(),
		Timestamp:   time.Now().Unix(),
		Result:      models.SyncResultError,
		ErrorDetail: err.Error(),
	}); statusErr != nil {
		s.logger.Errorf("Append error status failed: %v", statusErr)
	}

	return &SyncError{Stage: stage, Err: err}
}
