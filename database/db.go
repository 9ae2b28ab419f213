package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"zro-tracker/config"
	"zro-tracker/database/models"
)

// MetricsDB is the storage port for daily metrics and the sync status log.
// Backend selection happens here, once, at construction. Everything above
// this package talks to it through these methods only.
type MetricsDB struct {
	db *gorm.DB

	logger *zap.SugaredLogger
}

func New(cfg *config.DBConfig) *MetricsDB {
	var dialector gorm.Dialector
	switch cfg.Backend {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.User, cfg.Password, cfg.Host, cfg.DB)
		dialector = mysql.Open(dsn)
	default:
		dialector = sqlite.Open(cfg.Path)
	}

	db, dbErr := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if dbErr != nil {
		panic(dbErr)
	}

	dbErr = db.AutoMigrate(&models.DailyMetric{})
	if dbErr != nil {
		panic(dbErr)
	}

	dbErr = db.AutoMigrate(&models.SyncStatus{})
	if dbErr != nil {
		panic(dbErr)
	}

	return &MetricsDB{
		db: db,

		logger: zap.S().Named("[db]"),
	}
}

// UpsertDailyMetric inserts or replaces the row keyed by date. Re-running
// the same range produces identical stored state, never duplicate rows.
func (db *MetricsDB) UpsertDailyMetric(metric *models.DailyMetric) error {
	result := db.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"message_count", "avg_fee", "median_fee", "total_fee_usd", "price",
		}),
	}).Create(metric)
	if result.Error != nil {
		db.logger.Errorf("Upsert daily metric [%s] error: %v", metric.Date, result.Error)
	}
	return result.Error
}

// GetDailyMetrics returns rows with date in [startDate, endDate] inclusive,
// ascending by date.
func (db *MetricsDB) GetDailyMetrics(startDate, endDate string) ([]*models.DailyMetric, error) {
	metrics := make([]*models.DailyMetric, 0)
	result := db.db.
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date asc").
		Find(&metrics)
	return metrics, result.Error
}

// HasAnyData reports whether the metrics table holds at least one row. An
// empty table means "needs initialization", which is not an error condition.
func (db *MetricsDB) HasAnyData() bool {
	var count int64
	db.db.Model(&models.DailyMetric{}).Count(&count)
	return count > 0
}

// GetLastSyncStatus returns the most recently inserted status row, or nil
// when no sync has ever been recorded.
func (db *MetricsDB) GetLastSyncStatus() *models.SyncStatus {
	var status models.SyncStatus
	result := db.db.Order("id desc").First(&status)
	if result.Error != nil {
		return nil
	}
	return &status
}

// GetLastSuccessfulSync returns the most recent success row. Failed
// attempts stay in the log for operators but never advance the resume
// point.
func (db *MetricsDB) GetLastSuccessfulSync() *models.SyncStatus {
	var status models.SyncStatus
	result := db.db.Where("result = ?", models.SyncResultSuccess).Order("id desc").First(&status)
	if result.Error != nil {
		return nil
	}
	return &status
}

// AppendSyncStatus appends one row to the status log. Append-only.
func (db *MetricsDB) AppendSyncStatus(status *models.SyncStatus) error {
	result := db.db.Create(status)
	if result.Error != nil {
		db.logger.Errorf("Append sync status error: %v", result.Error)
	}
	return result.Error
}

func (db *MetricsDB) Close() {
	underlying, err := db.db.DB()
	if err == nil {
		_ = underlying.Close()
	}
	db.logger.Info("Database closed")
}
