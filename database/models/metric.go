package models

// DailyMetric is one calendar day's aggregated message, fee and price
// figures, the atomic unit of the whole system. One row per UTC date,
// created or replaced wholesale by the syncer, never partially mutated.
type DailyMetric struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	Date         string  `gorm:"size:10;uniqueIndex" json:"date"`
	MessageCount uint    `json:"message_count"`
	AvgFee       float64 `json:"avg_fee"`
	MedianFee    float64 `json:"median_fee"`
	TotalFeeUSD  float64 `json:"total_fee_usd"`
	Price        float64 `json:"price"`
}

const (
	SyncResultSuccess = "success"
	SyncResultError   = "error"
)

// SyncStatus is the append-only audit log of synchronization attempts. The
// most recently inserted row decides where the next sync starts. Rows are
// never updated in place.
type SyncStatus struct {
	ID             uint   `gorm:"primaryKey" json:"-"`
	SyncDate       string `gorm:"size:10" json:"sync_date"`
	Timestamp      int64  `json:"timestamp"`
	Result         string `gorm:"size:10" json:"result"`
	RecordsWritten int    `json:"records_written"`
	ErrorDetail    string `json:"error_detail,omitempty"`
}
