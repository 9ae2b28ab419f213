package metrics

import (
	"zro-tracker/database/models"
	"zro-tracker/types"
)

// Aggregate builds one DailyMetric per date. Dates missing from the
// analytics data still produce a record with zeroed counts and fees, keeping
// one-row-per-date density for charting and forecasting.
//
// TotalFeeUSD is always messageCount times the average fee, never a total
// taken from the analytics source directly.
func Aggregate(dates []string, analyticsData map[string]*types.MessageStats, prices map[string]float64) []*models.DailyMetric {
	dailyMetrics := make([]*models.DailyMetric, 0, len(dates))

	for _, date := range dates {
		metric := &models.DailyMetric{
			Date:  date,
			Price: prices[date],
		}
		if stats, ok := analyticsData[date]; ok {
			metric.MessageCount = stats.MessageCount
			metric.AvgFee = stats.AvgFee
			metric.MedianFee = stats.MedianFee
			metric.TotalFeeUSD = float64(stats.MessageCount) * stats.AvgFee
		}
		dailyMetrics = append(dailyMetrics, metric)
	}

	return dailyMetrics
}
