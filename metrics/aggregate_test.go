package metrics

import (
	"testing"

	"github.com/go-playground/assert/v2"
	"zro-tracker/common"
	"zro-tracker/types"
)

func TestAggregate_Density(t *testing.T) {
	dates := common.EnumerateDates("2025-04-01", "2025-04-10")
	analyticsData := map[string]*types.MessageStats{
		"2025-04-02": {MessageCount: 10, AvgFee: 1, MedianFee: 1},
		"2025-04-05": {MessageCount: 20, AvgFee: 2, MedianFee: 2},
		"2025-04-09": {MessageCount: 30, AvgFee: 3, MedianFee: 3},
	}
	prices := ResolvePrices(dates, map[string]float64{"2025-04-01": 4}, 1)

	dailyMetrics := Aggregate(dates, analyticsData, prices)

	if len(dailyMetrics) != 10 {
		t.Fatalf("expected 10 records over a 10-day range, got %d", len(dailyMetrics))
	}

	zeroed := 0
	for _, metric := range dailyMetrics {
		if metric.Price != 4 {
			t.Errorf("record %s has price %f, want 4", metric.Date, metric.Price)
		}
		if _, ok := analyticsData[metric.Date]; !ok {
			assert.Equal(t, metric.MessageCount, uint(0))
			assert.Equal(t, metric.TotalFeeUSD, 0.0)
			zeroed++
		}
	}
	assert.Equal(t, zeroed, 7)
}

func TestAggregate_TotalFeeIsCountTimesAverage(t *testing.T) {
	dates := []string{"2025-04-01"}
	analyticsData := map[string]*types.MessageStats{
		"2025-04-01": {MessageCount: 100, AvgFee: 2.5, MedianFee: 2.0},
	}

	dailyMetrics := Aggregate(dates, analyticsData, map[string]float64{"2025-04-01": 3})

	assert.Equal(t, dailyMetrics[0].TotalFeeUSD, 250.0)
	assert.Equal(t, dailyMetrics[0].MedianFee, 2.0)
}

func TestAggregate_OrderFollowsDates(t *testing.T) {
	dates := common.EnumerateDates("2025-04-01", "2025-04-03")

	dailyMetrics := Aggregate(dates, nil, ResolvePrices(dates, nil, 1))

	for i, metric := range dailyMetrics {
		assert.Equal(t, metric.Date, dates[i])
	}
}
