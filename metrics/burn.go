package metrics

import (
	"math"

	"zro-tracker/database/models"
)

const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// DailyBurn is the token quantity equivalent to the day's USD fees at the
// day's price. The price resolver guarantees positive prices, so the zero
// branch is an invariant guard, not a runtime path.
func DailyBurn(metric *models.DailyMetric) float64 {
	if metric.Price <= 0 {
		return 0
	}
	return metric.TotalFeeUSD / metric.Price
}

func TotalBurn(metrics []*models.DailyMetric) float64 {
	total := 0.0
	for _, metric := range metrics {
		total += DailyBurn(metric)
	}
	return total
}

func TotalUSDValue(metrics []*models.DailyMetric) float64 {
	total := 0.0
	for _, metric := range metrics {
		total += metric.TotalFeeUSD
	}
	return total
}

func TotalMessages(metrics []*models.DailyMetric) uint {
	total := uint(0)
	for _, metric := range metrics {
		total += metric.MessageCount
	}
	return total
}

// Trend is an ordinary least-squares fit of message count against 0-based
// day index within the supplied window.
type Trend struct {
	Slope               float64 `json:"slope"`
	Intercept           float64 `json:"intercept"`
	Direction           string  `json:"direction"`
	PercentChangePerDay float64 `json:"percent_change_per_day"`
}

func LinearTrend(metrics []*models.DailyMetric) Trend {
	n := len(metrics)
	if n == 0 {
		return Trend{Direction: TrendStable}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, metric := range metrics {
		x, y := float64(i), float64(metric.MessageCount)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	var slope float64
	denom := float64(n)*sumXX - sumX*sumX
	if denom != 0 {
		slope = (float64(n)*sumXY - sumX*sumY) / denom
	}
	intercept := (sumY - slope*sumX) / float64(n)

	trend := Trend{
		Slope:     slope,
		Intercept: intercept,
		Direction: TrendStable,
	}
	if slope > 0 {
		trend.Direction = TrendIncreasing
	} else if slope < 0 {
		trend.Direction = TrendDecreasing
	}

	meanCount := sumY / float64(n)
	if meanCount != 0 {
		trend.PercentChangePerDay = slope / meanCount * 100
	}

	return trend
}

// ForecastVolume projects the window's linear trend forward, one value per
// future day. Projections floor at zero since counts cannot be negative, but
// are not capped above.
func ForecastVolume(metrics []*models.DailyMetric, daysAhead int) []uint {
	trend := LinearTrend(metrics)
	windowLength := len(metrics)

	volumes := make([]uint, 0, daysAhead)
	for day := 1; day <= daysAhead; day++ {
		projected := math.Round(trend.Slope*float64(windowLength+day-1) + trend.Intercept)
		if projected < 0 {
			projected = 0
		}
		volumes = append(volumes, uint(projected))
	}
	return volumes
}

type BurnForecast struct {
	DaysAhead      int     `json:"days_ahead"`
	DailyBurn      float64 `json:"daily_burn"`
	TotalBurn      float64 `json:"total_burn"`
	TotalUSDValue  float64 `json:"total_usd_value"`
	AvgDailyFeeUSD float64 `json:"avg_daily_fee_usd"`
	AvgPrice       float64 `json:"avg_price"`
}

// ForecastBurn assumes the window's average daily fee and average price hold
// for every future day. The volume trend is deliberately not projected onto
// fee growth; that flat-average model is a product decision carried over
// from the dashboard this feeds.
func ForecastBurn(metrics []*models.DailyMetric, daysAhead int, currentPrice float64) BurnForecast {
	forecast := BurnForecast{DaysAhead: daysAhead, AvgPrice: currentPrice}

	if len(metrics) > 0 {
		forecast.AvgDailyFeeUSD = TotalUSDValue(metrics) / float64(len(metrics))

		sumPrice := 0.0
		for _, metric := range metrics {
			sumPrice += metric.Price
		}
		if avgPrice := sumPrice / float64(len(metrics)); avgPrice > 0 {
			forecast.AvgPrice = avgPrice
		}
	}

	if forecast.AvgPrice > 0 {
		forecast.DailyBurn = forecast.AvgDailyFeeUSD / forecast.AvgPrice
	}
	forecast.TotalBurn = float64(daysAhead) * forecast.DailyBurn
	forecast.TotalUSDValue = float64(daysAhead) * forecast.AvgDailyFeeUSD

	return forecast
}
