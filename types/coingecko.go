package types

// Wire types for the CoinGecko API.

// MarketChartResponse holds [timestamp_ms, value] sample pairs. Samples may
// arrive more than once per day.
type MarketChartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

type SimplePriceResponse map[string]map[string]float64
