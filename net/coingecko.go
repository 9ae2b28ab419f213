package net

import (
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"zro-tracker/config"
	"zro-tracker/types"
)

const (
	CoinGeckoBaseUrl     = "https://api.coingecko.com/api/v3/"
	SimplePricePath      = "simple/price"
	MarketChartRangePath = "coins/{coin}/market_chart/range"

	priceCacheTTL = 60 * time.Second
)

// CoinGeckoClient fetches the current and historical token price. Price
// unavailability is non-fatal everywhere: the current price degrades to the
// configured default and the range call degrades to an empty mapping, so the
// price resolver's fill policy takes over.
type CoinGeckoClient struct {
	client *resty.Client

	coinID       string
	defaultPrice float64

	cacheLock     sync.Mutex
	cachedPrice   float64
	cachedPriceAt time.Time

	logger *zap.SugaredLogger
}

func NewCoinGeckoClient(cfg *config.NetConfig, defaultPrice float64) *CoinGeckoClient {
	client := resty.New()
	client.SetBaseURL(CoinGeckoBaseUrl)
	client.SetTimeout(time.Duration(cfg.RequestTimeout) * time.Second)
	if cfg.CoinGeckoApiKey != "" {
		client.SetHeader("x-cg-demo-api-key", cfg.CoinGeckoApiKey)
	}

	return &CoinGeckoClient{
		client: client,

		coinID:       cfg.CoinID,
		defaultPrice: defaultPrice,

		logger: zap.S().Named("[coingecko]"),
	}
}

// GetCurrentPrice returns the latest USD quote, cached for 60 seconds.
// Never fails: on any error the last cached quote or the default is returned.
// The cache lock is never held across the network call, so a slow quote
// fetch cannot block concurrent readers. Concurrent refreshes may race; the
// last writer wins, which is fine for a 60-second cache.
func (cc *CoinGeckoClient) GetCurrentPrice() float64 {
	cc.cacheLock.Lock()
	cached, cachedAt := cc.cachedPrice, cc.cachedPriceAt
	cc.cacheLock.Unlock()

	if cached > 0 && time.Since(cachedAt) < priceCacheTTL {
		return cached
	}

	resp, err := cc.client.R().
		SetQueryParams(map[string]string{
			"ids":           cc.coinID,
			"vs_currencies": "usd",
		}).
		Get(SimplePricePath)
	if err != nil || resp.IsError() {
		cc.logger.Warnf("Get current price failed, falling back: %v", err)
		return cc.fallbackPrice(cached)
	}

	var quotes types.SimplePriceResponse
	if err = json.Unmarshal(resp.Body(), &quotes); err != nil {
		cc.logger.Warnf("Decode current price failed, falling back: %v", err)
		return cc.fallbackPrice(cached)
	}

	price := quotes[cc.coinID]["usd"]
	if price <= 0 {
		cc.logger.Warnf("Current price of [%s] missing from response, falling back", cc.coinID)
		return cc.fallbackPrice(cached)
	}

	cc.cacheLock.Lock()
	cc.cachedPrice = price
	cc.cachedPriceAt = time.Now()
	cc.cacheLock.Unlock()

	return price
}

func (cc *CoinGeckoClient) fallbackPrice(cached float64) float64 {
	if cached > 0 {
		return cached
	}
	return cc.defaultPrice
}

// GetHistoricalPrices returns one USD quote per day in [fromDate, toDate],
// keyed by date. Same-day samples collapse to the latest one. On any failure
// the mapping is empty, not an error.
func (cc *CoinGeckoClient) GetHistoricalPrices(fromDate, toDate string) map[string]float64 {
	prices := make(map[string]float64)

	from, err := time.Parse("2006-01-02", fromDate)
	if err != nil {
		cc.logger.Warnf("Bad from date [%s]: %v", fromDate, err)
		return prices
	}
	to, err := time.Parse("2006-01-02", toDate)
	if err != nil {
		cc.logger.Warnf("Bad to date [%s]: %v", toDate, err)
		return prices
	}

	resp, err := cc.client.R().
		SetPathParam("coin", cc.coinID).
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"from":        strconv.FormatInt(from.Unix(), 10),
			"to":          strconv.FormatInt(to.AddDate(0, 0, 1).Unix(), 10),
		}).
		Get(MarketChartRangePath)
	if err != nil || resp.IsError() {
		cc.logger.Warnf("Get historical prices failed, returning empty mapping: %v", err)
		return prices
	}

	var chart types.MarketChartResponse
	if err = json.Unmarshal(resp.Body(), &chart); err != nil {
		cc.logger.Warnf("Decode historical prices failed, returning empty mapping: %v", err)
		return prices
	}

	latestAt := make(map[string]float64)
	for _, sample := range chart.Prices {
		ts, price := sample[0], sample[1]
		if price <= 0 {
			continue
		}
		date := time.UnixMilli(int64(ts)).UTC().Format("2006-01-02")
		if ts >= latestAt[date] {
			latestAt[date] = ts
			prices[date] = price
		}
	}

	cc.logger.Infof("Collapsed [%d] price samples into [%d] daily quotes", len(chart.Prices), len(prices))

	return prices
}
