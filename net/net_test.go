package net

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"zro-tracker/config"
)

func testNetConfig() *config.NetConfig {
	return &config.NetConfig{
		DuneApiKey:      "test-key",
		DuneQueryID:     1,
		CoinID:          "layerzero",
		PollInterval:    2,
		MaxPollAttempts: 30,
		RequestTimeout:  30,
	}
}

func TestDuneClient_RequestTimeoutSet(t *testing.T) {
	dc := NewDuneClient(testNetConfig())

	// Every request carries a hard deadline; the poll attempt budget only
	// bounds the wait if no single call can hang forever.
	assert.Equal(t, dc.client.GetClient().Timeout, 30*time.Second)
}

func TestCoinGeckoClient_RequestTimeoutSet(t *testing.T) {
	cc := NewCoinGeckoClient(testNetConfig(), 2.0)

	assert.Equal(t, cc.client.GetClient().Timeout, 30*time.Second)
}
