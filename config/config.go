package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	HttpPort     int      `toml:"http_port"`
	AllowOrigins []string `toml:"allow_origins"`
}

type NetConfig struct {
	DuneApiKey      string `toml:"dune_api_key"`
	DuneQueryID     int    `toml:"dune_query_id"`
	CoinGeckoApiKey string `toml:"coingecko_api_key"`
	CoinID          string `toml:"coin_id"`
	PollInterval    int    `toml:"poll_interval"`
	MaxPollAttempts int    `toml:"max_poll_attempts"`
	RequestTimeout  int    `toml:"request_timeout"`
}

type LogConfig struct {
	Path  string `toml:"log_path"`
	File  string `toml:"log_file"`
	Level string `toml:"log_level"`
}

type DBConfig struct {
	Backend  string `toml:"backend"`
	Host     string `toml:"host"`
	DB       string `toml:"db"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Path     string `toml:"path"`
}

type SyncConfig struct {
	StartDate    string  `toml:"start_date"`
	DefaultPrice float64 `toml:"default_price"`
	CronSpec     string  `toml:"cron_spec"`
}

type BotConfig struct {
	ReportBotToken string   `toml:"report_bot_token"`
	ChatID         int64    `toml:"chat_id"`
	ValidUsers     []string `toml:"valid_users"`
}

type Config struct {
	Server ServerConfig `toml:"server"`
	Net    NetConfig    `toml:"net"`
	Log    LogConfig    `toml:"log"`
	DB     DBConfig     `toml:"database"`
	Sync   SyncConfig   `toml:"sync"`
	Bot    BotConfig    `toml:"bot"`
}

func LoadConfig() *Config {
	var config Config
	_, err := toml.DecodeFile("./config.toml", &config)
	if err != nil {
		panic(fmt.Sprintf("Load config error: %s", err))
	}

	config.fillDefaults()
	if err := config.Validate(); err != nil {
		panic(err)
	}

	return &config
}

func (c *Config) fillDefaults() {
	if c.Server.HttpPort == 0 {
		c.Server.HttpPort = 8080
	}
	if c.Net.CoinID == "" {
		c.Net.CoinID = "layerzero"
	}
	if c.Net.PollInterval == 0 {
		c.Net.PollInterval = 2
	}
	if c.Net.MaxPollAttempts == 0 {
		c.Net.MaxPollAttempts = 30
	}
	if c.Net.RequestTimeout == 0 {
		c.Net.RequestTimeout = 30
	}
	if c.DB.Backend == "" {
		c.DB.Backend = "sqlite"
	}
	if c.DB.Path == "" {
		c.DB.Path = "./data/shadow-burn.db"
	}
	if c.Sync.StartDate == "" {
		c.Sync.StartDate = "2024-12-27"
	}
	if c.Sync.DefaultPrice == 0 {
		c.Sync.DefaultPrice = 2.0
	}
	if c.Sync.CronSpec == "" {
		c.Sync.CronSpec = "0 0 1 * * *"
	}
}

// Validate fails before any network call when a required setting is absent.
func (c *Config) Validate() error {
	if c.Net.DuneApiKey == "" {
		return fmt.Errorf("config: missing required setting [net] dune_api_key")
	}
	if c.Net.DuneQueryID == 0 {
		return fmt.Errorf("config: missing required setting [net] dune_query_id")
	}
	switch c.DB.Backend {
	case "sqlite":
	case "mysql":
		if c.DB.Host == "" || c.DB.DB == "" || c.DB.User == "" {
			return fmt.Errorf("config: mysql backend requires [database] host, db and user")
		}
	default:
		return fmt.Errorf("config: unknown [database] backend %q, expect mysql or sqlite", c.DB.Backend)
	}
	return nil
}
