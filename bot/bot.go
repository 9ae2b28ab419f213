package bot

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"zro-tracker/common"
	"zro-tracker/config"
	"zro-tracker/database"
	"zro-tracker/database/models"
	"zro-tracker/metrics"
	"zro-tracker/net"
	"zro-tracker/syncer"
)

const summaryWindowDays = 30

// Bot is the operator-facing telegram reporter. It answers burn and status
// queries on demand and is pinged by the sync trigger with each outcome.
// Construction returns nil when no token is configured; all methods are
// nil-safe so callers never branch on it.
type Bot struct {
	botApi *tgbotapi.BotAPI
	chatID int64

	db     *database.MetricsDB
	prices *net.CoinGeckoClient
	logger *zap.SugaredLogger

	validUsers map[string]bool
}

func New(cfg *config.BotConfig, db *database.MetricsDB, prices *net.CoinGeckoClient) *Bot {
	if cfg.ReportBotToken == "" {
		return nil
	}

	botApi, err := tgbotapi.NewBotAPI(cfg.ReportBotToken)
	if err != nil {
		panic(err)
	}

	bot := &Bot{
		botApi: botApi,
		chatID: cfg.ChatID,

		db:     db,
		prices: prices,
		logger: zap.S().Named("[report_bot]"),

		validUsers: make(map[string]bool),
	}

	for _, user := range cfg.ValidUsers {
		bot.validUsers[user] = true
	}

	bot.logger.Infof("Telegram report bot authorized on account [%s]", botApi.Self.UserName)

	return bot
}

func (b *Bot) Start() {
	if b == nil {
		return
	}

	go func() {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60

		updates := b.botApi.GetUpdatesChan(u)
		for update := range updates {
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			if !b.isAuthorizedUser(update.Message.From.UserName, update.Message.Chat.ID) {
				continue
			}

			textMsg := ""
			switch update.Message.Command() {
			case "start":
				b.chatID = update.Message.Chat.ID
				b.logger.Infof("Started at chat %s-[%d]", update.Message.Chat.Title, update.Message.Chat.ID)
				textMsg = "Hi! I report daily message volume and shadow burn figures"
			case "burn":
				textMsg = b.burnSummary()
			case "status":
				textMsg = b.syncStatus()
			default:
				textMsg = "Commands: /burn, /status"
			}

			b.sendPlainMessage(update.Message.Chat.ID, textMsg)
		}
	}()
}

// ReportSyncResult pushes the outcome of a scheduled sync to the channel.
func (b *Bot) ReportSyncResult(result *syncer.Result, err error) {
	if b == nil {
		return
	}

	if err != nil {
		b.sendMessageToChannel(fmt.Sprintf("Sync failed: %s", err))
		return
	}
	if result.RecordsWritten == 0 {
		return
	}
	b.sendMessageToChannel(fmt.Sprintf("Synced [%d] daily records for range [%s, %s]",
		result.RecordsWritten, result.FromDate, result.ToDate))
}

func (b *Bot) burnSummary() string {
	today := common.TodayUTC()
	windowStart := time.Now().UTC().AddDate(0, 0, -(summaryWindowDays - 1)).Format(common.DateFormat)

	window, err := b.db.GetDailyMetrics(windowStart, today)
	if err != nil {
		return fmt.Sprintf("Query failed: %s", err)
	}
	if len(window) == 0 {
		return "No data yet, run a sync first"
	}

	trend := metrics.LinearTrend(window)
	return fmt.Sprintf("Last %d days:\n"+
		"\tMessages: %s\n"+
		"\tFees: $%s\n"+
		"\tShadow burn: %s ZRO\n"+
		"\tVolume trend: %s (%s/day)\n"+
		"\tCurrent price: $%.4f",
		len(window),
		humanize.Comma(int64(metrics.TotalMessages(window))),
		common.FormatWithUnits(metrics.TotalUSDValue(window)),
		common.FormatWithUnits(metrics.TotalBurn(window)),
		trend.Direction,
		common.FormatPercentWithSign(trend.PercentChangePerDay),
		b.prices.GetCurrentPrice())
}

func (b *Bot) syncStatus() string {
	lastStatus := b.db.GetLastSyncStatus()
	if lastStatus == nil {
		return "No sync has run yet"
	}

	at := time.Unix(lastStatus.Timestamp, 0).UTC().Format("2006-01-02 15:04:05")
	if lastStatus.Result == models.SyncResultError {
		return fmt.Sprintf("Last sync at %s UTC failed: %s", at, lastStatus.ErrorDetail)
	}
	return fmt.Sprintf("Last sync at %s UTC wrote [%d] records through [%s]",
		at, lastStatus.RecordsWritten, lastStatus.SyncDate)
}

func (b *Bot) isAuthorizedUser(username string, chatID int64) bool {
	if _, ok := b.validUsers[username]; !ok {
		b.logger.Warnf("Unauthorized user %s tried to access the bot", username)

		b.sendPlainMessage(chatID, "You are not authorized to use this bot.")
		return false
	}

	return true
}

func (b *Bot) sendMessageToChannel(textMsg string) {
	b.sendPlainMessage(b.chatID, textMsg)
}

func (b *Bot) sendPlainMessage(chatID int64, textMsg string) {
	if chatID == 0 {
		b.logger.Errorf("Telegram chat ID is zero")
		return
	}

	msg := tgbotapi.NewMessage(chatID, textMsg)
	msg.DisableWebPagePreview = true

	if _, err := b.botApi.Send(msg); err != nil {
		b.logger.Errorf("Error sending message: %v", err)
	}
}
