package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"zro-tracker/api"
	"zro-tracker/bot"
	"zro-tracker/config"
	"zro-tracker/database"
	"zro-tracker/log"
	"zro-tracker/net"
	"zro-tracker/syncer"
)

func main() {
	cfg := config.LoadConfig()

	log.Init(&cfg.Log)

	db := database.New(&cfg.DB)

	duneClient := net.NewDuneClient(&cfg.Net)
	priceClient := net.NewCoinGeckoClient(&cfg.Net, cfg.Sync.DefaultPrice)

	sc := syncer.New(db, duneClient, priceClient, &cfg.Sync)

	apiSrv := api.New(db, sc, priceClient, &cfg.Server)
	apiSrv.Start()

	reportBot := bot.New(&cfg.Bot, db, priceClient)
	reportBot.Start()

	c := cron.New(cron.WithSeconds())
	_, _ = c.AddFunc(cfg.Sync.CronSpec, func() {
		result, err := sc.SyncLatest()
		reportBot.ReportSyncResult(result, err)
	})
	c.Start()

	if !db.HasAnyData() {
		zap.L().Info("No data yet, running initial sync")
		go func() {
			result, err := sc.SyncLatest()
			reportBot.ReportSyncResult(result, err)
		}()
	}

	watchOSSignal(apiSrv, db)
}

func watchOSSignal(apiSrv *api.Server, db *database.MetricsDB) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	apiSrv.Stop()
	db.Close()
}
