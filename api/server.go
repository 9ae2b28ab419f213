package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
	"go.uber.org/zap"
	"zro-tracker/common"
	"zro-tracker/config"
	"zro-tracker/database"
	"zro-tracker/metrics"
	"zro-tracker/net"
	"zro-tracker/syncer"
)

const (
	defaultForecastDays   = 7
	defaultForecastWindow = 30
)

type Server struct {
	router *gin.Engine
	srv    *http.Server

	db     *database.MetricsDB
	syncer *syncer.Syncer
	prices *net.CoinGeckoClient
}

func New(db *database.MetricsDB, sc *syncer.Syncer, prices *net.CoinGeckoClient, cfg *config.ServerConfig) *Server {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HttpPort),
		Handler: router,
	}

	return &Server{
		router: router,
		srv:    srv,

		db:     db,
		syncer: sc,
		prices: prices,
	}
}

func (s *Server) Start() {
	s.router.GET("/api/metrics", s.getMetrics)
	s.router.GET("/api/status", s.getStatus)
	s.router.GET("/api/summary", s.getSummary)
	s.router.GET("/api/forecast", s.getForecast)
	s.router.POST("/api/sync", s.triggerSync)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	zap.L().Info("API server started")
}

func (s *Server) Stop() {
	if err := s.srv.Shutdown(context.Background()); err != nil {
		panic(err)
	}
}

func (s *Server) getMetrics(c *gin.Context) {
	startDate := c.Query("start")
	endDate := c.Query("end")
	if !common.IsValidDate(startDate) || !common.IsValidDate(endDate) {
		c.JSON(400, gin.H{
			"error": "start and end must be present as YYYY-MM-DD dates",
		})
		return
	}

	dailyMetrics, err := s.db.GetDailyMetrics(startDate, endDate)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"metrics":       dailyMetrics,
		"current_price": s.prices.GetCurrentPrice(),
		"last_updated":  time.Now().UTC().Format(time.RFC3339),
	})
}

// getStatus distinguishes an empty table, which just means the first sync
// has not run yet, from sync errors recorded in the status log.
func (s *Server) getStatus(c *gin.Context) {
	c.JSON(200, gin.H{
		"has_data":  s.db.HasAnyData(),
		"last_sync": s.db.GetLastSyncStatus(),
	})
}

func (s *Server) getSummary(c *gin.Context) {
	startDate := c.Query("start")
	endDate := c.Query("end")
	if !common.IsValidDate(startDate) || !common.IsValidDate(endDate) {
		c.JSON(400, gin.H{
			"error": "start and end must be present as YYYY-MM-DD dates",
		})
		return
	}

	dailyMetrics, err := s.db.GetDailyMetrics(startDate, endDate)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"start":           startDate,
		"end":             endDate,
		"record_count":    len(dailyMetrics),
		"total_messages":  metrics.TotalMessages(dailyMetrics),
		"total_burn":      metrics.TotalBurn(dailyMetrics),
		"total_usd_value": metrics.TotalUSDValue(dailyMetrics),
	})
}

func (s *Server) getForecast(c *gin.Context) {
	days := intQuery(c, "days", defaultForecastDays)
	window := intQuery(c, "window", defaultForecastWindow)
	if days < 1 || window < 1 {
		c.JSON(400, gin.H{"error": "days and window must be positive"})
		return
	}

	today := now.With(time.Now().UTC()).BeginningOfDay()
	windowStart := today.AddDate(0, 0, -(window - 1)).Format(common.DateFormat)

	windowMetrics, err := s.db.GetDailyMetrics(windowStart, today.Format(common.DateFormat))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	currentPrice := s.prices.GetCurrentPrice()

	c.JSON(200, gin.H{
		"window_start":  windowStart,
		"window_length": len(windowMetrics),
		"trend":         metrics.LinearTrend(windowMetrics),
		"volumes":       metrics.ForecastVolume(windowMetrics, days),
		"burn":          metrics.ForecastBurn(windowMetrics, days, currentPrice),
	})
}

type syncRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Force     bool   `json:"force"`
}

func (s *Server) triggerSync(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
	}
	if req.StartDate != "" && !common.IsValidDate(req.StartDate) {
		c.JSON(400, gin.H{"error": "start_date must be a YYYY-MM-DD date"})
		return
	}
	if req.EndDate != "" && !common.IsValidDate(req.EndDate) {
		c.JSON(400, gin.H{"error": "end_date must be a YYYY-MM-DD date"})
		return
	}

	result, err := s.syncer.Sync(req.StartDate, req.EndDate, req.Force)
	if err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"records_written": result.RecordsWritten,
		"from_date":       result.FromDate,
		"to_date":         result.ToDate,
	})
}

func intQuery(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return value
}
