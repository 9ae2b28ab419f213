package net

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"zro-tracker/config"
	"zro-tracker/types"
)

const (
	DuneBaseUrl          = "https://api.dune.com/api/v1/"
	ExecuteQueryPath     = "query/%d/execute"
	ExecutionStatusPath  = "execution/%s/status"
	ExecutionResultsPath = "execution/%s/results"
)

// DuneClient runs the saved daily message-stats query through Dune's
// asynchronous execution protocol: submit, poll the execution handle at a
// fixed interval, then fetch the result rows on completion.
type DuneClient struct {
	client *resty.Client

	queryID         int
	pollInterval    time.Duration
	maxPollAttempts int

	logger *zap.SugaredLogger
}

func NewDuneClient(cfg *config.NetConfig) *DuneClient {
	client := resty.New()
	client.SetBaseURL(DuneBaseUrl)
	client.SetHeader("X-Dune-API-Key", cfg.DuneApiKey)
	// Hard deadline per request, so a hung connection cannot stall the
	// attempt budget.
	client.SetTimeout(time.Duration(cfg.RequestTimeout) * time.Second)

	return &DuneClient{
		client: client,

		queryID:         cfg.DuneQueryID,
		pollInterval:    time.Duration(cfg.PollInterval) * time.Second,
		maxPollAttempts: cfg.MaxPollAttempts,

		logger: zap.S().Named("[dune]"),
	}
}

// GetDailyMessageStats returns one entry per day the query reported activity
// for, keyed by date. Fee fields are combined here: the protocol fee is
// executor fee plus DVN fee, and the average is that total over the count.
func (dc *DuneClient) GetDailyMessageStats(fromDate, toDate string) (map[string]*types.MessageStats, error) {
	executionID, err := dc.executeQuery(fromDate, toDate)
	if err != nil {
		return nil, err
	}

	dc.logger.Infof("Submitted query [%d] for range [%s, %s], execution [%s]", dc.queryID, fromDate, toDate, executionID)

	if err = dc.waitForExecution(executionID); err != nil {
		return nil, err
	}

	rows, err := dc.getExecutionResults(executionID)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]*types.MessageStats)
	for _, row := range rows {
		totalProtocolFee := row.TotalExecutorFee + row.TotalDvnFee
		avgFee := 0.0
		if row.MessageCount > 0 {
			avgFee = totalProtocolFee / float64(row.MessageCount)
		}
		stats[row.Date] = &types.MessageStats{
			MessageCount: row.MessageCount,
			AvgFee:       avgFee,
			MedianFee:    row.MedianCombinedFee,
		}
	}

	dc.logger.Infof("Query execution [%s] returned [%d] daily rows", executionID, len(rows))

	return stats, nil
}

func (dc *DuneClient) executeQuery(fromDate, toDate string) (string, error) {
	var execution types.ExecuteQueryResponse
	resp, err := dc.client.R().
		SetBody(map[string]interface{}{
			"query_parameters": map[string]string{
				"start_date": fromDate,
				"end_date":   toDate,
			},
		}).
		SetResult(&execution).
		Post(fmt.Sprintf(ExecuteQueryPath, dc.queryID))
	if err != nil {
		return "", &SourceError{Source: "dune", Err: err}
	}
	if resp.IsError() {
		return "", newSourceError("dune", "execute query returned status [%d]", resp.StatusCode())
	}
	if execution.ExecutionID == "" {
		return "", newSourceError("dune", "execute query returned no execution id")
	}
	return execution.ExecutionID, nil
}

func (dc *DuneClient) waitForExecution(executionID string) error {
	ticker := time.NewTicker(dc.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= dc.maxPollAttempts; attempt++ {
		<-ticker.C

		var status types.ExecutionStatusResponse
		resp, err := dc.client.R().
			SetResult(&status).
			Get(fmt.Sprintf(ExecutionStatusPath, executionID))
		if err != nil {
			return &SourceError{Source: "dune", Err: err}
		}
		if resp.IsError() {
			return newSourceError("dune", "execution status returned status [%d]", resp.StatusCode())
		}

		switch status.State {
		case types.ExecutionStateCompleted:
			return nil
		case types.ExecutionStateFailed:
			return newSourceError("dune", "execution [%s] failed", executionID)
		}

		dc.logger.Debugf("Execution [%s] state [%s], attempt [%d/%d]", executionID, status.State, attempt, dc.maxPollAttempts)
	}

	return &SourceError{Source: "dune", Err: ErrPollTimeout}
}

func (dc *DuneClient) getExecutionResults(executionID string) ([]types.MessageStatsRow, error) {
	var results types.ExecutionResultsResponse
	resp, err := dc.client.R().
		SetResult(&results).
		Get(fmt.Sprintf(ExecutionResultsPath, executionID))
	if err != nil {
		return nil, &SourceError{Source: "dune", Err: err}
	}
	if resp.IsError() {
		return nil, newSourceError("dune", "execution results returned status [%d]", resp.StatusCode())
	}
	return results.Result.Rows, nil
}
