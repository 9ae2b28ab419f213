package types

// Wire types for the Dune execution API. A query run is submitted, then the
// execution handle is polled until it reaches a terminal state.

const (
	ExecutionStateCompleted = "QUERY_STATE_COMPLETED"
	ExecutionStateFailed    = "QUERY_STATE_FAILED"
)

type ExecuteQueryResponse struct {
	ExecutionID string `json:"execution_id"`
	State       string `json:"state"`
}

type ExecutionStatusResponse struct {
	ExecutionID string `json:"execution_id"`
	QueryID     int    `json:"query_id"`
	State       string `json:"state"`
}

type ExecutionResultsResponse struct {
	ExecutionID string          `json:"execution_id"`
	State       string          `json:"state"`
	Result      ExecutionResult `json:"result"`
}

type ExecutionResult struct {
	Rows []MessageStatsRow `json:"rows"`
}

type MessageStatsRow struct {
	Date              string  `json:"date"`
	MessageCount      uint    `json:"message_count"`
	TotalExecutorFee  float64 `json:"total_executor_fee"`
	TotalDvnFee       float64 `json:"total_dvn_fee"`
	MedianCombinedFee float64 `json:"median_combined_fee"`
}

// MessageStats is one day of aggregated message activity after fee fields
// have been combined, keyed by date in the maps the syncer consumes.
type MessageStats struct {
	MessageCount uint    `json:"message_count"`
	AvgFee       float64 `json:"avg_fee"`
	MedianFee    float64 `json:"median_fee"`
}
