package flowstats

// ResultsRecord is the summary of an experiment. It is computed from the flow
// table once the engine has stopped.
type ResultsRecord struct {
	TotalTx      uint64 `json:"total_tx"`
	TotalRx      uint64 `json:"total_rx"`
	TotalRxBytes uint64 `json:"total_rx_bytes"`
	TotalLost    uint64 `json:"total_lost"`

	// PDR is the packet delivery ratio, between 0 and 1.
	PDR float64 `json:"pdr"`

	// AvgDelay is in seconds, over the received packets only.
	AvgDelay float64 `json:"avg_delay"`

	ThroughputKbps float64 `json:"throughput_kbps"`
}
