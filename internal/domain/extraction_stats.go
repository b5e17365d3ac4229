package domain

// ExtractionStats is a snapshot of extraction concurrency counters
type ExtractionStats struct {
	MaxConcurrent int   `json:"max_concurrent"` // 0 means unbounded
	Active        int64 `json:"active"`
	Waiting       int64 `json:"waiting"`
	Completed     int64 `json:"completed"`
	Failed        int64 `json:"failed"`
}
