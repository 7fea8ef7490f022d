package eventing

import "time"

// ReportCompleted is published when a report job reaches the Complete state.
type ReportCompleted struct {
	JobID      string    `json:"job_id"`
	FrozenNow  time.Time `json:"frozen_now"`
	StoreCount int       `json:"store_count"`
	Warnings   int       `json:"warnings"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReportFailed is published when a report job reaches the Failed state.
type ReportFailed struct {
	JobID      string    `json:"job_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
