package models

import "time"

// SyncReport summarizes one sync cycle.
type SyncReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Pulled       int    `json:"pulled"`
	Applied      int    `json:"applied"`
	AlreadyAcked int    `json:"already_acked"`
	PullFailures int    `json:"pull_failures"`
	PullError    string `json:"pull_error,omitempty"`

	Pushed       int `json:"pushed"`
	PushFailures int `json:"push_failures"`
}

// Clean reports whether the cycle completed without any failure.
func (r SyncReport) Clean() bool {
	return r.PullError == "" && r.PullFailures == 0 && r.PushFailures == 0
}
