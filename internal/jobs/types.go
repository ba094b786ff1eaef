package jobs

import "time"

// Status はタスクの実行状態を表します。
type Status string

const (
	StatusQueued    Status = "queued"
	StatusSucceeded Status = "done"
	StatusFailed    Status = "error"
)

// Record はバックグラウンドタスクの現在状態を表します。
type Record struct {
	TaskID    string    `json:"taskId"`
	Kind      string    `json:"kind"`
	Status    Status    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
