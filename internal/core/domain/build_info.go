package domain

import "time"

// BuildInfo is the cache record of a task: what its sources and outputs hashed
// to the last time its action ran to completion.
type BuildInfo struct {
	TaskName   string    `json:"task_name,omitzero"`
	InputHash  string    `json:"input_hash,omitzero"`
	OutputHash string    `json:"output_hash,omitzero"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}
