package model

import (
	"encoding/json"
	"time"
)

// JobStatus represents the current state of a report job.
type JobStatus string

const (
	JobStatusProcessing          JobStatus = "processing"
	JobStatusFetchingAgents      JobStatus = "fetching_agents_data"
	JobStatusFetchingAgencies    JobStatus = "fetching_agency_data"
	JobStatusComputingCommission JobStatus = "computing_commission"
	JobStatusCompleted           JobStatus = "completed"
	JobStatusFailed              JobStatus = "failed"
)

// Progress returns the completion percentage reported to pollers.
func (s JobStatus) Progress() int {
	switch s {
	case JobStatusProcessing:
		return 10
	case JobStatusFetchingAgents, JobStatusFetchingAgencies:
		return 30
	case JobStatusComputingCommission:
		return 60
	case JobStatusCompleted:
		return 100
	default:
		return 0
	}
}

// Terminal reports whether no further transitions are expected.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobKind selects which report a job produces.
type JobKind string

const (
	JobKindAgents   JobKind = "agents"
	JobKindAgencies JobKind = "agencies"
)

// Job is one queued or finished report generation.
type Job struct {
	ID        string          `json:"id"`
	Kind      JobKind         `json:"kind"`
	Suburb    string          `json:"suburb"`
	Status    JobStatus       `json:"status"`
	Request   json.RawMessage `json:"request,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// JobFilter controls which jobs ListJobs returns.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
