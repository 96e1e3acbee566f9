package models

import (
	"time"
)

type JobStatus string

const (
	JobStatusPlanned JobStatus = "planned"
	JobStatusSkipped JobStatus = "skipped"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// JobResult records what happened to one SyncJob during a run.
type JobResult struct {
	JobID        string     `json:"job_id"`
	Status       JobStatus  `json:"status"`
	Missing      []string   `json:"missing_drives,omitempty"`
	PairsTotal   int        `json:"pairs_total"`
	PairsDone    int        `json:"pairs_done"`
	PairsFailed  int        `json:"pairs_failed"`
	Transferred  int64      `json:"transferred_bytes"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func NewJobResult(jobID string, pairs int) *JobResult {
	return &JobResult{
		JobID:      jobID,
		Status:     JobStatusPlanned,
		PairsTotal: pairs,
	}
}

func (r *JobResult) MarkSkipped() {
	now := time.Now()
	r.Status = JobStatusSkipped
	r.CompletedAt = &now
}

func (r *JobResult) MarkStarted() {
	now := time.Now()
	r.Status = JobStatusRunning
	r.StartedAt = &now
}

func (r *JobResult) MarkPairDone() {
	r.PairsDone++
}

// MarkPairFailed keeps the first failure message; later failures only bump the counter.
func (r *JobResult) MarkPairFailed(errorMsg string) {
	r.PairsFailed++
	if r.ErrorMessage == "" {
		r.ErrorMessage = errorMsg
	}
}

func (r *JobResult) MarkCompleted() {
	now := time.Now()
	r.CompletedAt = &now
	if r.PairsFailed > 0 {
		r.Status = JobStatusFailed
		return
	}
	r.Status = JobStatusDone
}

// RunSummary aggregates the job results of a single invocation.
type RunSummary struct {
	RunID       string       `json:"run_id"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
	DryRun      bool         `json:"dry_run,omitempty"`
	Jobs        []*JobResult `json:"jobs"`
}

func (s *RunSummary) Add(result *JobResult) {
	s.Jobs = append(s.Jobs, result)
}

func (s *RunSummary) Count(status JobStatus) int {
	n := 0
	for _, job := range s.Jobs {
		if job.Status == status {
			n++
		}
	}
	return n
}

func (s *RunSummary) PairsFailed() int {
	n := 0
	for _, job := range s.Jobs {
		n += job.PairsFailed
	}
	return n
}

func (s *RunSummary) Transferred() int64 {
	var n int64
	for _, job := range s.Jobs {
		n += job.Transferred
	}
	return n
}

func (s *RunSummary) Duration() time.Duration {
	if s.CompletedAt.IsZero() {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}
