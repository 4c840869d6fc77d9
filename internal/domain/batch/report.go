package batch

import "time"

// Report summarizes one directory ingestion run.
type Report struct {
	RunID      string
	Directory  string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
}

// Count returns the number of results with the given status.
func (r Report) Count(st ItemStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.status == st {
			n++
		}
	}
	return n
}

// Failed reports whether any document ended in error.
func (r Report) Failed() bool { return r.Count(StatusError) > 0 }

// Duration returns the wall time of the run.
func (r Report) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }
