package ingestrun

import (
	"time"

	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
)

type reportDTO struct {
	RunID      string      `json:"run_id"`
	Directory  string      `json:"directory,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Results    []resultDTO `json:"results"`
}

type resultDTO struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Status string `json:"status"`
	Fields int    `json:"fields,omitempty"`
	Error  string `json:"error,omitempty"`
}

func toDTO(r dombatch.Report) reportDTO {
	d := reportDTO{
		RunID:      r.RunID,
		Directory:  r.Directory,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Results:    make([]resultDTO, len(r.Results)),
	}
	for i, res := range r.Results {
		d.Results[i] = resultDTO{
			ID:     res.ID(),
			Source: res.Source(),
			Status: string(res.Status()),
			Fields: res.Fields(),
		}
		if res.Err() != nil {
			d.Results[i].Error = res.Err().Error()
		}
	}
	return d
}

func (d reportDTO) toDomain() dombatch.Report {
	r := dombatch.Report{
		RunID:      d.RunID,
		Directory:  d.Directory,
		StartedAt:  d.StartedAt,
		FinishedAt: d.FinishedAt,
		Results:    make([]dombatch.Result, len(d.Results)),
	}
	for i, res := range d.Results {
		r.Results[i] = dombatch.Reconstruct(res.ID, res.Source, dombatch.ItemStatus(res.Status), res.Fields, res.Error)
	}
	return r
}
