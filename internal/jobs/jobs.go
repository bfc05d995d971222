// Package jobs manages download transfers keyed by a process-unique
// integer job id. Job state lives in memory only and is lost on
// restart; ids are unique within one process lifetime.
package jobs

import "time"

// Kind tags the transfer type of a job. Internal routing always uses
// this tag; the numeric id range only mirrors it for the external
// cancel surface (see KindForID).
type Kind string

const (
	KindFile Kind = "file"
	KindHLS  Kind = "hls"
)

// State tracks a job's lifecycle.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Job is a snapshot of one tracked transfer.
type Job struct {
	ID       int64             `json:"id"`
	Kind     Kind              `json:"kind"`
	FileName string            `json:"file_name"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers,omitempty"`
	State    State             `json:"state"`
	Bytes    int64             `json:"bytes"`
	Total    int64             `json:"total"` // 0 when unknown
	Error    string            `json:"error,omitempty"`
	StartedAt time.Time        `json:"started_at"`
}

// Request describes a transfer to start. Kind is inferred by the
// caller from context (HLS manifest vs direct link), never sniffed by
// the manager.
type Request struct {
	URL      string
	FileName string            // base name without extension
	FileType string            // extension without dot, e.g. "mp4"
	Headers  map[string]string
	Kind     Kind
}
