package events

// Entity types
const (
	EntitySearch   = "search"
	EntityDownload = "download"
)

// Event type constants
const (
	EventSearchStarted           = "search.started"
	EventSearchProviderCompleted = "search.provider.completed"
	EventSearchCompleted         = "search.completed"
	EventSearchCancelled         = "search.cancelled"
	EventDownloadStarted         = "download.started"
	EventDownloadProgressed      = "download.progressed"
	EventDownloadCompleted       = "download.completed"
	EventDownloadFailed          = "download.failed"
	EventDownloadCancelled       = "download.cancelled"
)

// SearchStarted is emitted when an aggregation request fans out.
type SearchStarted struct {
	BaseEvent
	Query     string `json:"query"`
	Providers int    `json:"providers"`
}

// SearchProviderCompleted is emitted when one provider's result
// reaches a terminal state.
type SearchProviderCompleted struct {
	BaseEvent
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Items    int    `json:"items"`
}

// SearchCompleted is emitted when every provider result is terminal.
type SearchCompleted struct {
	BaseEvent
	Query string `json:"query"`
	Items int    `json:"items"`
}

// DownloadStarted is emitted when a transfer job begins.
type DownloadStarted struct {
	BaseEvent
	JobID    int64  `json:"job_id"`
	Kind     string `json:"kind"`
	FileName string `json:"file_name"`
}

// DownloadProgressed is emitted periodically with transfer progress.
// Delivery is best effort; intermediate updates may be dropped.
type DownloadProgressed struct {
	BaseEvent
	JobID int64 `json:"job_id"`
	Bytes int64 `json:"bytes"`
	Total int64 `json:"total"` // 0 when unknown
}

// DownloadCompleted is emitted when a transfer finishes.
type DownloadCompleted struct {
	BaseEvent
	JobID int64  `json:"job_id"`
	Path  string `json:"path"`
}

// DownloadFailed is emitted when a transfer fails. The partial file is
// left in place for inspection.
type DownloadFailed struct {
	BaseEvent
	JobID  int64  `json:"job_id"`
	Reason string `json:"reason"`
}

// DownloadCancelled is emitted after a cancel removed the partial file.
type DownloadCancelled struct {
	BaseEvent
	JobID int64 `json:"job_id"`
}
