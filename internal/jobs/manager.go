package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/streamdex/streamdex/internal/events"
)

// progressInterval throttles progress events. Intermediate updates are
// best effort; only terminal transitions are guaranteed.
const progressInterval = 500 * time.Millisecond

// Config tunes the manager.
type Config struct {
	Dir        string // download directory
	HLSWorkers int    // parallel segment fetches per HLS job
}

// Manager starts, tracks, and cancels transfers. The job table is the
// one piece of shared mutable state; every state change for a job goes
// through transition under the table lock, and the first terminal
// transition wins.
type Manager struct {
	mu   sync.Mutex
	jobs map[int64]*tracked

	alloc  *Allocator
	fs     afero.Fs
	client *http.Client
	bus    *events.Bus // may be nil
	cfg    Config
	log    *slog.Logger
}

// tracked is the manager's internal job record.
type tracked struct {
	job    Job
	path   string
	cancel context.CancelFunc
	done   chan struct{} // closed after terminal transition and cleanup
}

// NewManager creates a job manager writing into cfg.Dir on fs.
func NewManager(fs afero.Fs, client *http.Client, bus *events.Bus, cfg Config, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.HLSWorkers < 1 {
		cfg.HLSWorkers = 4
	}
	return &Manager{
		jobs:   make(map[int64]*tracked),
		alloc:  NewAllocator(),
		fs:     fs,
		client: client,
		bus:    bus,
		cfg:    cfg,
		log:    log.With("component", "jobs"),
	}
}

// Start begins a transfer and returns its job id immediately. The
// transfer proceeds asynchronously; watch progress on the event bus
// and the terminal state via Wait or Get.
func (m *Manager) Start(req Request) (int64, error) {
	if req.URL == "" {
		return 0, ErrEmptyURL
	}
	if req.Kind != KindHLS {
		req.Kind = KindFile
	}

	id, err := m.alloc.Next(req.Kind)
	if err != nil {
		return 0, err
	}

	if err := m.fs.MkdirAll(m.cfg.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("create download dir: %w", err)
	}

	name := sanitizeFileName(req.FileName)
	ext := strings.TrimPrefix(req.FileType, ".")
	if ext == "" {
		ext = "mp4"
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &tracked{
		job: Job{
			ID:        id,
			Kind:      req.Kind,
			FileName:  name,
			URL:       req.URL,
			Headers:   req.Headers,
			State:     StateRunning,
			StartedAt: time.Now(),
		},
		path:   filepath.Join(m.cfg.Dir, name+"."+ext),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	m.jobs[id] = t
	m.mu.Unlock()

	m.log.Info("download started", "job_id", id, "kind", req.Kind, "file", name)
	m.publish(events.DownloadStarted{
		BaseEvent: events.NewBaseEvent(events.EventDownloadStarted, events.EntityDownload, strconv.FormatInt(id, 10)),
		JobID:     id,
		Kind:      string(req.Kind),
		FileName:  name,
	})

	go m.run(ctx, t)
	return id, nil
}

// run executes the transfer and settles the job's terminal state.
// All cleanup and terminal event publication happens here, exactly
// once, after any writer to the output file has stopped.
func (m *Manager) run(ctx context.Context, t *tracked) {
	defer close(t.done)

	var lastProgress time.Time
	progress := func(bytes, total int64) {
		m.mu.Lock()
		t.job.Bytes = bytes
		if total > 0 {
			t.job.Total = total
		}
		m.mu.Unlock()

		if time.Since(lastProgress) < progressInterval {
			return
		}
		lastProgress = time.Now()
		m.publish(events.DownloadProgressed{
			BaseEvent: events.NewBaseEvent(events.EventDownloadProgressed, events.EntityDownload, strconv.FormatInt(t.job.ID, 10)),
			JobID:     t.job.ID,
			Bytes:     bytes,
			Total:     total,
		})
	}

	var err error
	// Routed by the job record's kind tag, not the id range.
	switch t.job.Kind {
	case KindHLS:
		err = downloadHLS(ctx, m.client, m.fs, t.path, t.job.URL, t.job.Headers, m.cfg.HLSWorkers, progress)
	default:
		err = downloadFile(ctx, m.client, m.fs, t.path, t.job.URL, t.job.Headers, progress)
	}

	switch {
	case err == nil:
		m.transition(t, StateCompleted, "")
	case errors.Is(err, context.Canceled):
		m.transition(t, StateCancelled, "")
	default:
		m.transition(t, StateFailed, err.Error())
	}

	m.mu.Lock()
	final := t.job.State
	m.mu.Unlock()

	id := strconv.FormatInt(t.job.ID, 10)
	switch final {
	case StateCompleted:
		m.log.Info("download completed", "job_id", t.job.ID, "file", t.path)
		m.publish(events.DownloadCompleted{
			BaseEvent: events.NewBaseEvent(events.EventDownloadCompleted, events.EntityDownload, id),
			JobID:     t.job.ID,
			Path:      t.path,
		})
	case StateFailed:
		// The partial file stays in place for inspection.
		m.log.Warn("download failed", "job_id", t.job.ID, "error", err)
		m.publish(events.DownloadFailed{
			BaseEvent: events.NewBaseEvent(events.EventDownloadFailed, events.EntityDownload, id),
			JobID:     t.job.ID,
			Reason:    err.Error(),
		})
	case StateCancelled:
		// Cleanup runs here, after the transfer goroutine stopped
		// writing, so the partial file cannot reappear.
		if derr := m.Delete(t.job.FileName); derr != nil {
			m.log.Warn("cancel cleanup failed", "job_id", t.job.ID, "error", derr)
		}
		m.log.Info("download cancelled", "job_id", t.job.ID)
		m.publish(events.DownloadCancelled{
			BaseEvent: events.NewBaseEvent(events.EventDownloadCancelled, events.EntityDownload, id),
			JobID:     t.job.ID,
		})
	}
}

// transition applies a state change if it is valid. The first terminal
// transition is authoritative; a later one is discarded, which settles
// the cancel-versus-completion race.
func (m *Manager) transition(t *tracked, to State, errMsg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !t.job.State.CanTransitionTo(to) {
		return false
	}
	t.job.State = to
	if errMsg != "" {
		t.job.Error = errMsg
	}
	return true
}

// Cancel stops a running job, marks it cancelled, and removes its
// partial output. Cancelling an unknown or already-terminal job is a
// no-op, never an error, and never re-triggers file deletion.
func (m *Manager) Cancel(id int64) {
	m.mu.Lock()
	t, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return
	}

	if !m.transition(t, StateCancelled, "") {
		return
	}
	// Stop the transfer; run() performs cleanup once writes stop.
	t.cancel()
}

// Delete removes downloaded files whose name (extension stripped)
// matches fileName. Used for user-initiated deletion of a completed
// download and for cancel cleanup. A missing file is not an error.
func (m *Manager) Delete(fileName string) error {
	want := stripExt(sanitizeFileName(fileName))

	infos, err := afero.ReadDir(m.fs, m.cfg.Dir)
	if err != nil {
		// No download dir means nothing to delete.
		return nil
	}

	var lastErr error
	for _, info := range infos {
		if info.IsDir() {
			// Leftover HLS parts directories match by name too.
			if stripExt(stripExt(info.Name())) == want {
				if err := m.fs.RemoveAll(filepath.Join(m.cfg.Dir, info.Name())); err != nil {
					lastErr = err
				}
			}
			continue
		}
		if stripExt(info.Name()) == want {
			if err := m.fs.Remove(filepath.Join(m.cfg.Dir, info.Name())); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}

// Get returns a snapshot of one job.
func (m *Manager) Get(id int64) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return t.job, nil
}

// List returns snapshots of all tracked jobs ordered by id.
func (m *Manager) List() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0, len(m.jobs))
	for _, t := range m.jobs {
		out = append(out, t.job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Wait blocks until the job settles (terminal state reached and, for
// cancellations, cleanup finished) or ctx is cancelled.
func (m *Manager) Wait(ctx context.Context, id int64) (Job, error) {
	m.mu.Lock()
	t, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return Job{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}

	select {
	case <-t.done:
		return m.Get(id)
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Remove acknowledges a terminal job and drops it from the table.
// Running jobs cannot be removed.
func (m *Manager) Remove(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	if !t.job.State.IsTerminal() {
		return fmt.Errorf("job %d still running", id)
	}
	delete(m.jobs, id)
	return nil
}

func (m *Manager) publish(ev events.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._ -]+`)

// sanitizeFileName strips path separators and shell-unfriendly
// characters from a user-visible file name.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "download"
	}
	return name
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
