package aggregate

import (
	"context"
	"sync"

	"github.com/streamdex/streamdex/internal/media"
)

// Update is emitted on the handle's update channel whenever one
// provider's result reaches a terminal state.
type Update struct {
	Provider string
	Result   Result
}

// Handle tracks one in-flight aggregation request. Provider completion
// order is unspecified; the only ordering guarantee is that each
// provider's result transitions from pending to exactly one terminal
// state.
type Handle struct {
	// ID correlates this request in logs and events.
	ID    string
	Query string

	mu      sync.Mutex
	order   []string
	results map[string]*Result

	updates   chan Update
	done      chan struct{}
	remaining int

	cancel     context.CancelFunc
	cancelOnce sync.Once
}

func newHandle(id, query string, providerValues []string, cancel context.CancelFunc) *Handle {
	h := &Handle{
		ID:        id,
		Query:     query,
		order:     providerValues,
		results:   make(map[string]*Result, len(providerValues)),
		updates:   make(chan Update, len(providerValues)),
		done:      make(chan struct{}),
		remaining: len(providerValues),
		cancel:    cancel,
	}
	for _, v := range providerValues {
		h.results[v] = &Result{Provider: v, Status: StatusPending}
	}
	return h
}

// complete records a provider's terminal result. The first terminal
// transition wins; later attempts for the same provider are discarded.
func (h *Handle) complete(provider string, status Status, items []media.ContentItem, err error) {
	h.mu.Lock()
	r, ok := h.results[provider]
	if !ok || r.Status.IsTerminal() {
		h.mu.Unlock()
		return
	}
	r.Status = status
	r.Items = items
	r.Err = err
	h.remaining--
	last := h.remaining == 0
	snapshot := *r
	h.mu.Unlock()

	// Buffered to len(providers), so terminal updates never block or drop.
	h.updates <- Update{Provider: provider, Result: snapshot}
	if last {
		close(h.updates)
		close(h.done)
	}
}

// Updates returns the channel of terminal transitions. It is closed
// once every provider result is terminal.
func (h *Handle) Updates() <-chan Update {
	return h.updates
}

// Done is closed when every provider result is terminal, regardless of
// how many failed.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the request completes or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results returns a snapshot of every provider's result, keyed by
// provider value.
func (h *Handle) Results() map[string]Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]Result, len(h.results))
	for v, r := range h.results {
		out[v] = *r
	}
	return out
}

// Completed reports whether every provider result is terminal.
func (h *Handle) Completed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Items returns the visible result list: items from providers that
// succeeded with at least one item, in provider registration order.
// Providers that returned nothing, failed, or were cancelled do not
// appear here; Results carries the per-provider detail.
func (h *Handle) Items() []media.ContentItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []media.ContentItem
	for _, v := range h.order {
		if r := h.results[v]; r.Status == StatusSuccess {
			out = append(out, r.Items...)
		}
	}
	return out
}

// Cancel cancels every still-pending provider call. Already-terminal
// results are untouched. Idempotent and safe after natural completion.
func (h *Handle) Cancel() {
	h.cancelOnce.Do(h.cancel)
}
