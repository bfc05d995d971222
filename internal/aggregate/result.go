// Package aggregate fans one logical request out to every enabled
// provider, collects per-provider results as they arrive, and exposes
// an incrementally updating view with per-request cancellation.
package aggregate

import (
	"github.com/streamdex/streamdex/internal/media"
)

// Status is the lifecycle state of one provider's result.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// Result is one provider's outcome for one request. A result moves
// from pending to exactly one terminal state and never mutates after.
type Result struct {
	Provider string              `json:"provider"`
	Status   Status              `json:"status"`
	Items    []media.ContentItem `json:"items,omitempty"`
	Err      error               `json:"-"`
}

// dedupeByLink collapses items sharing a link, keeping the first seen.
// Applied within a single provider's result set only; the same title
// from two providers is two distinct items.
func dedupeByLink(items []media.ContentItem) []media.ContentItem {
	if len(items) < 2 {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, dup := seen[it.Link]; dup {
			continue
		}
		seen[it.Link] = struct{}{}
		out = append(out, it)
	}
	return out
}
