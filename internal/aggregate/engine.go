package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/streamdex/streamdex/internal/cache"
	"github.com/streamdex/streamdex/internal/events"
	"github.com/streamdex/streamdex/internal/media"
	"github.com/streamdex/streamdex/internal/provider"
)

// Options tunes engine behavior. The zero value disables caching and
// quality filtering.
type Options struct {
	// CacheTTL is how long search and metadata responses stay cached.
	CacheTTL time.Duration
	// ExcludedQualities filters resolved streams (e.g. "360p", "cam").
	ExcludedQualities []string
}

// Engine orchestrates concurrent provider calls for one logical
// request. One provider's failure never aborts its siblings.
type Engine struct {
	registry *provider.Registry
	cache    *cache.Cache // may be nil
	bus      *events.Bus  // may be nil
	opts     Options
	log      *slog.Logger
}

// New creates an aggregation engine. cache and bus are optional.
func New(registry *provider.Registry, c *cache.Cache, bus *events.Bus, opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		registry: registry,
		cache:    c,
		bus:      bus,
		opts:     opts,
		log:      log.With("component", "aggregate"),
	}
}

// Search fans the query out to every enabled provider that declares
// the search capability and returns immediately. Results stream in on
// the handle as providers complete, in no particular order.
//
// An error is returned only when the request cannot start at all (no
// enabled providers); individual provider failures are captured in the
// handle's per-provider results.
func (e *Engine) Search(ctx context.Context, query string, page int) (*Handle, error) {
	entries := e.searchable()
	if len(entries) == 0 {
		return nil, ErrNoProviders
	}
	if page < 1 {
		page = 1
	}

	values := make([]string, len(entries))
	for i, en := range entries {
		values[i] = en.Descriptor.Value
	}

	ctx, cancel := context.WithCancel(ctx)
	h := newHandle(uuid.NewString(), query, values, cancel)

	e.log.Debug("search started", "request_id", h.ID, "query", query, "providers", len(entries))
	e.publish(events.SearchStarted{
		BaseEvent: events.NewBaseEvent(events.EventSearchStarted, events.EntitySearch, h.ID),
		Query:     query,
		Providers: len(entries),
	})

	start := time.Now()
	for _, en := range entries {
		go e.searchOne(ctx, h, en, query, page)
	}

	go func() {
		<-h.done
		cancel()
		e.log.Info("search complete", "request_id", h.ID, "query", query,
			"items", len(h.Items()), "duration_ms", time.Since(start).Milliseconds())
		e.publish(events.SearchCompleted{
			BaseEvent: events.NewBaseEvent(events.EventSearchCompleted, events.EntitySearch, h.ID),
			Query:     query,
			Items:     len(h.Items()),
		})
	}()

	return h, nil
}

// searchOne runs one provider's search and records its terminal result.
func (e *Engine) searchOne(ctx context.Context, h *Handle, en *provider.Entry, query string, page int) {
	value := en.Descriptor.Value
	cacheKey := "search:" + value + ":" + query + ":" + strconv.Itoa(page)

	items, hit := e.cachedItems(ctx, cacheKey)
	if !hit {
		var err error
		start := time.Now()
		items, err = en.Impl.Search(ctx, query, page)
		switch {
		case errors.Is(err, context.Canceled):
			e.finish(h, value, StatusCancelled, nil, nil)
			return
		case err != nil:
			e.log.Warn("provider failed", "request_id", h.ID, "provider", value,
				"error", err, "duration_ms", time.Since(start).Milliseconds())
			e.finish(h, value, StatusFailed, nil, err)
			return
		}
		e.storeItems(ctx, cacheKey, items)
	}

	if len(items) == 0 {
		e.finish(h, value, StatusEmpty, nil, nil)
		return
	}

	items = dedupeByLink(items)
	rankItems(query, items)
	e.finish(h, value, StatusSuccess, items, nil)
}

// finish records a terminal transition and mirrors it onto the bus.
func (e *Engine) finish(h *Handle, value string, status Status, items []media.ContentItem, err error) {
	h.complete(value, status, items, err)
	e.publish(events.SearchProviderCompleted{
		BaseEvent: events.NewBaseEvent(events.EventSearchProviderCompleted, events.EntitySearch, h.ID),
		Provider:  value,
		Status:    string(status),
		Items:     len(items),
	})
}

// Metadata resolves the detail view for one item through its owning
// provider. Cancellation returns ctx.Err(); a recognized link with no
// content returns provider.ErrNotFound.
func (e *Engine) Metadata(ctx context.Context, providerValue, link string) (*media.Metadata, error) {
	en, err := e.registry.Get(providerValue)
	if err != nil {
		return nil, err
	}
	if !en.Descriptor.Supports(provider.CapMetadata) {
		return nil, provider.Unsupported(providerValue, provider.CapMetadata)
	}

	cacheKey := "metadata:" + providerValue + ":" + link
	if e.cache != nil {
		if raw, ok := e.cache.Get(ctx, cacheKey); ok {
			var md media.Metadata
			if json.Unmarshal(raw, &md) == nil {
				return &md, nil
			}
		}
	}

	md, err := en.Impl.GetMetadata(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("metadata from %s: %w", providerValue, err)
	}

	if e.cache != nil {
		if raw, err := json.Marshal(md); err == nil {
			_ = e.cache.Set(ctx, cacheKey, raw, e.cacheTTL())
		}
	}
	return md, nil
}

// Streams resolves the playable servers for one watchable link through
// its owning provider. An empty slice with nil error means the content
// exists but has no servers right now; callers render "no server
// found", not an error. Streams are never cached; links expire fast.
func (e *Engine) Streams(ctx context.Context, providerValue, link string, mediaType media.Type) ([]media.Stream, error) {
	en, err := e.registry.Get(providerValue)
	if err != nil {
		return nil, err
	}
	if !en.Descriptor.Supports(provider.CapStream) {
		return nil, provider.Unsupported(providerValue, provider.CapStream)
	}

	streams, err := en.Impl.ResolveStreams(ctx, link, mediaType)
	if err != nil {
		return nil, fmt.Errorf("streams from %s: %w", providerValue, err)
	}
	return e.filterQuality(streams), nil
}

// filterQuality drops streams whose quality is excluded by settings.
func (e *Engine) filterQuality(streams []media.Stream) []media.Stream {
	if len(e.opts.ExcludedQualities) == 0 {
		return streams
	}
	out := streams[:0]
	for _, s := range streams {
		if !e.excluded(s.Quality) {
			out = append(out, s)
		}
	}
	return out
}

func (e *Engine) excluded(quality string) bool {
	for _, q := range e.opts.ExcludedQualities {
		if q == quality {
			return true
		}
	}
	return false
}

func (e *Engine) searchable() []*provider.Entry {
	var out []*provider.Entry
	for _, en := range e.registry.ListEnabled() {
		if en.Descriptor.Supports(provider.CapSearch) {
			out = append(out, en)
		}
	}
	return out
}

func (e *Engine) cacheTTL() time.Duration {
	if e.opts.CacheTTL > 0 {
		return e.opts.CacheTTL
	}
	return 10 * time.Minute
}

func (e *Engine) cachedItems(ctx context.Context, key string) ([]media.ContentItem, bool) {
	if e.cache == nil {
		return nil, false
	}
	raw, ok := e.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var items []media.ContentItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (e *Engine) storeItems(ctx context.Context, key string, items []media.ContentItem) {
	if e.cache == nil {
		return
	}
	if raw, err := json.Marshal(items); err == nil {
		_ = e.cache.Set(ctx, key, raw, e.cacheTTL())
	}
}

func (e *Engine) publish(ev events.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
