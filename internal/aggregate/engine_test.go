package aggregate_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/streamdex/streamdex/internal/aggregate"
	"github.com/streamdex/streamdex/internal/media"
	"github.com/streamdex/streamdex/internal/provider"
	"github.com/streamdex/streamdex/internal/provider/mocks"
)

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func allCaps() []provider.Capability {
	return []provider.Capability{provider.CapSearch, provider.CapMetadata, provider.CapStream}
}

func register(r *provider.Registry, value string, impl provider.Provider) {
	r.Register(provider.Descriptor{
		Value:        value,
		Name:         value,
		Capabilities: allCaps(),
		Enabled:      true,
	}, impl)
}

func items(providerValue string, links ...string) []media.ContentItem {
	out := make([]media.ContentItem, 0, len(links))
	for _, l := range links {
		out = append(out, media.ContentItem{Title: l, Link: l, Provider: providerValue})
	}
	return out
}

func TestEngine_Search_MixedOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	// Provider 1 finds five items, provider 2 finds nothing,
	// provider 3 times out.
	p1 := mocks.NewMockProvider(ctrl)
	p1.EXPECT().Search(gomock.Any(), "matrix", 1).
		Return(items("p1", "/m/1", "/m/2", "/m/3", "/m/4", "/m/5"), nil)
	p2 := mocks.NewMockProvider(ctrl)
	p2.EXPECT().Search(gomock.Any(), "matrix", 1).
		Return(nil, nil)
	p3 := mocks.NewMockProvider(ctrl)
	p3.EXPECT().Search(gomock.Any(), "matrix", 1).
		Return(nil, provider.NewError("p3", provider.KindTimeout, errors.New("deadline exceeded")))

	register(reg, "p1", p1)
	register(reg, "p2", p2)
	register(reg, "p3", p3)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	h, err := engine.Search(context.Background(), "matrix", 1)
	require.NoError(t, err)
	require.NoError(t, h.Wait(context.Background()))

	results := h.Results()
	require.Len(t, results, 3)
	assert.Equal(t, aggregate.StatusSuccess, results["p1"].Status)
	assert.Equal(t, aggregate.StatusEmpty, results["p2"].Status)
	assert.Equal(t, aggregate.StatusFailed, results["p3"].Status)
	assert.Equal(t, provider.KindTimeout, provider.KindOf(results["p3"].Err))

	// Only the non-empty provider contributes to the visible list.
	visible := h.Items()
	assert.Len(t, visible, 5)
	for _, it := range visible {
		assert.Equal(t, "p1", it.Provider)
	}
}

func TestEngine_Search_NoProviders(t *testing.T) {
	reg := provider.NewRegistry()
	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	_, err := engine.Search(context.Background(), "anything", 1)
	assert.ErrorIs(t, err, aggregate.ErrNoProviders)
}

func TestEngine_Search_SkipsProvidersWithoutSearchCap(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	searchable := mocks.NewMockProvider(ctrl)
	searchable.EXPECT().Search(gomock.Any(), "q", 1).Return(items("s", "/a"), nil)
	register(reg, "s", searchable)

	// Declares only stream capability; must never be called.
	streamOnly := mocks.NewMockProvider(ctrl)
	reg.Register(provider.Descriptor{
		Value:        "stream-only",
		Capabilities: []provider.Capability{provider.CapStream},
		Enabled:      true,
	}, streamOnly)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	h, err := engine.Search(context.Background(), "q", 1)
	require.NoError(t, err)
	require.NoError(t, h.Wait(context.Background()))

	results := h.Results()
	assert.Len(t, results, 1)
	assert.Contains(t, results, "s")
}

func TestEngine_Search_DeduplicatesWithinProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().Search(gomock.Any(), "dup", 1).
		Return(items("p", "/a", "/b", "/a", "/a", "/c"), nil)
	register(reg, "p", p)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	h, err := engine.Search(context.Background(), "dup", 1)
	require.NoError(t, err)
	require.NoError(t, h.Wait(context.Background()))

	visible := h.Items()
	require.Len(t, visible, 3)
	seen := map[string]bool{}
	for _, it := range visible {
		assert.False(t, seen[it.Link], "duplicate link %s", it.Link)
		seen[it.Link] = true
	}
}

func TestEngine_Search_NeverDeduplicatesAcrossProviders(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	p1 := mocks.NewMockProvider(ctrl)
	p1.EXPECT().Search(gomock.Any(), "same", 1).Return(items("p1", "/same-link"), nil)
	p2 := mocks.NewMockProvider(ctrl)
	p2.EXPECT().Search(gomock.Any(), "same", 1).Return(items("p2", "/same-link"), nil)
	register(reg, "p1", p1)
	register(reg, "p2", p2)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	h, err := engine.Search(context.Background(), "same", 1)
	require.NoError(t, err)
	require.NoError(t, h.Wait(context.Background()))

	assert.Len(t, h.Items(), 2)
}

func TestEngine_Search_CancelMarksPendingCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	fast := mocks.NewMockProvider(ctrl)
	fast.EXPECT().Search(gomock.Any(), "q", 1).Return(items("fast", "/x"), nil)

	slow := mocks.NewMockProvider(ctrl)
	slow.EXPECT().Search(gomock.Any(), "q", 1).DoAndReturn(
		func(ctx context.Context, query string, page int) ([]media.ContentItem, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	register(reg, "fast", fast)
	register(reg, "slow", slow)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	h, err := engine.Search(context.Background(), "q", 1)
	require.NoError(t, err)

	// Let the fast provider finish, then cancel the rest.
	require.Eventually(t, func() bool {
		return h.Results()["fast"].Status.IsTerminal()
	}, 5*time.Second, 5*time.Millisecond)

	h.Cancel()
	require.NoError(t, h.Wait(context.Background()))

	results := h.Results()
	assert.Equal(t, aggregate.StatusSuccess, results["fast"].Status)
	assert.Equal(t, aggregate.StatusCancelled, results["slow"].Status)

	// Cancel is idempotent and safe after completion.
	h.Cancel()
	h.Cancel()
	assert.Equal(t, aggregate.StatusSuccess, h.Results()["fast"].Status)
}

func TestEngine_Search_UpdatesStreamTerminalTransitions(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	p1 := mocks.NewMockProvider(ctrl)
	p1.EXPECT().Search(gomock.Any(), "q", 1).Return(items("p1", "/a"), nil)
	p2 := mocks.NewMockProvider(ctrl)
	p2.EXPECT().Search(gomock.Any(), "q", 1).Return(nil, nil)
	register(reg, "p1", p1)
	register(reg, "p2", p2)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	h, err := engine.Search(context.Background(), "q", 1)
	require.NoError(t, err)

	var updates []aggregate.Update
	for u := range h.Updates() {
		assert.True(t, u.Result.Status.IsTerminal())
		updates = append(updates, u)
	}
	assert.Len(t, updates, 2)
	assert.True(t, h.Completed())
}

func TestSlot_SwapCancelsPrevious(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	p := mocks.NewMockProvider(ctrl)
	// First query blocks until cancelled; second returns promptly.
	p.EXPECT().Search(gomock.Any(), "a", 1).DoAndReturn(
		func(ctx context.Context, query string, page int) ([]media.ContentItem, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
	p.EXPECT().Search(gomock.Any(), "ab", 1).Return(items("p", "/ab"), nil)
	register(reg, "p", p)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	var slot aggregate.Slot

	first, err := engine.Search(context.Background(), "a", 1)
	require.NoError(t, err)
	slot.Swap(first)

	second, err := engine.Search(context.Background(), "ab", 1)
	require.NoError(t, err)
	slot.Swap(second)

	require.NoError(t, first.Wait(context.Background()))
	require.NoError(t, second.Wait(context.Background()))

	assert.Equal(t, aggregate.StatusCancelled, first.Results()["p"].Status)
	assert.Empty(t, first.Items(), "superseded search must not surface items")
	assert.Len(t, second.Items(), 1)
	assert.Same(t, second, slot.Current())
}

func TestEngine_Metadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().GetMetadata(gomock.Any(), "/m/1").
		Return(&media.Metadata{Title: "The Matrix", Link: "/m/1", Provider: "p"}, nil)
	register(reg, "p", p)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	md, err := engine.Metadata(context.Background(), "p", "/m/1")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", md.Title)
}

func TestEngine_Metadata_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().GetMetadata(gomock.Any(), "/gone").Return(nil, provider.ErrNotFound)
	register(reg, "p", p)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	_, err := engine.Metadata(context.Background(), "p", "/gone")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestEngine_Metadata_UnknownProvider(t *testing.T) {
	reg := provider.NewRegistry()
	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	_, err := engine.Metadata(context.Background(), "nope", "/x")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestEngine_Streams_EmptyIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().ResolveStreams(gomock.Any(), "/watch/1", media.TypeMovie).
		Return([]media.Stream{}, nil)
	register(reg, "p", p)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{}, testLogger())

	streams, err := engine.Streams(context.Background(), "p", "/watch/1", media.TypeMovie)
	require.NoError(t, err, "no servers is a valid outcome, not a failure")
	assert.Empty(t, streams)
}

func TestEngine_Streams_FiltersExcludedQualities(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := provider.NewRegistry()

	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().ResolveStreams(gomock.Any(), "/watch/1", media.TypeMovie).
		Return([]media.Stream{
			{Server: "alpha", Link: "https://cdn/a.m3u8", Type: "hls", Quality: "1080p"},
			{Server: "beta", Link: "https://cdn/b.mp4", Type: "file", Quality: "360p"},
			{Server: "gamma", Link: "https://cdn/c.mp4", Type: "file", Quality: "cam"},
		}, nil)
	register(reg, "p", p)

	engine := aggregate.New(reg, nil, nil, aggregate.Options{
		ExcludedQualities: []string{"360p", "cam"},
	}, testLogger())

	streams, err := engine.Streams(context.Background(), "p", "/watch/1", media.TypeMovie)
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, "alpha", streams[0].Server)
}
