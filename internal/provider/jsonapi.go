package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/streamdex/streamdex/internal/media"
)

// JSONProvider talks to a provider that exposes a JSON API:
//
//	GET {base}/search?q=...&page=N
//	GET {base}/metadata?link=...
//	GET {base}/streams?link=...&type=...
//
// It is the adapter kind used for API-backed sources.
type JSONProvider struct {
	desc       Descriptor
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        *slog.Logger
}

// NewJSONProvider creates an adapter for a JSON API source.
func NewJSONProvider(desc Descriptor, baseURL string, timeout time.Duration, log *slog.Logger) *JSONProvider {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &JSONProvider{
		desc:    desc,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		log:     log.With("component", "provider", "provider", desc.Value),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type searchResponse struct {
	Results []struct {
		Title  string `json:"title"`
		Link   string `json:"link"`
		Poster string `json:"poster"`
	} `json:"results"`
}

// Search queries the provider's search endpoint.
func (p *JSONProvider) Search(ctx context.Context, query string, page int) ([]media.ContentItem, error) {
	if !p.desc.Supports(CapSearch) {
		return nil, Unsupported(p.desc.Value, CapSearch)
	}

	params := url.Values{
		"q":    {query},
		"page": {strconv.Itoa(page)},
	}

	var resp searchResponse
	if err := p.get(ctx, "search", params, &resp); err != nil {
		return nil, err
	}

	items := make([]media.ContentItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, media.ContentItem{
			Title:    r.Title,
			Link:     r.Link,
			Poster:   r.Poster,
			Provider: p.desc.Value,
		})
	}
	return items, nil
}

type metadataResponse struct {
	Title    string `json:"title"`
	Synopsis string `json:"synopsis"`
	Image    string `json:"image"`
	Links    []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
		Type  string `json:"type"`
	} `json:"links"`
	Cast   []string `json:"cast"`
	Year   string   `json:"year"`
	Rating string   `json:"rating"`
}

// GetMetadata fetches the detail view for a content link.
func (p *JSONProvider) GetMetadata(ctx context.Context, link string) (*media.Metadata, error) {
	if !p.desc.Supports(CapMetadata) {
		return nil, Unsupported(p.desc.Value, CapMetadata)
	}

	var resp metadataResponse
	if err := p.get(ctx, "metadata", url.Values{"link": {link}}, &resp); err != nil {
		return nil, err
	}

	md := &media.Metadata{
		Title:    resp.Title,
		Link:     link,
		Synopsis: resp.Synopsis,
		Image:    resp.Image,
		Cast:     resp.Cast,
		Year:     resp.Year,
		Rating:   resp.Rating,
		Provider: p.desc.Value,
	}
	for _, l := range resp.Links {
		md.Links = append(md.Links, media.EpisodeLink{
			Title: l.Title,
			Link:  l.Link,
			Type:  media.Type(l.Type),
		})
	}
	return md, nil
}

type streamsResponse struct {
	Streams []struct {
		Server    string            `json:"server"`
		Link      string            `json:"link"`
		Type      string            `json:"type"`
		Quality   string            `json:"quality"`
		Headers   map[string]string `json:"headers"`
		Subtitles []struct {
			Language string `json:"language"`
			URL      string `json:"url"`
		} `json:"subtitles"`
	} `json:"streams"`
}

// ResolveStreams fetches the playable servers for a watchable link.
// An empty stream list is a valid response, not an error.
func (p *JSONProvider) ResolveStreams(ctx context.Context, link string, mediaType media.Type) ([]media.Stream, error) {
	if !p.desc.Supports(CapStream) {
		return nil, Unsupported(p.desc.Value, CapStream)
	}

	params := url.Values{
		"link": {link},
		"type": {string(mediaType)},
	}

	var resp streamsResponse
	if err := p.get(ctx, "streams", params, &resp); err != nil {
		return nil, err
	}

	streams := make([]media.Stream, 0, len(resp.Streams))
	for _, s := range resp.Streams {
		st := media.Stream{
			Server:  s.Server,
			Link:    s.Link,
			Type:    s.Type,
			Quality: s.Quality,
			Headers: s.Headers,
		}
		for _, sub := range s.Subtitles {
			st.Subtitles = append(st.Subtitles, media.Subtitle{Language: sub.Language, URL: sub.URL})
		}
		streams = append(streams, st)
	}
	return streams, nil
}

// get performs a GET against one endpoint and decodes the JSON body.
// Errors are classified; the caller's cancellation passes through
// unchanged so the engine can tell Cancelled from Failed.
func (p *JSONProvider) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, params.Encode())

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return NewError(p.desc.Value, KindNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return p.classify(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	p.log.Debug("provider request", "endpoint", endpoint, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", p.desc.Value, endpoint, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return NewError(p.desc.Value, KindNetwork, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return p.classify(ctx, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return NewError(p.desc.Value, KindParse, err)
	}
	return nil
}

// classify maps a transport error to the provider error taxonomy.
// A deadline from the per-call timeout is a Timeout; cancellation from
// the caller propagates as-is.
func (p *JSONProvider) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewError(p.desc.Value, KindTimeout, err)
	}
	return NewError(p.desc.Value, KindNetwork, err)
}
